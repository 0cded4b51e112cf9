package pgdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/model"
)

func TestNodeCodec_RoundTripsCoreAndPropertyFields(t *testing.T) {
	n := model.NewNode("HGNC:1", "biolink:Gene")
	n.Name = "A1BG"
	n.Properties["taxon"] = model.String("NCBITaxon:9606")

	props, err := nodeToProps(n)
	require.NoError(t, err)
	assert.Equal(t, "HGNC:1", props["id"])
	assert.Equal(t, "A1BG", props["name"])

	back, err := propsToNode(props)
	require.NoError(t, err)
	assert.Equal(t, n.ID, back.ID)
	assert.Equal(t, n.Name, back.Name)
	assert.Equal(t, n.Category, back.Category)
	assert.Equal(t, model.String("NCBITaxon:9606"), back.Properties["taxon"])
}

func TestEdgeCodec_RoundTripsSubjectAndObjectFromGraphShape(t *testing.T) {
	e := model.NewEdge("HGNC:1", "biolink:related_to", "MONDO:1")
	e.PrimaryKnowledgeSource = "infores:test"

	props, err := edgeToProps(e)
	require.NoError(t, err)
	delete(props, "subject")
	delete(props, "object")

	back, err := propsToEdge(props, "HGNC:1", "MONDO:1")
	require.NoError(t, err)
	assert.Equal(t, "HGNC:1", back.Subject)
	assert.Equal(t, "MONDO:1", back.Object)
	assert.Equal(t, "biolink:related_to", back.Predicate)
	assert.Equal(t, "infores:test", back.PrimaryKnowledgeSource)
}

func TestSanitizeLabel_StripsColonAndKeepsAlphanumerics(t *testing.T) {
	assert.Equal(t, "biolink_Gene", sanitizeLabel("biolink:Gene"))
	assert.Equal(t, "BiolinkEntity", sanitizeLabel("***"))
}

func TestNodeFilterClause_EmptyCategoriesOmitsWhere(t *testing.T) {
	where, params := nodeFilterClause(nil)
	assert.Empty(t, where)
	assert.Empty(t, params)
}

func TestNodeFilterClause_NonEmptyCategoriesBuildsWhere(t *testing.T) {
	where, params := nodeFilterClause([]string{"biolink:Gene"})
	assert.Contains(t, where, "WHERE")
	assert.Equal(t, []string{"biolink:Gene"}, params["categories"])
}

func TestEdgeFilterClause_CombinesConfiguredFilters(t *testing.T) {
	where, params := edgeFilterClause(config.EdgeFilters{
		Predicate:       []string{"biolink:related_to"},
		SubjectCategory: []string{"biolink:Gene"},
	})
	assert.Contains(t, where, "r.predicate IN $predicates")
	assert.Contains(t, where, "AND")
	assert.Equal(t, []string{"biolink:related_to"}, params["predicates"])
	assert.Equal(t, []string{"biolink:Gene"}, params["subject_categories"])
}
