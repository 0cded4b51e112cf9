package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/merge"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/vocab"
)

func buildGeneClique(t *testing.T) *graphstore.Graph {
	t.Helper()
	store := graphstore.New()
	store.AddNode(model.NewNode("HGNC:1", "biolink:Gene"))
	store.AddNode(model.NewNode("NCBIGene:7", "biolink:Gene"))
	store.AddNode(model.NewNode("ENSEMBL:e", "biolink:Gene"))
	store.AddEdge(model.NewEdge("HGNC:1", model.SameAsPredicate, "NCBIGene:7"))
	store.AddEdge(model.NewEdge("NCBIGene:7", model.SameAsPredicate, "ENSEMBL:e"))
	return store
}

func TestResolve_ElectsLeaderByPrefixPriority(t *testing.T) {
	store := buildGeneClique(t)
	r := merge.NewCliqueResolver(merge.WithPrefixPriority(map[string][]string{
		"biolink:Gene": {"HGNC", "NCBIGene", "ENSEMBL"},
	}))

	out, err := r.Resolve(store)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NodeCount())
	leader := out.GetNode("HGNC:1")
	require.NotNil(t, leader)
	assert.Nil(t, out.GetNode("NCBIGene:7"))
	assert.Nil(t, out.GetNode("ENSEMBL:e"))
	assert.ElementsMatch(t, []string{"NCBIGene:7", "ENSEMBL:e"}, leader.Xref)
}

func TestResolve_RewritesEdgesToLeaderAndRecordsOriginal(t *testing.T) {
	store := graphstore.New()
	store.AddNode(model.NewNode("HGNC:1", "biolink:Gene"))
	store.AddNode(model.NewNode("NCBIGene:7", "biolink:Gene"))
	store.AddNode(model.NewNode("MONDO:1", "biolink:Disease"))
	store.AddEdge(model.NewEdge("HGNC:1", model.SameAsPredicate, "NCBIGene:7"))
	store.AddEdge(model.NewEdge("NCBIGene:7", "biolink:gene_associated_with_condition", "MONDO:1"))

	r := merge.NewCliqueResolver(merge.WithPrefixPriority(map[string][]string{
		"biolink:Gene": {"HGNC", "NCBIGene"},
	}))
	out, err := r.Resolve(store)
	require.NoError(t, err)

	var rewritten *model.Edge
	for _, e := range out.Edges() {
		if e.Predicate == "biolink:gene_associated_with_condition" {
			rewritten = e
		}
	}
	require.NotNil(t, rewritten)
	assert.Equal(t, "HGNC:1", rewritten.Subject)
	assert.Equal(t, "NCBIGene:7", rewritten.OriginalSubject)
}

func TestResolve_DropsRewrittenSelfLoopUnlessAllowed(t *testing.T) {
	store := graphstore.New()
	store.AddNode(model.NewNode("HGNC:1", "biolink:Gene"))
	store.AddNode(model.NewNode("NCBIGene:7", "biolink:Gene"))
	store.AddEdge(model.NewEdge("HGNC:1", model.SameAsPredicate, "NCBIGene:7"))
	store.AddEdge(model.NewEdge("HGNC:1", "biolink:interacts_with", "NCBIGene:7"))

	r := merge.NewCliqueResolver(merge.WithPrefixPriority(map[string][]string{
		"biolink:Gene": {"HGNC", "NCBIGene"},
	}))
	out, err := r.Resolve(store)
	require.NoError(t, err)

	for _, e := range out.Edges() {
		assert.NotEqual(t, "biolink:interacts_with", e.Predicate)
	}

	r2 := merge.NewCliqueResolver(
		merge.WithPrefixPriority(map[string][]string{"biolink:Gene": {"HGNC", "NCBIGene"}}),
		merge.WithAllowSelfLoops(true),
	)
	store2 := graphstore.New()
	store2.AddNode(model.NewNode("HGNC:1", "biolink:Gene"))
	store2.AddNode(model.NewNode("NCBIGene:7", "biolink:Gene"))
	store2.AddEdge(model.NewEdge("HGNC:1", model.SameAsPredicate, "NCBIGene:7"))
	store2.AddEdge(model.NewEdge("HGNC:1", "biolink:interacts_with", "NCBIGene:7"))
	out2, err := r2.Resolve(store2)
	require.NoError(t, err)
	found := false
	for _, e := range out2.Edges() {
		if e.Predicate == "biolink:interacts_with" && e.Subject == e.Object {
			found = true
		}
	}
	assert.True(t, found)
}

func TestResolve_HonorsClaimedLeaderAnnotation(t *testing.T) {
	store := graphstore.New()
	n1 := model.NewNode("HGNC:1", "biolink:Gene")
	n2 := model.NewNode("NCBIGene:7", "biolink:Gene")
	n2.Properties["clique_leader"] = model.Bool(true)
	store.AddNode(n1)
	store.AddNode(n2)
	store.AddEdge(model.NewEdge("HGNC:1", model.SameAsPredicate, "NCBIGene:7"))

	r := merge.NewCliqueResolver(merge.WithPrefixPriority(map[string][]string{
		"biolink:Gene": {"HGNC", "NCBIGene"},
	}))
	out, err := r.Resolve(store)
	require.NoError(t, err)
	assert.NotNil(t, out.GetNode("NCBIGene:7"))
	assert.Nil(t, out.GetNode("HGNC:1"))
}

func TestResolve_StrictModeRejectsIncompatibleClique(t *testing.T) {
	store := graphstore.New()
	store.AddNode(model.NewNode("HGNC:1", "biolink:Gene"))
	store.AddNode(model.NewNode("MONDO:1", "biolink:Dataset"))
	store.AddEdge(model.NewEdge("HGNC:1", model.SameAsPredicate, "MONDO:1"))

	r := merge.NewCliqueResolver(merge.WithVocabService(vocab.ServiceWithVersion("4.2.1")), merge.WithStrictMode(true))
	out, err := r.Resolve(store)
	require.Error(t, err)
	assert.NotNil(t, out.GetNode("HGNC:1"))
	assert.NotNil(t, out.GetNode("MONDO:1"))
}

func TestResolve_UnionsSameAsPropertyNotJustEdges(t *testing.T) {
	store := graphstore.New()
	n1 := model.NewNode("HGNC:1", "biolink:Gene")
	n1.Properties["same_as"] = model.StringList{"NCBIGene:7"}
	store.AddNode(n1)
	store.AddNode(model.NewNode("NCBIGene:7", "biolink:Gene"))

	r := merge.NewCliqueResolver(merge.WithPrefixPriority(map[string][]string{
		"biolink:Gene": {"HGNC", "NCBIGene"},
	}))
	out, err := r.Resolve(store)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NodeCount())
}

func TestResolve_IsIdempotent(t *testing.T) {
	store := buildGeneClique(t)
	r := merge.NewCliqueResolver(merge.WithPrefixPriority(map[string][]string{
		"biolink:Gene": {"HGNC", "NCBIGene", "ENSEMBL"},
	}))

	once, err := r.Resolve(store)
	require.NoError(t, err)

	twice, err := r.Resolve(once)
	require.NoError(t, err)

	assert.Equal(t, once.NodeCount(), twice.NodeCount())
	assert.Equal(t, once.EdgeCount(), twice.EdgeCount())
	assert.NotNil(t, twice.GetNode("HGNC:1"))
}
