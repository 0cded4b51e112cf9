package graphstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/model"
)

func TestAddNode_DefaultsCategoryAndMerges(t *testing.T) {
	g := graphstore.New()

	n1 := &model.Node{ID: "HGNC:1", Name: "TBX4", Xref: []string{"NCBIGene:1"}, Properties: model.PropertyMap{}}
	g.AddNode(n1)

	n2 := &model.Node{ID: "HGNC:1", Description: "T-box transcription factor", Xref: []string{"ENSEMBL:2"}, Properties: model.PropertyMap{}}
	merged := g.AddNode(n2)

	assert.Equal(t, "TBX4", merged.Name)
	assert.Equal(t, "T-box transcription factor", merged.Description)
	assert.ElementsMatch(t, []string{"NCBIGene:1", "ENSEMBL:2"}, merged.Xref)
	assert.Equal(t, 1, g.NodeCount())
}

func TestAddEdge_MaterializesPlaceholderEndpoints(t *testing.T) {
	g := graphstore.New()

	e := model.NewEdge("HGNC:1", "biolink:contributes_to", "MONDO:1")
	stored, _ := g.AddEdge(e)

	require.NotEmpty(t, stored.ID)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, []string{model.RootEntityCategory}, g.GetNode("HGNC:1").Category)
	assert.Equal(t, []string{model.RootEntityCategory}, g.GetNode("MONDO:1").Category)
}

func TestAddEdge_ParallelEdgesGetDistinctKeys(t *testing.T) {
	g := graphstore.New()

	e1 := model.NewEdge("HGNC:1", "biolink:contributes_to", "MONDO:1")
	_, k1 := g.AddEdge(e1)

	e2 := model.NewEdge("HGNC:1", "biolink:causes", "MONDO:1")
	_, k2 := g.AddEdge(e2)

	assert.NotEqual(t, k1, k2)
	assert.Equal(t, 2, g.EdgeCount())
}

func TestAddEdge_MergesOnMatchingCompositeKey(t *testing.T) {
	g := graphstore.New()

	e1 := model.NewEdge("HGNC:1", "biolink:contributes_to", "MONDO:1")
	e1.PrimaryKnowledgeSource = "infores:ctd"
	e1.Publications = []string{"PMID:1"}
	g.AddEdge(e1)

	e2 := model.NewEdge("HGNC:1", "biolink:contributes_to", "MONDO:1")
	e2.PrimaryKnowledgeSource = "infores:ctd"
	e2.Publications = []string{"PMID:2"}
	merged, _ := g.AddEdge(e2)

	assert.Equal(t, 1, g.EdgeCount())
	assert.ElementsMatch(t, []string{"PMID:1", "PMID:2"}, merged.Publications)
}

func TestRemoveNode_RemovesIncidentEdges(t *testing.T) {
	g := graphstore.New()
	g.AddEdge(model.NewEdge("HGNC:1", "biolink:contributes_to", "MONDO:1"))
	g.AddEdge(model.NewEdge("MONDO:1", "biolink:related_to", "MONDO:2"))

	g.RemoveNode("MONDO:1")

	assert.Equal(t, 0, g.EdgeCount())
	assert.Nil(t, g.GetNode("MONDO:1"))
	assert.NotNil(t, g.GetNode("HGNC:1"))
}

func TestDegree(t *testing.T) {
	g := graphstore.New()
	g.AddEdge(model.NewEdge("HGNC:1", "biolink:contributes_to", "MONDO:1"))
	g.AddEdge(model.NewEdge("MONDO:2", "biolink:related_to", "MONDO:1"))

	assert.Equal(t, 2, g.Degree("MONDO:1"))
	assert.Equal(t, 1, g.Degree("HGNC:1"))
}

func TestNodesAndEdges_PreserveInsertionOrder(t *testing.T) {
	g := graphstore.New()
	g.AddNode(model.NewNode("C:3"))
	g.AddNode(model.NewNode("C:1"))
	g.AddNode(model.NewNode("C:2"))

	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"C:3", "C:1", "C:2"}, ids)
}
