package graphstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/model"
)

func TestMergeScalar_FirstWins(t *testing.T) {
	assert.Equal(t, "infores:ctd", graphstore.MergeScalar("infores:ctd", "infores:drugbank"))
	assert.Equal(t, "infores:drugbank", graphstore.MergeScalar("", "infores:drugbank"))
	assert.Equal(t, "", graphstore.MergeScalar("", ""))
}

func TestMergeNodes_UnionsSetsAndListsAppendUnique(t *testing.T) {
	a := &model.Node{
		ID:       "HGNC:1",
		Category: []string{"biolink:Gene"},
		Synonym:  []string{"TBX4"},
		Properties: model.PropertyMap{
			"xrefs": model.StringList{"UMLS:C1"},
		},
	}
	b := &model.Node{
		ID:       "HGNC:1",
		Category: []string{"biolink:GenomicEntity"},
		Synonym:  []string{"TBX4", "T-box 4"},
		Properties: model.PropertyMap{
			"xrefs": model.StringList{"UMLS:C1", "UMLS:C2"},
		},
	}

	merged := graphstore.MergeNodes(a, b)

	assert.Equal(t, []string{"biolink:Gene", "biolink:GenomicEntity"}, merged.Category)
	assert.Equal(t, []string{"TBX4", "T-box 4"}, merged.Synonym)
	assert.Equal(t, model.StringList{"UMLS:C1", "UMLS:C2"}, merged.Properties["xrefs"])
}

func TestMergeNodes_AssociativityOnSetFields(t *testing.T) {
	nodeWith := func(xref ...string) *model.Node {
		return &model.Node{ID: "X:1", Category: []string{"biolink:NamedThing"}, Xref: xref}
	}

	a, b, c := nodeWith("R:1"), nodeWith("R:2"), nodeWith("R:3")

	left := graphstore.MergeNodes(graphstore.MergeNodes(a, b), c)
	right := graphstore.MergeNodes(a, graphstore.MergeNodes(b, c))

	assert.ElementsMatch(t, left.Xref, right.Xref)
}
