package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/model"
)

func TestNewNode_DefaultsCategory(t *testing.T) {
	n := model.NewNode("MONDO:0005002")
	assert.Equal(t, []string{model.RootEntityCategory}, n.Category)
}

func TestNewNode_KeepsGivenCategory(t *testing.T) {
	n := model.NewNode("HGNC:11603", "biolink:Gene")
	assert.Equal(t, []string{"biolink:Gene"}, n.Category)
}

func TestNode_Clone_IsIndependent(t *testing.T) {
	n := model.NewNode("HGNC:11603", "biolink:Gene")
	n.Xref = []string{"NCBIGene:1"}

	clone := n.Clone()
	clone.Xref = append(clone.Xref, "ENSEMBL:2")
	clone.Category[0] = "biolink:Protein"

	assert.Len(t, n.Xref, 1)
	assert.Equal(t, "biolink:Gene", n.Category[0])
}

func TestNode_JSON_FlattensAndRecoversProperties(t *testing.T) {
	n := model.NewNode("HGNC:1", "biolink:Gene")
	n.Name = "A1BG"
	n.Properties = model.PropertyMap{
		"symbol":     model.String("A1BG"),
		"chromosome": model.String("19"),
	}

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"symbol":"A1BG"`)
	assert.NotContains(t, string(data), "Properties")

	var out model.Node
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, n.ID, out.ID)
	assert.Equal(t, n.Name, out.Name)
	assert.Equal(t, model.String("A1BG"), out.Properties["symbol"])
	assert.Equal(t, model.String("19"), out.Properties["chromosome"])
}
