package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/model"
)

func TestNewEdge(t *testing.T) {
	e := model.NewEdge("HGNC:1", "biolink:same_as", "NCBIGene:7")
	assert.Equal(t, "HGNC:1", e.Subject)
	assert.Equal(t, "NCBIGene:7", e.Object)
	assert.True(t, e.IsSameAs())
}

func TestEdge_Clone_IsIndependent(t *testing.T) {
	e := model.NewEdge("HGNC:1", "biolink:contributes_to", "MONDO:1")
	e.Publications = []string{"PMID:1"}

	clone := e.Clone()
	clone.Publications = append(clone.Publications, "PMID:2")

	assert.Len(t, e.Publications, 1)
}

func TestEdge_JSON_FlattensAndRecoversProperties(t *testing.T) {
	e := model.NewEdge("HGNC:1", "biolink:related_to", "HGNC:2")
	e.ID = "e1"
	e.Properties["confidence"] = model.Number(0.9)

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"confidence":0.9`)

	var out model.Edge
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, e.Subject, out.Subject)
	assert.Equal(t, model.Number(0.9), out.Properties["confidence"])
}
