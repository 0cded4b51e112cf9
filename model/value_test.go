package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/model"
)

func TestPropertyMap_RoundTrip(t *testing.T) {
	props := model.PropertyMap{
		"affinity":     model.Number(0.87),
		"manual_agent": model.Bool(true),
		"xrefs":        model.StringList{"UMLS:C001", "UMLS:C002"},
		"scores":       model.NumberList{1, 2, 3},
		"label":        model.String("TBX4"),
	}

	data, err := json.Marshal(props)
	require.NoError(t, err)

	var decoded model.PropertyMap
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, model.String("TBX4"), decoded["label"])
	assert.Equal(t, model.Bool(true), decoded["manual_agent"])
	assert.Equal(t, model.StringList{"UMLS:C001", "UMLS:C002"}, decoded["xrefs"])
	assert.Equal(t, model.NumberList{1, 2, 3}, decoded["scores"])
	assert.InDelta(t, 0.87, float64(decoded["affinity"].(model.Number)), 1e-9)
}

func TestPropertyMap_Clone_IsDeep(t *testing.T) {
	props := model.PropertyMap{"xrefs": model.StringList{"A:1"}}
	clone := props.Clone()

	clone["xrefs"] = append(clone["xrefs"].(model.StringList), "A:2")

	assert.Len(t, props["xrefs"].(model.StringList), 1)
	assert.Len(t, clone["xrefs"].(model.StringList), 2)
}

func TestDecodeValue_RejectsMixedShapes(t *testing.T) {
	_, err := json.Marshal(map[string]any{"bad": map[string]string{"nested": "object"}})
	require.NoError(t, err)

	var m model.PropertyMap
	err = json.Unmarshal([]byte(`{"bad": {"nested": "object"}}`), &m)
	assert.Error(t, err)
}
