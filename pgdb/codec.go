package pgdb

import (
	"encoding/json"

	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/model"
)

// nodeToProps flattens n the same way model.Node.MarshalJSON does, so the
// resulting map can be handed to the driver as Cypher query parameters.
func nodeToProps(n *model.Node) (map[string]any, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, errors.WrapInvalid(err, "pgdb", "nodeToProps", "encode node")
	}
	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, errors.WrapInvalid(err, "pgdb", "nodeToProps", "decode node into property map")
	}
	return props, nil
}

// propsToNode inverts nodeToProps by re-encoding the raw driver property
// map as JSON and decoding it through model.Node's own UnmarshalJSON,
// reusing its core-field/Properties split instead of duplicating it here.
func propsToNode(props map[string]any) (*model.Node, error) {
	data, err := json.Marshal(props)
	if err != nil {
		return nil, errors.WrapInvalid(err, "pgdb", "propsToNode", "encode driver properties")
	}
	n := &model.Node{}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, errors.WrapInvalid(err, "pgdb", "propsToNode", "decode node")
	}
	return n, nil
}

func edgeToProps(e *model.Edge) (map[string]any, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.WrapInvalid(err, "pgdb", "edgeToProps", "encode edge")
	}
	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, errors.WrapInvalid(err, "pgdb", "edgeToProps", "decode edge into property map")
	}
	return props, nil
}

func propsToEdge(props map[string]any, subject, object string) (*model.Edge, error) {
	props["subject"] = subject
	props["object"] = object
	data, err := json.Marshal(props)
	if err != nil {
		return nil, errors.WrapInvalid(err, "pgdb", "propsToEdge", "encode driver properties")
	}
	e := &model.Edge{}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, errors.WrapInvalid(err, "pgdb", "propsToEdge", "decode edge")
	}
	return e, nil
}
