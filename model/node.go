package model

import (
	"encoding/json"
	"fmt"
)

// RootEntityCategory is the root of the class hierarchy, assigned to a node
// when none is supplied and to an edge endpoint materialized as a
// placeholder (spec I2, I3).
const RootEntityCategory = "biolink:NamedThing"

// Node is the uniform node record every Source produces and every Sink
// consumes (spec §3). Core fields are typed; anything else lands in
// Properties.
type Node struct {
	ID          string      `json:"id"`
	Category    []string    `json:"category"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Xref        []string    `json:"xref,omitempty"`
	Synonym     []string    `json:"synonym,omitempty"`
	ProvidedBy  []string    `json:"provided_by,omitempty"`
	Properties  PropertyMap `json:"-"`
}

// NewNode returns a Node with category defaulted to RootEntityCategory when
// categories is empty (spec I3).
func NewNode(id string, categories ...string) *Node {
	if len(categories) == 0 {
		categories = []string{RootEntityCategory}
	}
	return &Node{
		ID:       id,
		Category: categories,
		Properties: make(PropertyMap),
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Category = cloneStrings(n.Category)
	out.Xref = cloneStrings(n.Xref)
	out.Synonym = cloneStrings(n.Synonym)
	out.ProvidedBy = cloneStrings(n.ProvidedBy)
	out.Properties = n.Properties.Clone()
	return &out
}

var nodeCoreFields = map[string]bool{
	"id": true, "category": true, "name": true, "description": true,
	"xref": true, "synonym": true, "provided_by": true,
}

// MarshalJSON flattens Properties alongside the core fields into a single
// JSON object, matching the node/edge JSON form every Source/Sink reads
// and writes (spec §4.3.2).
func (n *Node) MarshalJSON() ([]byte, error) {
	type alias Node
	base, err := json.Marshal((*alias)(n))
	if err != nil {
		return nil, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	if len(n.Properties) > 0 {
		propsJSON, err := n.Properties.MarshalJSON()
		if err != nil {
			return nil, err
		}
		var props map[string]json.RawMessage
		if err := json.Unmarshal(propsJSON, &props); err != nil {
			return nil, err
		}
		for k, v := range props {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the core fields by name and folds everything else
// into Properties, inferring each value's shape (spec §4.3.2).
func (n *Node) UnmarshalJSON(data []byte) error {
	type alias Node
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = Node(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range nodeCoreFields {
		delete(raw, k)
	}
	n.Properties = make(PropertyMap, len(raw))
	for k, v := range raw {
		val, err := decodeValue(v)
		if err != nil {
			return fmt.Errorf("node %s: property %q: %w", n.ID, k, err)
		}
		n.Properties[k] = val
	}
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
