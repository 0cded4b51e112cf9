package model

import (
	"encoding/json"
	"fmt"
)

// Value is the sum type every non-core node/edge property value belongs
// to: string, number, bool, list-of-string, or list-of-number (spec §9,
// "Dynamic records"). It intentionally excludes nested objects and mixed
// lists — anything a Source parses that does not fit one of these five
// shapes is rejected at the parser boundary, not smuggled through as Value.
type Value interface {
	isValue()
	fmt.Stringer
}

// String is a scalar string property value.
type String string

func (String) isValue()        {}
func (v String) String() string { return string(v) }

// Number is a scalar numeric property value.
type Number float64

func (Number) isValue() {}
func (v Number) String() string { return fmt.Sprintf("%g", float64(v)) }

// Bool is a scalar boolean property value.
type Bool bool

func (Bool) isValue() {}
func (v Bool) String() string { return fmt.Sprintf("%t", bool(v)) }

// StringList is a list-of-string property value. Core fields that are sets
// (xref, category, knowledge-source families) and fields that are ordered
// lists (synonym, publications) both use StringList; §4.2 merge rules
// distinguish set-union from append-unique by field, not by type.
type StringList []string

func (StringList) isValue() {}
func (v StringList) String() string { return fmt.Sprintf("%v", []string(v)) }

// NumberList is a list-of-number property value.
type NumberList []float64

func (NumberList) isValue() {}
func (v NumberList) String() string { return fmt.Sprintf("%v", []float64(v)) }

// PropertyMap is the arbitrary, non-core property bag carried by every
// Node and Edge. It marshals to plain JSON scalars/arrays — Value's sum-type
// discipline is a Go-side authoring constraint, not a wire format.
type PropertyMap map[string]Value

// MarshalJSON renders each Value as its underlying JSON scalar or array.
func (m PropertyMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case String:
			raw[k] = string(vv)
		case Number:
			raw[k] = float64(vv)
		case Bool:
			raw[k] = bool(vv)
		case StringList:
			raw[k] = []string(vv)
		case NumberList:
			raw[k] = []float64(vv)
		default:
			raw[k] = v
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON infers a Value's concrete type from the shape of the JSON
// it was decoded from: a JSON array of strings becomes StringList, an array
// of numbers becomes NumberList, and scalars map directly.
func (m *PropertyMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(PropertyMap, len(raw))
	for k, rawVal := range raw {
		v, err := decodeValue(rawVal)
		if err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = v
	}
	*m = out
	return nil
}

// ValueFromJSON infers a Value's concrete type from raw JSON, the same
// shape-sniffing UnmarshalJSON uses for a PropertyMap entry. Format
// parsers outside this package (TRAPI attributes, OBOGraph meta fields)
// use this to fold arbitrary JSON into a Node/Edge's Properties.
func ValueFromJSON(raw json.RawMessage) (Value, error) {
	return decodeValue(raw)
}

func decodeValue(raw json.RawMessage) (Value, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return String(asString), nil
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return Number(asNumber), nil
	}
	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		return Bool(asBool), nil
	}
	var asStringList []string
	if err := json.Unmarshal(raw, &asStringList); err == nil {
		return StringList(asStringList), nil
	}
	var asNumberList []float64
	if err := json.Unmarshal(raw, &asNumberList); err == nil {
		return NumberList(asNumberList), nil
	}
	return nil, fmt.Errorf("value %s is not a string, number, bool, or homogeneous list of either", string(raw))
}

// Clone returns a deep copy of m.
func (m PropertyMap) Clone() PropertyMap {
	if m == nil {
		return nil
	}
	out := make(PropertyMap, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case StringList:
			cp := make(StringList, len(vv))
			copy(cp, vv)
			out[k] = cp
		case NumberList:
			cp := make(NumberList, len(vv))
			copy(cp, vv)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
