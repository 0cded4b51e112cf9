package graphstore

import "github.com/biolink/kgx/model"

// MergeScalar implements the spec's first-wins scalar conflict policy
// (§4.2, §4.8, §9 Open Questions): the incumbent value is kept whenever it
// is non-empty, regardless of what the new value is. A SCALAR_CONFLICT
// warning is the caller's responsibility to log when both are non-empty
// and differ — MergeScalar only picks the winner.
func MergeScalar(existing, incoming string) string {
	if existing != "" {
		return existing
	}
	return incoming
}

// unionStrings appends elements of b to a, skipping any already present,
// and preserves first-seen order. Used both for set-valued fields (xref,
// category, knowledge-source families) and for append-unique ordered lists
// (synonym, publications) — the spec distinguishes them conceptually, not
// by merge mechanics (spec I5).
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// MergeNodes returns the result of merging incoming into existing under
// the field-union rules of spec §4.2: set/list fields union (append-
// unique, order preserved), scalar fields prefer the non-empty incumbent,
// and properties merge key-by-key using the same rules by value shape.
func MergeNodes(existing, incoming *model.Node) *model.Node {
	out := existing.Clone()

	out.Category = unionStrings(out.Category, incoming.Category)
	out.Xref = unionStrings(out.Xref, incoming.Xref)
	out.Synonym = unionStrings(out.Synonym, incoming.Synonym)
	out.ProvidedBy = unionStrings(out.ProvidedBy, incoming.ProvidedBy)
	out.Name = MergeScalar(out.Name, incoming.Name)
	out.Description = MergeScalar(out.Description, incoming.Description)
	out.Properties = mergeProperties(out.Properties, incoming.Properties)

	return out
}

// MergeEdges returns the result of merging incoming into existing under
// the same field-union rules, applied to edge-specific fields (spec §4.2,
// §4.8).
func MergeEdges(existing, incoming *model.Edge) *model.Edge {
	out := existing.Clone()

	out.Category = unionStrings(out.Category, incoming.Category)
	out.AggregatorKnowledgeSource = unionStrings(out.AggregatorKnowledgeSource, incoming.AggregatorKnowledgeSource)
	out.SupportingDataSource = unionStrings(out.SupportingDataSource, incoming.SupportingDataSource)
	out.Publications = unionStrings(out.Publications, incoming.Publications)
	out.KnowledgeLevel = MergeScalar(out.KnowledgeLevel, incoming.KnowledgeLevel)
	out.AgentType = MergeScalar(out.AgentType, incoming.AgentType)
	out.PrimaryKnowledgeSource = MergeScalar(out.PrimaryKnowledgeSource, incoming.PrimaryKnowledgeSource)
	out.Properties = mergeProperties(out.Properties, incoming.Properties)

	return out
}

func mergeProperties(existing, incoming model.PropertyMap) model.PropertyMap {
	if existing == nil {
		existing = make(model.PropertyMap)
	}
	out := existing.Clone()

	for k, v := range incoming {
		cur, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		switch curVal := cur.(type) {
		case model.StringList:
			if incVal, ok := v.(model.StringList); ok {
				out[k] = model.StringList(unionStrings(curVal, incVal))
				continue
			}
		case model.NumberList:
			if incVal, ok := v.(model.NumberList); ok {
				out[k] = mergeNumberLists(curVal, incVal)
				continue
			}
		case model.String:
			if string(curVal) == "" {
				out[k] = v
			}
			continue
		}
		// scalar fields (Number, Bool) and any type mismatch: incumbent wins.
	}
	return out
}

func mergeNumberLists(a, b model.NumberList) model.NumberList {
	seen := make(map[float64]bool, len(a))
	out := make(model.NumberList, 0, len(a)+len(b))
	for _, n := range a {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range b {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
