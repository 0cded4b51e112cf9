package report

import (
	"encoding/json"
	"sort"

	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/pkg/timestamp"
	"github.com/biolink/kgx/prefixmanager"
	"github.com/biolink/kgx/validate"
	"github.com/biolink/kgx/vocab"
	"github.com/xeipuuv/gojsonschema"
)

// MetaKGNode is one entry of a Meta-KG's nodes map (spec §4.9).
type MetaKGNode struct {
	IDPrefixes    []string       `json:"id_prefixes"`
	Count         int            `json:"count"`
	CountBySource map[string]int `json:"count_by_source,omitempty"`
}

// MetaKGEdge is one entry of a Meta-KG's edges list (spec §4.9).
type MetaKGEdge struct {
	Subject       string         `json:"subject"`
	Predicate     string         `json:"predicate"`
	Object        string         `json:"object"`
	Relations     []string       `json:"relations,omitempty"`
	Count         int            `json:"count"`
	CountBySource map[string]int `json:"count_by_source,omitempty"`
}

// MetaKG is the content-metadata-schema-conformant Meta-KG document (spec
// §4.9, §6 "Meta-KG: JSON conformant to the content-metadata schema").
type MetaKG struct {
	Nodes map[string]*MetaKGNode `json:"nodes"`
	Edges []*MetaKGEdge          `json:"edges"`

	// GeneratedAtMs is the Unix millisecond timestamp this document was
	// produced at, stamped by Report().
	GeneratedAtMs int64 `json:"generated_at"`
}

// MetaKGOption configures a MetaKGBuilder at construction time.
type MetaKGOption func(*MetaKGBuilder)

// WithMetaKGVocabService supplies the vocabulary consulted for the
// "unrecognized predicate" anomaly check.
func WithMetaKGVocabService(v vocab.Service) MetaKGOption {
	return func(b *MetaKGBuilder) { b.vocab = v }
}

// WithMetaKGPrefixManager supplies the prefix manager consulted for the
// "unrecognized prefix" anomaly check.
func WithMetaKGPrefixManager(pm *prefixmanager.PrefixManager) MetaKGOption {
	return func(b *MetaKGBuilder) { b.prefixes = pm }
}

// WithMetaKGAggregator supplies the Aggregator anomalies are recorded
// into. Without one, MetaKGBuilder allocates its own.
func WithMetaKGAggregator(agg *validate.Aggregator) MetaKGOption {
	return func(b *MetaKGBuilder) { b.aggregator = agg }
}

// MetaKGBuilder accumulates the per-class and per-triple-type aggregates
// that make up a Meta-KG document, streamed the same way as a Summarizer:
// every node then every edge (spec §4.9).
type MetaKGBuilder struct {
	vocab      vocab.Service
	prefixes   *prefixmanager.PrefixManager
	aggregator *validate.Aggregator

	nodes          map[string]*nodeAccum
	edges          map[edgeKey]*edgeAccum
	edgeOrder      []edgeKey
	nodeCategories map[string][]string
}

type nodeAccum struct {
	prefixes      map[string]struct{}
	count         int
	countBySource map[string]int
}

type edgeKey struct {
	subject, predicate, object string
}

type edgeAccum struct {
	relations     map[string]struct{}
	count         int
	countBySource map[string]int
}

// NewMetaKGBuilder returns a MetaKGBuilder ready to accept nodes and edges.
func NewMetaKGBuilder(opts ...MetaKGOption) *MetaKGBuilder {
	b := &MetaKGBuilder{
		nodes:          make(map[string]*nodeAccum),
		edges:          make(map[edgeKey]*edgeAccum),
		nodeCategories: make(map[string][]string),
	}
	for _, o := range opts {
		o(b)
	}
	if b.aggregator == nil {
		b.aggregator = validate.NewAggregator()
	}
	return b
}

// Aggregator returns the Aggregator anomalies are recorded into.
func (b *MetaKGBuilder) Aggregator() *validate.Aggregator { return b.aggregator }

// AddNode folds one node into the running per-class aggregates.
func (b *MetaKGBuilder) AddNode(n *model.Node) {
	if n == nil {
		return
	}
	b.nodeCategories[n.ID] = n.Category
	if len(n.Category) == 0 {
		b.aggregator.Record(validate.LevelWarning, validate.ErrorTypeNoCategory,
			"node has no category", n.ID)
	}
	if b.prefixes != nil {
		if _, err := b.prefixes.Expand(n.ID); err != nil {
			b.aggregator.Record(validate.LevelWarning, ErrorTypeUnrecognizedPrefix,
				"node id uses an unrecognized prefix", n.ID)
		}
	}

	prefix, _, _ := prefixFromID(n.ID)
	for _, source := range providersOrUnknown(n.ProvidedBy) {
		for _, category := range categoriesOrUnknown(n.Category) {
			acc, ok := b.nodes[category]
			if !ok {
				acc = &nodeAccum{prefixes: map[string]struct{}{}, countBySource: map[string]int{}}
				b.nodes[category] = acc
			}
			if prefix != "" {
				acc.prefixes[prefix] = struct{}{}
			}
			acc.count++
			acc.countBySource[source]++
		}
	}
}

// AddEdge folds one edge into the running per-triple-type aggregates.
func (b *MetaKGBuilder) AddEdge(e *model.Edge) {
	if e == nil {
		return
	}
	if e.Predicate == "" {
		b.aggregator.Record(validate.LevelWarning, ErrorTypeMissingPredicate,
			"edge has no predicate", e.ID)
	} else if b.vocab != nil && !b.vocab.IsKnownPredicate(e.Predicate) {
		b.aggregator.Record(validate.LevelWarning, validate.ErrorTypeUnrecognizedPredicate,
			"predicate is not a known biolink predicate: "+e.Predicate, e.ID)
	}
	if b.prefixes != nil {
		if _, err := b.prefixes.Expand(e.Subject); err != nil {
			b.aggregator.Record(validate.LevelWarning, ErrorTypeUnrecognizedPrefix,
				"edge subject uses an unrecognized prefix", e.Subject)
		}
		if _, err := b.prefixes.Expand(e.Object); err != nil {
			b.aggregator.Record(validate.LevelWarning, ErrorTypeUnrecognizedPrefix,
				"edge object uses an unrecognized prefix", e.Object)
		}
	}

	subjCats := categoriesOrUnknown(b.nodeCategories[e.Subject])
	objCats := categoriesOrUnknown(b.nodeCategories[e.Object])
	sources := provenanceSources(e)
	for _, sc := range subjCats {
		for _, oc := range objCats {
			key := edgeKey{subject: sc, predicate: e.Predicate, object: oc}
			acc, ok := b.edges[key]
			if !ok {
				acc = &edgeAccum{relations: map[string]struct{}{}, countBySource: map[string]int{}}
				b.edges[key] = acc
				b.edgeOrder = append(b.edgeOrder, key)
			}
			acc.relations[e.Predicate] = struct{}{}
			acc.count++
			for _, source := range sources {
				acc.countBySource[source]++
			}
		}
	}
}

// Observe streams every node then every edge of store through the builder.
func (b *MetaKGBuilder) Observe(store *graphstore.Graph) {
	for _, n := range store.Nodes() {
		b.AddNode(n)
	}
	for _, e := range store.Edges() {
		b.AddEdge(e)
	}
}

// Report renders the accumulated aggregates as a MetaKG document.
func (b *MetaKGBuilder) Report() *MetaKG {
	out := &MetaKG{
		Nodes:         make(map[string]*MetaKGNode, len(b.nodes)),
		GeneratedAtMs: timestamp.Now(),
	}
	for category, acc := range b.nodes {
		prefixes := make([]string, 0, len(acc.prefixes))
		for p := range acc.prefixes {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)
		out.Nodes[category] = &MetaKGNode{
			IDPrefixes:    prefixes,
			Count:         acc.count,
			CountBySource: acc.countBySource,
		}
	}

	keys := append([]edgeKey(nil), b.edgeOrder...)
	sort.Slice(keys, func(i, j int) bool {
		a, bb := keys[i], keys[j]
		if a.subject != bb.subject {
			return a.subject < bb.subject
		}
		if a.predicate != bb.predicate {
			return a.predicate < bb.predicate
		}
		return a.object < bb.object
	})
	for _, key := range keys {
		acc := b.edges[key]
		relations := make([]string, 0, len(acc.relations))
		for r := range acc.relations {
			relations = append(relations, r)
		}
		sort.Strings(relations)
		out.Edges = append(out.Edges, &MetaKGEdge{
			Subject:       key.subject,
			Predicate:     key.predicate,
			Object:        key.object,
			Relations:     relations,
			Count:         acc.count,
			CountBySource: acc.countBySource,
		})
	}
	return out
}

func providersOrUnknown(providedBy []string) []string {
	if len(providedBy) == 0 {
		return []string{"unknown"}
	}
	return providedBy
}

func provenanceSources(e *model.Edge) []string {
	if e.PrimaryKnowledgeSource != "" {
		return []string{e.PrimaryKnowledgeSource}
	}
	if len(e.AggregatorKnowledgeSource) > 0 {
		return e.AggregatorKnowledgeSource
	}
	return []string{"unknown"}
}

func prefixFromID(id string) (prefix, local string, ok bool) {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[:i], id[i+1:], true
		}
	}
	return "", id, false
}

// contentMetadataSchema is the JSON Schema a Meta-KG document must satisfy
// (spec §6, "JSON conformant to the content-metadata schema"), a minimal
// rendering of the TRAPI/SmartAPI content-metadata schema's node/edge
// shape.
const contentMetadataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "nodes": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["id_prefixes", "count"],
        "properties": {
          "id_prefixes": {"type": "array", "items": {"type": "string"}},
          "count": {"type": "integer", "minimum": 0},
          "count_by_source": {"type": "object"}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["subject", "predicate", "object", "count"],
        "properties": {
          "subject": {"type": "string"},
          "predicate": {"type": "string"},
          "object": {"type": "string"},
          "relations": {"type": "array", "items": {"type": "string"}},
          "count": {"type": "integer", "minimum": 0},
          "count_by_source": {"type": "object"}
        }
      }
    }
  }
}`

// ValidateSchema checks m against the content-metadata schema.
func ValidateSchema(m *MetaKG) error {
	data, err := json.Marshal(m)
	if err != nil {
		return errors.WrapInvalid(err, "report", "ValidateSchema", "encode meta-kg document")
	}
	schemaLoader := gojsonschema.NewStringLoader(contentMetadataSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return errors.WrapInvalid(err, "report", "ValidateSchema", "run schema validation")
	}
	if !result.Valid() {
		msg := "meta-kg document does not conform to the content-metadata schema:"
		for _, e := range result.Errors() {
			msg += " " + e.String() + ";"
		}
		return errors.WrapInvalid(errors.ErrInvalidConfig, "report", "ValidateSchema", msg)
	}
	return nil
}
