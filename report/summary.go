package report

import (
	"encoding/json"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/pkg/timestamp"
	"github.com/biolink/kgx/prefixmanager"
	"github.com/biolink/kgx/validate"
	"github.com/biolink/kgx/vocab"
)

// DetailLevel selects how much the Summarizer computes beyond the
// mandated category and triple-type counts (spec §4.9, supplemented from
// original_source/kgx's graph_summary.py "essential"/"extended" knob).
type DetailLevel string

const (
	// DetailEssential computes only category counts, triple-type counts
	// and any configured facet counts.
	DetailEssential DetailLevel = "essential"
	// DetailExtended additionally tracks, per property key encountered on
	// nodes and edges, the number of distinct values seen.
	DetailExtended DetailLevel = "extended"
)

// TripleType identifies one (subject_category, predicate, object_category)
// combination (spec §4.9).
type TripleType struct {
	SubjectCategory string `json:"subject_category" yaml:"subject_category"`
	Predicate       string `json:"predicate" yaml:"predicate"`
	ObjectCategory  string `json:"object_category" yaml:"object_category"`
	Count           int    `json:"count" yaml:"count"`
}

// Summary is the Summarizer's serializable output (spec §4.9, "Emits YAML
// or JSON").
type Summary struct {
	NodeCategoryCount   map[string]int            `json:"node_category_count" yaml:"node_category_count"`
	EdgeTripleTypeCount []TripleType              `json:"edge_triple_type_count" yaml:"edge_triple_type_count"`
	FacetCount          map[string]map[string]int `json:"facet_count,omitempty" yaml:"facet_count,omitempty"`
	PropertyCardinality map[string]int            `json:"property_cardinality,omitempty" yaml:"property_cardinality,omitempty"`
	GeneratedAtMs       int64                     `json:"generated_at" yaml:"generated_at"`
}

// SummarizerOption configures a Summarizer at construction time.
type SummarizerOption func(*Summarizer)

// WithSummarizerFacetProperties names the properties the Summarizer
// tallies value counts for, e.g. "provided_by" (spec §4.9).
func WithSummarizerFacetProperties(properties ...string) SummarizerOption {
	return func(s *Summarizer) { s.facetProperties = properties }
}

// WithDetailLevel selects Essential (default) or Extended detail.
func WithDetailLevel(level DetailLevel) SummarizerOption {
	return func(s *Summarizer) { s.detail = level }
}

// WithSummarizerVocabService supplies the vocabulary consulted for the
// "unrecognized predicate" anomaly check.
func WithSummarizerVocabService(v vocab.Service) SummarizerOption {
	return func(s *Summarizer) { s.vocab = v }
}

// WithSummarizerPrefixManager supplies the prefix manager consulted for
// the "unrecognized prefix" anomaly check.
func WithSummarizerPrefixManager(pm *prefixmanager.PrefixManager) SummarizerOption {
	return func(s *Summarizer) { s.prefixes = pm }
}

// WithSummarizerAggregator supplies the Aggregator anomalies are recorded
// into. Without one, Summarizer allocates its own.
func WithSummarizerAggregator(agg *validate.Aggregator) SummarizerOption {
	return func(s *Summarizer) { s.aggregator = agg }
}

// Summarizer accumulates the counts described in spec §4.9 over a stream
// of nodes followed by a stream of edges, grounded on the teacher's
// metric package's counter-by-label-set pattern applied to summary
// reporting instead of live telemetry.
type Summarizer struct {
	detail          DetailLevel
	facetProperties []string
	vocab           vocab.Service
	prefixes        *prefixmanager.PrefixManager
	aggregator      *validate.Aggregator

	categoryCount map[string]int
	tripleCount   map[TripleType]int
	facetCount    map[string]map[string]int
	cardinality   map[string]map[string]struct{}

	// nodeCategories caches each node's categories so an edge streamed
	// after its endpoints can look up the triple type (spec §5, "Source
	// emission order" — nodes conventionally precede the edges
	// referencing them, but a missing entry degrades to
	// "biolink:NamedThing" rather than failing the pass).
	nodeCategories map[string][]string
}

// NewSummarizer returns a Summarizer ready to accept nodes and edges.
func NewSummarizer(opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		detail:         DetailEssential,
		categoryCount:  make(map[string]int),
		tripleCount:    make(map[TripleType]int),
		facetCount:     make(map[string]map[string]int),
		cardinality:    make(map[string]map[string]struct{}),
		nodeCategories: make(map[string][]string),
	}
	for _, o := range opts {
		o(s)
	}
	if s.aggregator == nil {
		s.aggregator = validate.NewAggregator()
	}
	return s
}

// Aggregator returns the Aggregator anomalies are recorded into.
func (s *Summarizer) Aggregator() *validate.Aggregator { return s.aggregator }

// SummarizeNode folds one node into the running counts.
func (s *Summarizer) SummarizeNode(n *model.Node) {
	if n == nil {
		return
	}
	s.nodeCategories[n.ID] = n.Category

	if len(n.Category) == 0 {
		s.aggregator.Record(validate.LevelWarning, validate.ErrorTypeNoCategory,
			"node has no category", n.ID)
	}
	for _, c := range n.Category {
		s.categoryCount[c]++
	}

	if s.prefixes != nil {
		if _, err := s.prefixes.Expand(n.ID); err != nil {
			s.aggregator.Record(validate.LevelWarning, ErrorTypeUnrecognizedPrefix,
				"node id uses an unrecognized prefix", n.ID)
		}
	}

	s.tallyFacets(n.ID, nodeFacetValue(n, s.facetProperties))
	if s.detail == DetailExtended {
		s.tallyCardinality(nodeFieldPairs(n))
	}
}

// SummarizeEdge folds one edge into the running counts.
func (s *Summarizer) SummarizeEdge(e *model.Edge) {
	if e == nil {
		return
	}
	if e.Predicate == "" {
		s.aggregator.Record(validate.LevelWarning, ErrorTypeMissingPredicate,
			"edge has no predicate", e.ID)
	} else if s.vocab != nil && !s.vocab.IsKnownPredicate(e.Predicate) {
		s.aggregator.Record(validate.LevelWarning, validate.ErrorTypeUnrecognizedPredicate,
			"predicate is not a known biolink predicate: "+e.Predicate, e.ID)
	}
	if s.prefixes != nil {
		if _, err := s.prefixes.Expand(e.Subject); err != nil {
			s.aggregator.Record(validate.LevelWarning, ErrorTypeUnrecognizedPrefix,
				"edge subject uses an unrecognized prefix", e.Subject)
		}
		if _, err := s.prefixes.Expand(e.Object); err != nil {
			s.aggregator.Record(validate.LevelWarning, ErrorTypeUnrecognizedPrefix,
				"edge object uses an unrecognized prefix", e.Object)
		}
	}

	subjCats := categoriesOrUnknown(s.nodeCategories[e.Subject])
	objCats := categoriesOrUnknown(s.nodeCategories[e.Object])
	for _, sc := range subjCats {
		for _, oc := range objCats {
			key := TripleType{SubjectCategory: sc, Predicate: e.Predicate, ObjectCategory: oc}
			s.tripleCount[key]++
		}
	}

	s.tallyFacets(e.ID, edgeFacetValue(e, s.facetProperties))
	if s.detail == DetailExtended {
		s.tallyCardinality(edgeFieldPairs(e))
	}
}

// Observe streams every node then every edge of store through the
// Summarizer, matching the "stream-compatible" pass order (spec §4.9).
func (s *Summarizer) Observe(store *graphstore.Graph) {
	for _, n := range store.Nodes() {
		s.SummarizeNode(n)
	}
	for _, e := range store.Edges() {
		s.SummarizeEdge(e)
	}
}

func (s *Summarizer) tallyFacets(subject string, values map[string]string) {
	for property, value := range values {
		if value == "" {
			continue
		}
		byValue, ok := s.facetCount[property]
		if !ok {
			byValue = make(map[string]int)
			s.facetCount[property] = byValue
		}
		byValue[value]++
	}
}

func (s *Summarizer) tallyCardinality(pairs map[string]string) {
	for property, value := range pairs {
		if value == "" {
			continue
		}
		set, ok := s.cardinality[property]
		if !ok {
			set = make(map[string]struct{})
			s.cardinality[property] = set
		}
		set[value] = struct{}{}
	}
}

// Report renders the accumulated counts as a Summary.
func (s *Summarizer) Report() *Summary {
	out := &Summary{
		NodeCategoryCount: make(map[string]int, len(s.categoryCount)),
		GeneratedAtMs:     timestamp.Now(),
	}
	for c, n := range s.categoryCount {
		out.NodeCategoryCount[c] = n
	}

	for key, count := range s.tripleCount {
		tt := key
		tt.Count = count
		out.EdgeTripleTypeCount = append(out.EdgeTripleTypeCount, tt)
	}
	sort.Slice(out.EdgeTripleTypeCount, func(i, j int) bool {
		a, b := out.EdgeTripleTypeCount[i], out.EdgeTripleTypeCount[j]
		if a.SubjectCategory != b.SubjectCategory {
			return a.SubjectCategory < b.SubjectCategory
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		return a.ObjectCategory < b.ObjectCategory
	})

	if len(s.facetCount) > 0 {
		out.FacetCount = make(map[string]map[string]int, len(s.facetCount))
		for property, byValue := range s.facetCount {
			copied := make(map[string]int, len(byValue))
			for v, n := range byValue {
				copied[v] = n
			}
			out.FacetCount[property] = copied
		}
	}

	if s.detail == DetailExtended && len(s.cardinality) > 0 {
		out.PropertyCardinality = make(map[string]int, len(s.cardinality))
		for property, set := range s.cardinality {
			out.PropertyCardinality[property] = len(set)
		}
	}
	return out
}

// WriteYAML emits the Summary as YAML.
func (s *Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(s)
}

// WriteJSON emits the Summary as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func categoriesOrUnknown(categories []string) []string {
	if len(categories) == 0 {
		return []string{model.RootEntityCategory}
	}
	return categories
}

func nodeFacetValue(n *model.Node, properties []string) map[string]string {
	out := make(map[string]string, len(properties))
	for _, p := range properties {
		out[p] = firstNodeFieldString(n, p)
	}
	return out
}

func edgeFacetValue(e *model.Edge, properties []string) map[string]string {
	out := make(map[string]string, len(properties))
	for _, p := range properties {
		out[p] = firstEdgeFieldString(e, p)
	}
	return out
}

func firstNodeFieldString(n *model.Node, property string) string {
	switch property {
	case "provided_by":
		if len(n.ProvidedBy) > 0 {
			return n.ProvidedBy[0]
		}
		return ""
	case "category":
		if len(n.Category) > 0 {
			return n.Category[0]
		}
		return ""
	default:
		if v, ok := n.Properties[property]; ok {
			return v.String()
		}
		return ""
	}
}

func firstEdgeFieldString(e *model.Edge, property string) string {
	switch property {
	case "primary_knowledge_source":
		return e.PrimaryKnowledgeSource
	case "knowledge_level":
		return e.KnowledgeLevel
	case "agent_type":
		return e.AgentType
	case "predicate":
		return e.Predicate
	default:
		if v, ok := e.Properties[property]; ok {
			return v.String()
		}
		return ""
	}
}

func nodeFieldPairs(n *model.Node) map[string]string {
	out := map[string]string{
		"name":        n.Name,
		"description": n.Description,
	}
	if len(n.ProvidedBy) > 0 {
		out["provided_by"] = n.ProvidedBy[0]
	}
	for k, v := range n.Properties {
		out[k] = v.String()
	}
	return out
}

func edgeFieldPairs(e *model.Edge) map[string]string {
	out := map[string]string{
		"knowledge_level":          e.KnowledgeLevel,
		"agent_type":               e.AgentType,
		"primary_knowledge_source": e.PrimaryKnowledgeSource,
	}
	for k, v := range e.Properties {
		out[k] = v.String()
	}
	return out
}
