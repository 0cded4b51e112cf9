package validate

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/prefixmanager"
	"github.com/biolink/kgx/vocab"
)

var (
	camelCaseLocal = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	snakeCaseLocal = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Validator checks Nodes and Edges against a captured vocab.Service,
// recording every violation into its Aggregator instead of failing fast
// (spec §4.6). Nothing here consults a process-wide global; the Service
// and the StrictMode setting are both fixed at construction time.
type Validator struct {
	vocab   vocab.Service
	strict  bool
	metrics *metric.Metrics
	agg     *Aggregator

	mu        sync.Mutex
	seenNodes map[string]bool
}

// Option configures a Validator at construction time.
type Option func(*Validator)

// WithStrictMode makes knowledge_level/agent_type absence an ERROR instead
// of a WARNING (spec §9 resolved Open Question).
func WithStrictMode(strict bool) Option {
	return func(v *Validator) { v.strict = strict }
}

// WithMetrics overrides the Metrics instance validation issues are also
// recorded to (in addition to the Aggregator).
func WithMetrics(m *metric.Metrics) Option {
	return func(v *Validator) { v.metrics = m }
}

// NewValidator returns a Validator bound to svc. svc is captured once and
// never swapped out, per the vocabulary-service threading redesign (spec
// §9): callers who want a fresh model version construct a new Validator
// rather than mutating a shared one.
func NewValidator(svc vocab.Service, opts ...Option) *Validator {
	v := &Validator{
		vocab:     svc,
		metrics:   metric.NewMetrics(),
		agg:       newAggregator(),
		seenNodes: make(map[string]bool),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Report returns the accumulated level -> error_type -> message ->
// [subjects] structure.
func (v *Validator) Report() map[string]map[string]map[string][]string {
	return v.agg.Report()
}

// Valid reports whether no ERROR-level issue has been recorded so far.
func (v *Validator) Valid() bool {
	return v.agg.IsEmpty()
}

func (v *Validator) record(level Level, errorType, message, subject string) {
	v.agg.record(level, errorType, message, subject)
	if v.metrics != nil {
		v.metrics.RecordValidationIssue(string(level), errorType)
	}
}

// ValidateNode checks required slots, CURIE well-formedness, category
// legality and property value types (spec §4.6 Node checks).
func (v *Validator) ValidateNode(n *model.Node) {
	if n == nil || n.ID == "" {
		return
	}

	v.mu.Lock()
	duplicate := v.seenNodes[n.ID]
	v.seenNodes[n.ID] = true
	v.mu.Unlock()
	if duplicate {
		v.record(LevelWarning, ErrorTypeDuplicateNode, "duplicate node id", n.ID)
	}

	if !prefixmanager.IsCURIE(n.ID) {
		v.record(LevelError, ErrorTypeInvalidCURIE, "id is not a well-formed CURIE", n.ID)
	}

	if len(n.Category) == 0 {
		v.record(LevelWarning, ErrorTypeNoCategory, "node lacks category", n.ID)
		return
	}
	for _, c := range n.Category {
		if !camelCaseLocal.MatchString(localPart(c)) {
			v.record(LevelWarning, ErrorTypeInvalidCategory,
				fmt.Sprintf("category %q is not CamelCase", c), n.ID)
			continue
		}
		if v.vocab != nil && !v.vocab.IsKnownClass(c) {
			v.record(LevelWarning, ErrorTypeInvalidCategory,
				fmt.Sprintf("category %q is not a known Biolink class", c), n.ID)
		}
	}

	if v.vocab == nil {
		return
	}
	required := make(map[string]bool)
	for _, c := range n.Category {
		for _, slot := range v.vocab.RequiredSlots(c) {
			required[slot] = true
		}
	}
	for slot := range required {
		if _, ok := nodeSlotValue(n, slot); !ok {
			v.record(LevelError, ErrorTypeMissingNodeProperty,
				fmt.Sprintf("missing required slot %q", slot), n.ID)
		}
	}

	for slot, value := range nodeSlotValues(n) {
		for _, c := range n.Category {
			vt, ok := v.vocab.ValueType(c, slot)
			if !ok {
				continue
			}
			if !valueMatchesType(vt, value) {
				v.record(LevelError, ErrorTypeInvalidValueType,
					fmt.Sprintf("slot %q does not have declared type %q", slot, vt), n.ID)
			}
			break
		}
	}
}

// ValidateEdge checks required slots, well-formed endpoints/predicate,
// predicate hierarchy membership and provenance CURIE values (spec §4.6
// Edge checks).
func (v *Validator) ValidateEdge(e *model.Edge) {
	if e == nil {
		return
	}
	subjectID := edgeSubject(e)

	if !prefixmanager.IsCURIE(e.Subject) {
		v.record(LevelError, ErrorTypeInvalidCURIE, "subject is not a well-formed CURIE", subjectID)
	}
	if !prefixmanager.IsCURIE(e.Object) {
		v.record(LevelError, ErrorTypeInvalidCURIE, "object is not a well-formed CURIE", subjectID)
	}

	switch {
	case !prefixmanager.IsCURIE(e.Predicate):
		v.record(LevelError, ErrorTypeInvalidEdgePredicate, "predicate is not a well-formed CURIE", subjectID)
	case !snakeCaseLocal.MatchString(localPart(e.Predicate)):
		v.record(LevelError, ErrorTypeInvalidEdgePredicate,
			fmt.Sprintf("predicate %q is not snake_case", e.Predicate), subjectID)
	case v.vocab != nil && !v.vocab.IsKnownPredicate(e.Predicate):
		v.record(LevelError, ErrorTypeInvalidEdgePredicate,
			fmt.Sprintf("predicate %q is not in the relation hierarchy", e.Predicate), subjectID)
	}

	knowledgeLevel := LevelWarning
	if v.strict {
		knowledgeLevel = LevelError
	}
	if e.KnowledgeLevel == "" {
		v.record(knowledgeLevel, ErrorTypeMissingEdgeProperty, "missing knowledge_level", subjectID)
	}
	if e.AgentType == "" {
		v.record(knowledgeLevel, ErrorTypeMissingEdgeProperty, "missing agent_type", subjectID)
	}

	if e.PrimaryKnowledgeSource != "" && !prefixmanager.IsCURIE(e.PrimaryKnowledgeSource) {
		v.record(LevelError, ErrorTypeInvalidCURIE, "primary_knowledge_source is not a well-formed CURIE", subjectID)
	}
	for _, src := range e.AggregatorKnowledgeSource {
		if !prefixmanager.IsCURIE(src) {
			v.record(LevelError, ErrorTypeInvalidCURIE, "aggregator_knowledge_source is not a well-formed CURIE", subjectID)
		}
	}
	for _, src := range e.SupportingDataSource {
		if !prefixmanager.IsCURIE(src) {
			v.record(LevelError, ErrorTypeInvalidCURIE, "supporting_data_source is not a well-formed CURIE", subjectID)
		}
	}

	if v.vocab == nil {
		return
	}
	cats := e.Category
	if len(cats) == 0 {
		cats = []string{"biolink:Association"}
	}
	required := make(map[string]bool)
	for _, c := range cats {
		for _, slot := range v.vocab.RequiredSlots(c) {
			required[slot] = true
		}
	}
	for slot := range required {
		if _, ok := edgeSlotValue(e, slot); !ok {
			v.record(LevelError, ErrorTypeMissingEdgeProperty,
				fmt.Sprintf("missing required slot %q", slot), subjectID)
		}
	}
}

// ValidateStore runs ValidateNode then ValidateEdge over every record in
// store, in insertion order (spec §4.6, "Validates a Graph Store").
func (v *Validator) ValidateStore(store *graphstore.Graph) {
	for _, n := range store.Nodes() {
		v.ValidateNode(n)
	}
	for _, e := range store.Edges() {
		v.ValidateEdge(e)
	}
}

func edgeSubject(e *model.Edge) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("%s|%s|%s", e.Subject, e.Predicate, e.Object)
}

func localPart(curie string) string {
	for i := 0; i < len(curie); i++ {
		if curie[i] == ':' {
			return curie[i+1:]
		}
	}
	return curie
}

func nodeSlotValue(n *model.Node, slot string) (model.Value, bool) {
	switch slot {
	case "id":
		return model.String(n.ID), n.ID != ""
	case "category":
		return model.StringList(n.Category), len(n.Category) > 0
	case "name":
		return model.String(n.Name), n.Name != ""
	case "description":
		return model.String(n.Description), n.Description != ""
	case "xref":
		return model.StringList(n.Xref), len(n.Xref) > 0
	case "synonym":
		return model.StringList(n.Synonym), len(n.Synonym) > 0
	case "provided_by":
		return model.StringList(n.ProvidedBy), len(n.ProvidedBy) > 0
	default:
		v, ok := n.Properties[slot]
		return v, ok
	}
}

func nodeSlotValues(n *model.Node) map[string]model.Value {
	out := map[string]model.Value{"id": model.String(n.ID), "category": model.StringList(n.Category)}
	if n.Name != "" {
		out["name"] = model.String(n.Name)
	}
	for k, v := range n.Properties {
		out[k] = v
	}
	return out
}

func edgeSlotValue(e *model.Edge, slot string) (model.Value, bool) {
	switch slot {
	case "subject":
		return model.String(e.Subject), e.Subject != ""
	case "object":
		return model.String(e.Object), e.Object != ""
	case "predicate":
		return model.String(e.Predicate), e.Predicate != ""
	case "category":
		return model.StringList(e.Category), len(e.Category) > 0
	case "primary_knowledge_source":
		return model.String(e.PrimaryKnowledgeSource), e.PrimaryKnowledgeSource != ""
	case "aggregator_knowledge_source":
		return model.StringList(e.AggregatorKnowledgeSource), len(e.AggregatorKnowledgeSource) > 0
	case "publications":
		return model.StringList(e.Publications), len(e.Publications) > 0
	default:
		v, ok := e.Properties[slot]
		return v, ok
	}
}

func valueMatchesType(vt vocab.ValueType, v model.Value) bool {
	switch vt {
	case vocab.ValueTypeString:
		_, ok := v.(model.String)
		return ok
	case vocab.ValueTypeCURIE:
		s, ok := v.(model.String)
		return ok && prefixmanager.IsCURIE(string(s))
	case vocab.ValueTypeNumber:
		_, ok := v.(model.Number)
		return ok
	case vocab.ValueTypeBoolean:
		_, ok := v.(model.Bool)
		return ok
	case vocab.ValueTypeListString:
		_, ok := v.(model.StringList)
		return ok
	case vocab.ValueTypeListCURIE:
		sl, ok := v.(model.StringList)
		if !ok {
			return false
		}
		for _, s := range sl {
			if !prefixmanager.IsCURIE(s) {
				return false
			}
		}
		return true
	case vocab.ValueTypeListNumber:
		_, ok := v.(model.NumberList)
		return ok
	default:
		return true
	}
}
