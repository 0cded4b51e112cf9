package validate

import (
	"sort"
	"sync"
)

// Level is a validation message severity (spec §4.6).
type Level string

const (
	LevelError   Level = "ERROR"
	LevelWarning Level = "WARNING"
	LevelInfo    Level = "INFO"
)

// Error type constants, per the §7 taxonomy the Validator reports against.
const (
	ErrorTypeMissingNodeProperty = "MISSING_NODE_PROPERTY"
	ErrorTypeMissingEdgeProperty = "MISSING_EDGE_PROPERTY"
	ErrorTypeInvalidCategory     = "INVALID_CATEGORY"
	ErrorTypeInvalidEdgePredicate = "INVALID_EDGE_PREDICATE"
	ErrorTypeDuplicateNode       = "DUPLICATE_NODE"
	ErrorTypeNoCategory          = "NO_CATEGORY"
	ErrorTypeInvalidCURIE        = "INVALID_CURIE"
	ErrorTypeInvalidValueType    = "INVALID_VALUE_TYPE"
	ErrorTypeUnrecognizedPredicate = "UNRECOGNIZED_PREDICATE"
)

// Aggregator deduplicates (level, error_type, message) tuples, accumulating
// the distinct subject identifiers each one was raised against into a set
// (spec §4.6, "identical tuples are collapsed, with subjects accumulated
// into a set").
type Aggregator struct {
	mu     sync.Mutex
	issues map[Level]map[string]map[string]map[string]struct{}
}

func newAggregator() *Aggregator {
	return &Aggregator{issues: make(map[Level]map[string]map[string]map[string]struct{})}
}

// NewAggregator returns an empty Aggregator, for callers outside this
// package that share its (level, error_type, message) -> [subjects]
// dedup structure (spec §4.9, "Anomaly detection ... reported via the
// error aggregator").
func NewAggregator() *Aggregator {
	return newAggregator()
}

// Record adds one violation tuple to the aggregator.
func (a *Aggregator) Record(level Level, errorType, message, subject string) {
	a.record(level, errorType, message, subject)
}

func (a *Aggregator) record(level Level, errorType, message, subject string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	byType, ok := a.issues[level]
	if !ok {
		byType = make(map[string]map[string]map[string]struct{})
		a.issues[level] = byType
	}
	byMessage, ok := byType[errorType]
	if !ok {
		byMessage = make(map[string]map[string]struct{})
		byType[errorType] = byMessage
	}
	subjects, ok := byMessage[message]
	if !ok {
		subjects = make(map[string]struct{})
		byMessage[message] = subjects
	}
	if subject != "" {
		subjects[subject] = struct{}{}
	}
}

// Report renders the aggregator as level -> error_type -> message ->
// [subjects], subjects sorted for deterministic output (spec §4.6).
func (a *Aggregator) Report() map[string]map[string]map[string][]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]map[string]map[string][]string, len(a.issues))
	for level, byType := range a.issues {
		outByType := make(map[string]map[string][]string, len(byType))
		for errorType, byMessage := range byType {
			outByMessage := make(map[string][]string, len(byMessage))
			for message, subjects := range byMessage {
				list := make([]string, 0, len(subjects))
				for s := range subjects {
					list = append(list, s)
				}
				sort.Strings(list)
				outByMessage[message] = list
			}
			outByType[errorType] = outByMessage
		}
		out[string(level)] = outByType
	}
	return out
}

// IsEmpty reports whether no ERROR-level issue has been recorded.
// WARNING and INFO issues never fail validation on their own (spec §4.6).
func (a *Aggregator) IsEmpty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, hasErrors := a.issues[LevelError]
	return !hasErrors
}
