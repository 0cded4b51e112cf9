package report

// Error type constants for anomalies that are specific to the Summarizer/
// Meta-KG passes rather than the Validator's per-record checks (spec §4.9,
// "Anomaly detection (both): missing categories, missing predicates,
// unrecognized prefixes"). Missing-category anomalies reuse
// validate.ErrorTypeNoCategory and unrecognized-predicate anomalies reuse
// validate.ErrorTypeUnrecognizedPredicate since both passes mean the same
// thing by them.
const (
	ErrorTypeMissingPredicate   = "MISSING_PREDICATE"
	ErrorTypeUnrecognizedPrefix = "UNRECOGNIZED_PREFIX"
)
