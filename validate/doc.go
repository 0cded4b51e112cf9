// Package validate implements the Validator (spec §4.6): a per-record
// rule set checked against a Vocabulary Service, with violations
// collected into a nested level -> error_type -> message -> [subjects]
// aggregator. A Validator captures one vocab.Service at construction time
// (spec §9's threaded-context redesign) rather than consulting a
// process-wide mutable global.
package validate
