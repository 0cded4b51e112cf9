// Package report computes the two stream-compatible summary passes run
// over a Graph Store or a Source stream: the Summarizer (per-category node
// counts, per-triple-type edge counts, optional facet counts) and the
// Meta-KG generator (per-class and per-triple-type aggregates conforming
// to the content-metadata schema) (spec §4.9).
//
// Both pass over nodes then edges and surface anomalies (missing
// categories, missing predicates, unrecognized prefixes) through a shared
// validate.Aggregator rather than failing the pass outright.
package report
