// Package sink defines the Sink contract every format-specific writer
// implements (spec §4.4): a write-only, single-use consumer of Node/Edge
// records. Concrete formats live in subpackages (tabular, jsonformat,
// linejson, rdf, null); the property-graph database writer lives in
// package pgdb.
package sink
