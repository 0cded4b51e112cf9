// Package source defines the Source contract every format-specific reader
// implements (spec §4.3): a single-use, forward-only, finite producer of
// Node/Edge records. Concrete formats live in subpackages (tabular,
// jsonformat, linejson, ntriples, obograph, sssom, trapi); the
// property-graph database reader lives in package pgdb.
package source
