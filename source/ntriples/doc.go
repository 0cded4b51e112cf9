// Package ntriples implements the Source for N-Triples / OWL-as-RDF graphs
// (spec §4.3.4, §4.3.5). Triples are read one line at a time and grouped by
// subject; the format assumes input sorted by subject so the reified-edge
// and node-property buffers stay bounded to a single subject at a time.
package ntriples
