// Package rdf implements the Sink side of the N-Triples / RDF form (spec
// §4.3.4, §4.4): a plain triple for an edge with no properties beyond its
// core fields, or a reified statement (rdf:subject/predicate/object plus
// one triple per extra property) when it does carry them.
package rdf
