// Package obograph implements the Source for OBOGraph JSON ontology
// exports (spec §4.3.6): a document shaped {"graphs": [{"nodes": [...],
// "edges": [...]}]}. OBO predicates (is_a, part_of, ...) are mapped
// through a configurable predicate map; synonyms, xrefs, definitions and
// comments become node properties. A node lacking a derivable category
// receives the root entity class.
package obograph
