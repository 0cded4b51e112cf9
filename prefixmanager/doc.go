// Package prefixmanager implements the bidirectional CURIE↔IRI mapping and
// canonicalization described in spec §4.1: expand a CURIE to its base IRI,
// contract an IRI back to the CURIE with the longest matching base, and
// produce the preferred (canonical) CURIE form for identifiers that admit
// more than one valid prefix.
package prefixmanager
