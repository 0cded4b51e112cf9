// Package sssom implements the Source for SSSOM mapping sets (spec
// §4.3.7): a TSV of mapping rows, each becoming an edge whose predicate is
// derived from the mapping-predicate column. Subject and object become
// nodes with a default category if they are not already present.
package sssom
