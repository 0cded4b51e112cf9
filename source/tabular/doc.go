// Package tabular implements the Source and Sink for CSV/TSV node and edge
// tables (spec §4.3.1, §4.4). Two files are read or written: a node file
// and an edge file. The first row of each is a header; multivalued
// columns are delimited by `|`, with a literal `|` escaped as `` `| ``.
package tabular
