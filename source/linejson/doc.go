// Package linejson implements the Source and Sink for line-delimited JSON
// node and edge files (spec §4.3.3, §4.4). Nodes live in
// "<base>_nodes.jsonl" and edges in "<base>_edges.jsonl"; each line is one
// JSON object. Blank lines are tolerated and skipped.
package linejson
