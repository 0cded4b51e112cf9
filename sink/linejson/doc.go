// Package linejson implements the Sink side of the line-delimited JSON
// node/edge format (spec §4.3.3, §4.4): one JSON object per line, written
// to the two files the caller names (nodes file first, edges file second)
// as records arrive, so the pipeline never holds the whole graph in memory.
package linejson
