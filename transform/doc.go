// Package transform implements the Transformer pipeline (spec §4.5): a
// streaming Source→Sink loop and a non-streaming Source→Graph Store→Sink
// path, both applying the same per-record stage sequence — filter, CURIE
// normalization, category defaulting, predicate normalization, provenance
// injection (including the InfoRes rewrite rule) — before handoff.
package transform
