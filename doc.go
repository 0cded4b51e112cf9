// Package kgx provides a streaming toolkit for exchanging biomedical
// knowledge graphs between heterogeneous serializations: tabular (CSV/TSV),
// line-delimited JSON, plain JSON, N-Triples/OWL-as-RDF, OBOGraph JSON,
// SSSOM mapping sets, TRAPI, and a property-graph database.
//
// # Architecture
//
// Every format is reached through the same Source → Transformer → Sink
// pipeline, built around a uniform Node/Edge record model:
//
//	┌──────────┐      ┌─────────────┐      ┌──────────┐
//	│  Source  │ ───► │ Transformer │ ───► │   Sink   │
//	│ (format- │      │  (filter,   │      │ (format- │
//	│ specific)│      │  normalize, │      │ specific) │
//	└──────────┘      │  provenance)│      └──────────┘
//	                  └──────┬──────┘
//	                         │ optional
//	                         ▼
//	                  ┌─────────────┐
//	                  │ Graph Store │  in-memory, for merge/validate/report
//	                  └─────────────┘
//
// A Transformer can run in streaming mode (records flow straight from
// Source to Sink, O(1) memory) or buffered mode (records land in a
// graphstore.Graph first, enabling clique merge, validation and
// summarization before anything is written).
//
// # Packages
//
// Record model and storage:
//   - model: Node, Edge and the Value property sum type
//   - graphstore: in-memory multi-edge directed property graph
//   - prefixmanager: CURIE/IRI expansion, contraction and canonicalization
//
// Pipeline:
//   - source: Source interface plus one subpackage per format
//   - sink: Sink interface plus one subpackage per format
//   - transform: the Transformer and its normalization stages
//
// Graph operations:
//   - validate: Validator and the Biolink-like vocabulary contract
//   - merge: same-as clique resolution and multi-graph merge
//   - report: Summarizer and meta knowledge-graph generation
//   - vocab: the vocabulary Service interface and an in-memory
//     implementation of it
//   - pgdb: a property-graph database Source/Sink
//
// Ambient:
//   - config: recognized Source/Sink/Transformer options (JSON/YAML)
//   - errors: transient/invalid/fatal error classification
//   - metric: Prometheus instruments for pipeline throughput and
//     validation outcomes
//   - pkg/retry, pkg/cache, pkg/buffer, pkg/worker, pkg/timestamp:
//     generic infrastructure shared across the above
//
// # Usage
//
//	src, _ := tabular.NewSource(config.Options{Filename: []string{"nodes.tsv", "edges.tsv"}})
//	sink, _ := linejson.NewSink(config.Options{Filename: []string{"graph_nodes.jsonl", "graph_edges.jsonl"}})
//	tf := transform.New(config.Options{})
//	if err := tf.Transform(ctx, src, sink, nil); err != nil {
//	    log.Fatal(err)
//	}
//
// This package intentionally has no command-line entry point; embedding
// applications wire Sources, Sinks and the Transformer together directly.
package kgx
