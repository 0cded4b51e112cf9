// Package graphstore implements the in-memory multi-edge directed property
// graph the Transformer materializes in non-streaming mode and the Clique
// Merge Resolver / Graph Merge operate on (spec §4.2). A Graph owns its
// node and edge storage exclusively; it is not safe for concurrent
// mutation and callers must externally serialize access (spec §5).
package graphstore
