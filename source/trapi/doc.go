// Package trapi implements the Source for TRAPI Knowledge Graph JSON
// (spec §4.3.8): "knowledge_graph.nodes" (an object keyed by node id) and
// "knowledge_graph.edges" (an object keyed by edge id). "categories"
// becomes "category", "attributes" becomes Properties (keyed by
// attribute_type_id), and "sources[].resource_id" is folded into the
// matching knowledge-source slot by resource_role.
package trapi
