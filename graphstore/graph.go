package graphstore

import (
	"github.com/google/uuid"

	"github.com/biolink/kgx/model"
)

// EdgeKey identifies one parallel edge between an ordered (Subject,
// Object) pair. Ordinal distinguishes parallel edges sharing the same
// endpoints (spec §4.2: edge map keyed by (subject, object, edge-key)).
type EdgeKey struct {
	Subject string
	Object  string
	Ordinal int
}

type pairKey struct {
	Subject string
	Object  string
}

// Graph is an in-memory, multi-edge, directed property graph (spec §4.2).
// A Graph is not safe for concurrent mutation.
type Graph struct {
	nodes     map[string]*model.Node
	nodeOrder []string

	edges     map[EdgeKey]*model.Edge
	edgeOrder []EdgeKey

	outAdj    map[string][]EdgeKey
	inAdj     map[string][]EdgeKey
	nextOrdinal map[pairKey]int
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:       make(map[string]*model.Node),
		edges:       make(map[EdgeKey]*model.Edge),
		outAdj:      make(map[string][]EdgeKey),
		inAdj:       make(map[string][]EdgeKey),
		nextOrdinal: make(map[pairKey]int),
	}
}

// AddNode inserts n, or merges it into an existing node sharing n.ID under
// the field-union rules of §4.2. Duplicate add never fails. AddNode
// defaults an empty Category to RootEntityCategory (spec I3).
func (g *Graph) AddNode(n *model.Node) *model.Node {
	n = n.Clone()
	if len(n.Category) == 0 {
		n.Category = []string{model.RootEntityCategory}
	}

	if existing, ok := g.nodes[n.ID]; ok {
		merged := MergeNodes(existing, n)
		g.nodes[n.ID] = merged
		return merged
	}

	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return n
}

// GetNode returns the stored node for id, or nil if absent.
func (g *Graph) GetNode(id string) *model.Node {
	return g.nodes[id]
}

// ensureNode materializes a placeholder node for id if it does not already
// exist, per spec I2.
func (g *Graph) ensureNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.AddNode(model.NewNode(id))
}

// AddEdge inserts e, auto-materializing missing endpoints (spec I2) and
// minting a deterministic-looking id if e.ID is empty (spec I4). If an
// existing edge shares (subject, predicate, object, primary_knowledge_source)
// it is merged in place (§4.2); otherwise a new parallel edge is created.
func (g *Graph) AddEdge(e *model.Edge) (*model.Edge, EdgeKey) {
	e = e.Clone()
	g.ensureNode(e.Subject)
	g.ensureNode(e.Object)

	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	pk := pairKey{Subject: e.Subject, Object: e.Object}
	for _, key := range g.outAdj[e.Subject] {
		if key.Object != e.Object {
			continue
		}
		existing := g.edges[key]
		if existing.Predicate == e.Predicate && existing.PrimaryKnowledgeSource == e.PrimaryKnowledgeSource {
			merged := MergeEdges(existing, e)
			g.edges[key] = merged
			return merged, key
		}
	}

	ordinal := g.nextOrdinal[pk]
	g.nextOrdinal[pk] = ordinal + 1
	key := EdgeKey{Subject: e.Subject, Object: e.Object, Ordinal: ordinal}

	g.edges[key] = e
	g.edgeOrder = append(g.edgeOrder, key)
	g.outAdj[e.Subject] = append(g.outAdj[e.Subject], key)
	g.inAdj[e.Object] = append(g.inAdj[e.Object], key)

	return e, key
}

// GetEdge returns the stored edge for key, or nil if absent.
func (g *Graph) GetEdge(key EdgeKey) *model.Edge {
	return g.edges[key]
}

// RemoveNode deletes the node id and every edge incident to it.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, key := range append([]EdgeKey(nil), g.outAdj[id]...) {
		g.RemoveEdge(key)
	}
	for _, key := range append([]EdgeKey(nil), g.inAdj[id]...) {
		g.RemoveEdge(key)
	}
	delete(g.nodes, id)
	g.nodeOrder = removeString(g.nodeOrder, id)
}

// RemoveEdge deletes the single edge identified by key.
func (g *Graph) RemoveEdge(key EdgeKey) {
	if _, ok := g.edges[key]; !ok {
		return
	}
	delete(g.edges, key)
	g.edgeOrder = removeEdgeKey(g.edgeOrder, key)
	g.outAdj[key.Subject] = removeEdgeKey(g.outAdj[key.Subject], key)
	g.inAdj[key.Object] = removeEdgeKey(g.inAdj[key.Object], key)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*model.Node {
	out := make([]*model.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*model.Edge {
	out := make([]*model.Edge, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		out = append(out, g.edges[key])
	}
	return out
}

// NodeCount returns the number of nodes currently stored.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges currently stored.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Degree returns the total in+out degree of node id.
func (g *Graph) Degree(id string) int {
	return len(g.outAdj[id]) + len(g.inAdj[id])
}

// OutEdges returns the edges leaving id, in insertion order.
func (g *Graph) OutEdges(id string) []*model.Edge {
	keys := g.outAdj[id]
	out := make([]*model.Edge, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.edges[k])
	}
	return out
}

// InEdges returns the edges arriving at id, in insertion order.
func (g *Graph) InEdges(id string) []*model.Edge {
	keys := g.inAdj[id]
	out := make([]*model.Edge, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.edges[k])
	}
	return out
}

func removeString(s []string, target string) []string {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

func removeEdgeKey(s []EdgeKey, target EdgeKey) []EdgeKey {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
