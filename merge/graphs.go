package merge

import (
	"log/slog"

	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/model"
)

// Graphs merges 2 or more Graph Stores into one, node-by-id and edge-by-
// composite-key (subject, predicate, object, primary_knowledge_source),
// using the same field-union rules a single store applies to itself (spec
// §4.8). On a scalar mismatch the first-seen value wins and a
// WARNING/SCALAR_CONFLICT is logged.
func Graphs(logger *slog.Logger, stores ...*graphstore.Graph) *graphstore.Graph {
	if logger == nil {
		logger = slog.Default()
	}
	out := graphstore.New()
	for _, store := range stores {
		for _, n := range store.Nodes() {
			if existing := out.GetNode(n.ID); existing != nil {
				logNodeScalarConflicts(logger, existing, n)
			}
			out.AddNode(n)
		}
		for _, e := range store.Edges() {
			if existing := findMatchingEdge(out, e); existing != nil {
				logEdgeScalarConflicts(logger, existing, e)
			}
			out.AddEdge(e)
		}
	}
	return out
}

func findMatchingEdge(g *graphstore.Graph, e *model.Edge) *model.Edge {
	for _, candidate := range g.OutEdges(e.Subject) {
		if candidate.Object == e.Object && candidate.Predicate == e.Predicate &&
			candidate.PrimaryKnowledgeSource == e.PrimaryKnowledgeSource {
			return candidate
		}
	}
	return nil
}

func logNodeScalarConflicts(logger *slog.Logger, existing, incoming *model.Node) {
	logScalarConflict(logger, "node", existing.ID, "name", existing.Name, incoming.Name)
	logScalarConflict(logger, "node", existing.ID, "description", existing.Description, incoming.Description)
}

func logEdgeScalarConflicts(logger *slog.Logger, existing, incoming *model.Edge) {
	logScalarConflict(logger, "edge", existing.ID, "knowledge_level", existing.KnowledgeLevel, incoming.KnowledgeLevel)
	logScalarConflict(logger, "edge", existing.ID, "agent_type", existing.AgentType, incoming.AgentType)
}

func logScalarConflict(logger *slog.Logger, kind, id, field, existing, incoming string) {
	if existing == "" || incoming == "" || existing == incoming {
		return
	}
	logger.Warn("scalar conflict on graph merge",
		"error_type", "SCALAR_CONFLICT", "kind", kind, "id", id, "field", field,
		"kept", existing, "dropped", incoming)
}
