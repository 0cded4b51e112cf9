package pgdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/pkg/buffer"
)

// Sink batches node and edge writes to a property-graph database, keyed
// by id for nodes and by (subject, predicate, object) for edges (spec
// §4.4 "DB Sink", §6.2). Finalize flushes remaining buffered rows and
// creates a unique-on-id constraint per node label seen (spec §4.4).
//
// Buffering uses a capped circular buffer sized to the client's batch size
// rather than a plain slice, so WriteNode/WriteEdge always observe bounded
// memory even if a caller forgets to call Finalize promptly.
type Sink struct {
	client *Client

	mu          sync.Mutex
	nodeBuf     buffer.Buffer[*model.Node]
	edgeBuf     buffer.Buffer[*model.Edge]
	labelsSeen  map[string]struct{}
	constrained map[string]struct{}
}

// NewSink returns a Sink writing through client.
func NewSink(client *Client) *Sink {
	nodeBuf, err := buffer.NewCircularBuffer[*model.Node](client.cfg.BatchSize)
	if err != nil {
		nodeBuf, _ = buffer.NewCircularBuffer[*model.Node](500)
	}
	edgeBuf, err := buffer.NewCircularBuffer[*model.Edge](client.cfg.BatchSize)
	if err != nil {
		edgeBuf, _ = buffer.NewCircularBuffer[*model.Edge](500)
	}
	return &Sink{
		client:      client,
		nodeBuf:     nodeBuf,
		edgeBuf:     edgeBuf,
		labelsSeen:  make(map[string]struct{}),
		constrained: make(map[string]struct{}),
	}
}

// WriteNode buffers n, flushing the buffer once it reaches the client's
// configured batch size.
func (s *Sink) WriteNode(ctx context.Context, n *model.Node) error {
	s.mu.Lock()
	_ = s.nodeBuf.Write(n)
	for _, c := range n.Category {
		s.labelsSeen[sanitizeLabel(c)] = struct{}{}
	}
	flush := s.nodeBuf.Size() >= s.client.cfg.BatchSize
	var batch []*model.Node
	if flush {
		batch = s.nodeBuf.ReadBatch(s.client.cfg.BatchSize)
	}
	s.mu.Unlock()

	if flush {
		return s.flushNodes(ctx, batch)
	}
	return nil
}

// WriteEdge buffers e, flushing the buffer once it reaches the client's
// configured batch size.
func (s *Sink) WriteEdge(ctx context.Context, e *model.Edge) error {
	s.mu.Lock()
	_ = s.edgeBuf.Write(e)
	flush := s.edgeBuf.Size() >= s.client.cfg.BatchSize
	var batch []*model.Edge
	if flush {
		batch = s.edgeBuf.ReadBatch(s.client.cfg.BatchSize)
	}
	s.mu.Unlock()

	if flush {
		return s.flushEdges(ctx, batch)
	}
	return nil
}

// Finalize flushes remaining buffered rows and creates a unique-on-id
// constraint for every node label seen.
func (s *Sink) Finalize(ctx context.Context) error {
	s.mu.Lock()
	nodeBatch := s.nodeBuf.ReadBatch(s.nodeBuf.Size())
	edgeBatch := s.edgeBuf.ReadBatch(s.edgeBuf.Size())
	s.mu.Unlock()

	if len(nodeBatch) > 0 {
		if err := s.flushNodes(ctx, nodeBatch); err != nil {
			return err
		}
	}
	if len(edgeBatch) > 0 {
		if err := s.flushEdges(ctx, edgeBatch); err != nil {
			return err
		}
	}
	return s.ensureConstraints(ctx)
}

// flushNodes writes a batch via UNWIND $rows AS r MERGE (n:KGXNode:<label>
// {id: r.id}) SET n += r, one statement per label, where <label> is the
// sanitized first category of each node.
func (s *Sink) flushNodes(ctx context.Context, batch []*model.Node) error {
	byLabel := make(map[string][]map[string]any)
	for _, n := range batch {
		props, err := nodeToProps(n)
		if err != nil {
			return err
		}
		label := "KGXNode"
		if len(n.Category) > 0 {
			label = sanitizeLabel(n.Category[0])
		}
		byLabel[label] = append(byLabel[label], props)
	}
	for label, rows := range byLabel {
		cypher := fmt.Sprintf(
			`UNWIND $rows AS r MERGE (n:KGXNode:%s {id: r.id}) SET n += r`, label)
		if _, err := s.client.run(ctx, neo4j.AccessModeWrite, cypher, map[string]any{"rows": rows}); err != nil {
			return err
		}
	}
	return nil
}

// flushEdges writes a batch via UNWIND $rows AS r MATCH (s {id: r.subject}),
// (o {id: r.object}) MERGE (s)-[rel:KGX_EDGE {predicate: r.predicate}]->(o)
// SET rel += r (spec §6.2, "edge merge keyed by (subject, predicate,
// object)").
func (s *Sink) flushEdges(ctx context.Context, batch []*model.Edge) error {
	rows := make([]map[string]any, 0, len(batch))
	for _, e := range batch {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		props, err := edgeToProps(e)
		if err != nil {
			return err
		}
		rows = append(rows, props)
	}
	cypher := fmt.Sprintf(`UNWIND $rows AS r
MATCH (subj:KGXNode {id: r.subject}), (obj:KGXNode {id: r.object})
MERGE (subj)-[rel:%s {predicate: r.predicate}]->(obj)
SET rel += r`, edgeRelType)
	_, err := s.client.run(ctx, neo4j.AccessModeWrite, cypher, map[string]any{"rows": rows})
	return err
}

func (s *Sink) ensureConstraints(ctx context.Context) error {
	s.mu.Lock()
	labels := make([]string, 0, len(s.labelsSeen))
	for label := range s.labelsSeen {
		if _, ok := s.constrained[label]; ok {
			continue
		}
		labels = append(labels, label)
	}
	s.mu.Unlock()

	for _, label := range labels {
		name := "kgx_unique_id_" + label
		cypher := fmt.Sprintf(
			`CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE`, name, label)
		if _, err := s.client.run(ctx, neo4j.AccessModeWrite, cypher, map[string]any{}); err != nil {
			return errors.WrapTransient(err, "pgdb", "ensureConstraints", "create constraint for "+label)
		}
		s.mu.Lock()
		s.constrained[label] = struct{}{}
		s.mu.Unlock()
	}
	return nil
}
