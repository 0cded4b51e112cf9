package source

import (
	"context"
	stderrors "errors"

	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/model"
)

// Kind discriminates the two record shapes a Source yields.
type Kind int

const (
	KindNode Kind = iota
	KindEdge
)

// Record is a single Node or Edge yielded by a Source, tagged by Kind
// (spec §4.3: "each record is either a Node or an Edge").
type Record struct {
	Kind Kind
	Node *model.Node
	Edge *model.Edge
}

// Source is a single-use, forward-only, finite producer of Node/Edge
// records (spec §4.3). Next returns errors.ErrSourceExhausted once the
// underlying input is drained. A Source holds its I/O handles until Close
// is called; reaching ErrSourceExhausted does not close them.
type Source interface {
	Next(ctx context.Context) (Record, error)
	Close() error
}

// DrainNodes pulls records from src, discarding edges, until exhaustion.
// Used by consumers that only care about one kind (spec §4.3 read_nodes).
func DrainNodes(ctx context.Context, src Source, fn func(*model.Node) error) error {
	return drain(ctx, src, func(rec Record) error {
		if rec.Kind != KindNode {
			return nil
		}
		return fn(rec.Node)
	})
}

// DrainEdges pulls records from src, discarding nodes, until exhaustion
// (spec §4.3 read_edges).
func DrainEdges(ctx context.Context, src Source, fn func(*model.Edge) error) error {
	return drain(ctx, src, func(rec Record) error {
		if rec.Kind != KindEdge {
			return nil
		}
		return fn(rec.Edge)
	})
}

func drain(ctx context.Context, src Source, fn func(Record) error) error {
	for {
		rec, err := src.Next(ctx)
		if err != nil {
			if stderrors.Is(err, errors.ErrSourceExhausted) {
				return nil
			}
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
