// Package null implements a Sink that discards every record, for
// Transformer runs that only need validation or summarization side
// effects from an Inspector (spec §5, "Transform tabular input with
// format=null and an inspector").
package null

import (
	"context"

	"github.com/biolink/kgx/model"
)

// Sink discards every record it is given.
type Sink struct{}

// NewSink returns a Sink that discards everything written to it.
func NewSink() *Sink {
	return &Sink{}
}

// WriteNode discards n.
func (s *Sink) WriteNode(ctx context.Context, n *model.Node) error {
	return nil
}

// WriteEdge discards e.
func (s *Sink) WriteEdge(ctx context.Context, e *model.Edge) error {
	return nil
}

// Finalize is a no-op.
func (s *Sink) Finalize(ctx context.Context) error {
	return nil
}
