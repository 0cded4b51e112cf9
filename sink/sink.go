package sink

import (
	"context"

	"github.com/biolink/kgx/model"
)

// Sink is a write-only, single-use consumer of Node/Edge records (spec
// §4.4). WriteNode and WriteEdge receive records one at a time; Finalize
// flushes buffers and closes handles. Each output file is written on its
// own; no Sink bundles several files into one tarball.
type Sink interface {
	WriteNode(ctx context.Context, n *model.Node) error
	WriteEdge(ctx context.Context, e *model.Edge) error
	Finalize(ctx context.Context) error
}
