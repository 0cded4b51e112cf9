package linejson

import (
	"context"
	"encoding/json"
	"io"

	"github.com/biolink/kgx/archive"
	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
)

// Sink writes nodes and edges as line-delimited JSON to sibling files as
// soon as each record arrives (spec §4.4).
type Sink struct {
	opts config.Options

	nodesWriter io.WriteCloser
	edgesWriter io.WriteCloser

	metrics *metric.Metrics
}

// NewSink prepares a Sink that will write to opts.Filename = [nodesPath, edgesPath].
func NewSink(opts config.Options) (*Sink, error) {
	if len(opts.Filename) != 2 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "linejson.Sink", "NewSink",
			"Filename must contain exactly [nodesPath, edgesPath]")
	}

	nodesWriter, err := archive.NewWriter(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}
	edgesWriter, err := archive.NewWriter(opts.Filename[1], opts.Compression)
	if err != nil {
		nodesWriter.Close()
		return nil, err
	}

	return &Sink{
		opts:        opts,
		nodesWriter: nodesWriter,
		edgesWriter: edgesWriter,
		metrics:     metric.NewMetrics(),
	}, nil
}

// WriteNode appends n as one JSON line to the node file.
func (s *Sink) WriteNode(ctx context.Context, n *model.Node) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "linejson.Sink", "WriteNode", "context")
	}
	if err := writeLine(s.nodesWriter, n); err != nil {
		return errors.WrapTransient(err, "linejson.Sink", "WriteNode", "encode node")
	}
	s.metrics.RecordWritten("node", "linejson")
	return nil
}

// WriteEdge appends e as one JSON line to the edge file.
func (s *Sink) WriteEdge(ctx context.Context, e *model.Edge) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "linejson.Sink", "WriteEdge", "context")
	}
	if err := writeLine(s.edgesWriter, e); err != nil {
		return errors.WrapTransient(err, "linejson.Sink", "WriteEdge", "encode edge")
	}
	s.metrics.RecordWritten("edge", "linejson")
	return nil
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Finalize closes both files.
func (s *Sink) Finalize(ctx context.Context) error {
	err1 := s.nodesWriter.Close()
	err2 := s.edgesWriter.Close()
	if err1 != nil {
		return errors.WrapTransient(err1, "linejson.Sink", "Finalize", "close nodes file")
	}
	if err2 != nil {
		return errors.WrapTransient(err2, "linejson.Sink", "Finalize", "close edges file")
	}
	return nil
}
