package jsonformat

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

// Sink writes a single JSON document shaped {"nodes": [...], "edges":
// [...]} (spec §4.3.2), emitting each record's JSON as soon as it arrives
// rather than buffering the whole graph.
type Sink struct {
	opts config.Options
	w    io.WriteCloser

	nodesOpen  bool
	nodesClose bool
	nodesCount int
	edgesOpen  bool
	edgesCount int

	metrics *metric.Metrics
}

// NewSink prepares a Sink that will write to opts.Filename[0].
func NewSink(opts config.Options) (*Sink, error) {
	if len(opts.Filename) != 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "jsonformat.Sink", "NewSink",
			"Filename must contain exactly one entry")
	}
	w, err := archive.NewWriter(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte("{")); err != nil {
		w.Close()
		return nil, errors.WrapTransient(err, "jsonformat.Sink", "NewSink", "write opening brace")
	}
	return &Sink{opts: opts, w: w, metrics: metric.NewMetrics()}, nil
}

func (s *Sink) openNodes() error {
	if s.nodesOpen {
		return nil
	}
	s.nodesOpen = true
	_, err := s.w.Write([]byte(`"nodes":[`))
	return err
}

func (s *Sink) closeNodes() error {
	if err := s.openNodes(); err != nil {
		return err
	}
	if s.nodesClose {
		return nil
	}
	s.nodesClose = true
	_, err := s.w.Write([]byte("]"))
	return err
}

// WriteNode appends n to the "nodes" array.
func (s *Sink) WriteNode(ctx context.Context, n *model.Node) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "WriteNode", "context")
	}
	if err := s.openNodes(); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "WriteNode", "open array")
	}
	if s.nodesCount > 0 {
		if _, err := s.w.Write([]byte(",")); err != nil {
			return errors.WrapTransient(err, "jsonformat.Sink", "WriteNode", "write separator")
		}
	}
	data, err := json.Marshal(n)
	if err != nil {
		return errors.WrapInvalid(err, "jsonformat.Sink", "WriteNode", "encode node")
	}
	if _, err := s.w.Write(data); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "WriteNode", "write node")
	}
	s.nodesCount++
	s.metrics.RecordWritten("node", "jsonformat")
	return nil
}

// WriteEdge appends e to the "edges" array, closing the "nodes" array on
// its first call.
func (s *Sink) WriteEdge(ctx context.Context, e *model.Edge) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "WriteEdge", "context")
	}
	if err := s.closeNodes(); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "WriteEdge", "close nodes array")
	}
	if !s.edgesOpen {
		s.edgesOpen = true
		if _, err := s.w.Write([]byte(`,"edges":[`)); err != nil {
			return errors.WrapTransient(err, "jsonformat.Sink", "WriteEdge", "open array")
		}
	} else if s.edgesCount > 0 {
		if _, err := s.w.Write([]byte(",")); err != nil {
			return errors.WrapTransient(err, "jsonformat.Sink", "WriteEdge", "write separator")
		}
	}
	data, err := json.Marshal(e)
	if err != nil {
		return errors.WrapInvalid(err, "jsonformat.Sink", "WriteEdge", "encode edge")
	}
	if _, err := s.w.Write(data); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "WriteEdge", "write edge")
	}
	s.edgesCount++
	s.metrics.RecordWritten("edge", "jsonformat")
	return nil
}

// Finalize closes the "nodes"/"edges" arrays, the top-level object, and
// the underlying file.
func (s *Sink) Finalize(ctx context.Context) error {
	if err := s.closeNodes(); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "Finalize", "close nodes array")
	}
	if !s.edgesOpen {
		if _, err := s.w.Write([]byte(`,"edges":[]`)); err != nil {
			return errors.WrapTransient(err, "jsonformat.Sink", "Finalize", "write empty edges array")
		}
	} else {
		if _, err := s.w.Write([]byte("]")); err != nil {
			return errors.WrapTransient(err, "jsonformat.Sink", "Finalize", "close edges array")
		}
	}
	if _, err := s.w.Write([]byte("}")); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "Finalize", "close object")
	}
	if err := s.w.Close(); err != nil {
		return errors.WrapTransient(err, "jsonformat.Sink", "Finalize", "close file")
	}
	return nil
}
