package linejson

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/biolink/kgx/archive"
	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/source"
)

// Source reads a "<base>_nodes.jsonl" file then a "<base>_edges.jsonl"
// file, one JSON object per line (spec §4.3.3). Options.Filename must have
// exactly two entries: [nodesPath, edgesPath].
type Source struct {
	opts config.Options

	nodesCloser io.Closer
	edgesCloser io.Closer
	nodesScan   *bufio.Scanner
	edgesScan   *bufio.Scanner

	nodesDone bool
	metrics   *metric.Metrics
}

// NewSource opens the node and edge line-JSON files named in opts.Filename.
func NewSource(opts config.Options) (*Source, error) {
	if len(opts.Filename) != 2 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "linejson.Source", "NewSource",
			"Filename must contain exactly [nodesPath, edgesPath]")
	}

	nodesFile, err := archive.OpenReader(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}
	edgesFile, err := archive.OpenReader(opts.Filename[1], opts.Compression)
	if err != nil {
		nodesFile.Close()
		return nil, err
	}

	return &Source{
		opts:        opts,
		nodesCloser: nodesFile,
		edgesCloser: edgesFile,
		nodesScan:   bufio.NewScanner(nodesFile),
		edgesScan:   bufio.NewScanner(edgesFile),
		metrics:     metric.NewMetrics(),
	}, nil
}

// Next returns the next Node record, then the next Edge record, until both
// files are exhausted (errors.ErrSourceExhausted).
func (s *Source) Next(ctx context.Context) (source.Record, error) {
	if err := ctx.Err(); err != nil {
		return source.Record{}, errors.WrapTransient(err, "linejson.Source", "Next", "context")
	}

	if !s.nodesDone {
		rec, ok := s.nextNode()
		if ok {
			return rec, nil
		}
		s.nodesDone = true
	}

	if rec, ok := s.nextEdge(); ok {
		return rec, nil
	}

	return source.Record{}, errors.ErrSourceExhausted
}

func (s *Source) nextNode() (source.Record, bool) {
	for s.nodesScan.Scan() {
		line := s.nodesScan.Bytes()
		if len(bytesTrimSpace(line)) == 0 {
			continue
		}
		var n model.Node
		if err := json.Unmarshal(line, &n); err != nil {
			s.metrics.RecordDropped("node", "MALFORMED_RECORD")
			continue
		}
		if n.ID == "" {
			s.metrics.RecordDropped("node", "MISSING_NODE_PROPERTY")
			continue
		}
		s.metrics.RecordRead("node", "linejson")
		return source.Record{Kind: source.KindNode, Node: &n}, true
	}
	return source.Record{}, false
}

func (s *Source) nextEdge() (source.Record, bool) {
	for s.edgesScan.Scan() {
		line := s.edgesScan.Bytes()
		if len(bytesTrimSpace(line)) == 0 {
			continue
		}
		var e model.Edge
		if err := json.Unmarshal(line, &e); err != nil {
			s.metrics.RecordDropped("edge", "MALFORMED_RECORD")
			continue
		}
		if e.Subject == "" || e.Object == "" || e.Predicate == "" {
			s.metrics.RecordDropped("edge", "MISSING_EDGE_PROPERTY")
			continue
		}
		s.metrics.RecordRead("edge", "linejson")
		return source.Record{Kind: source.KindEdge, Edge: &e}, true
	}
	return source.Record{}, false
}

func bytesTrimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// Close releases both file handles.
func (s *Source) Close() error {
	err1 := s.nodesCloser.Close()
	err2 := s.edgesCloser.Close()
	if err1 != nil {
		return errors.WrapTransient(err1, "linejson.Source", "Close", "close nodes file")
	}
	if err2 != nil {
		return errors.WrapTransient(err2, "linejson.Source", "Close", "close edges file")
	}
	return nil
}
