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
	"github.com/biolink/kgx/source"
)

type phase int

const (
	phaseSeekKey phase = iota
	phaseInNodes
	phaseInEdges
	phaseDone
)

// Source reads one JSON document shaped {"nodes": [...], "edges": [...]}
// (spec §4.3.2) token-by-token, never holding the whole document in
// memory. Options.Filename must have exactly one entry.
type Source struct {
	closer  io.Closer
	dec     *json.Decoder
	phase   phase
	metrics *metric.Metrics
}

// NewSource opens the JSON graph file named in opts.Filename[0].
func NewSource(opts config.Options) (*Source, error) {
	if len(opts.Filename) != 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "jsonformat.Source", "NewSource",
			"Filename must contain exactly one entry")
	}
	f, err := archive.OpenReader(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(f)
	if _, err := dec.Token(); err != nil {
		f.Close()
		return nil, errors.WrapInvalid(err, "jsonformat.Source", "NewSource", "read opening brace")
	}
	return &Source{closer: f, dec: dec, metrics: metric.NewMetrics()}, nil
}

// Next returns the next Node record, then the next Edge record, until the
// document is exhausted (errors.ErrSourceExhausted).
func (s *Source) Next(ctx context.Context) (source.Record, error) {
	if err := ctx.Err(); err != nil {
		return source.Record{}, errors.WrapTransient(err, "jsonformat.Source", "Next", "context")
	}

	for {
		switch s.phase {
		case phaseInNodes:
			rec, ok, err := s.nextInArray("node")
			if err != nil {
				return source.Record{}, err
			}
			if ok {
				return rec, nil
			}
			s.phase = phaseSeekKey
		case phaseInEdges:
			rec, ok, err := s.nextInArray("edge")
			if err != nil {
				return source.Record{}, err
			}
			if ok {
				return rec, nil
			}
			s.phase = phaseSeekKey
		case phaseSeekKey:
			advanced, err := s.seekNextArray()
			if err != nil {
				return source.Record{}, err
			}
			if !advanced {
				s.phase = phaseDone
			}
		case phaseDone:
			return source.Record{}, errors.ErrSourceExhausted
		}
	}
}

// seekNextArray reads top-level keys until it finds "nodes" or "edges" (and
// positions the decoder inside that array), skips any other key's value,
// or reports the closing '}' by returning false.
func (s *Source) seekNextArray() (bool, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, errors.WrapInvalid(err, "jsonformat.Source", "seekNextArray", "read token")
	}
	if _, isDelim := tok.(json.Delim); isDelim {
		// closing '}' of the top-level object.
		return false, nil
	}
	key, _ := tok.(string)
	switch key {
	case "nodes":
		if err := s.expectArrayOpen(); err != nil {
			return false, err
		}
		s.phase = phaseInNodes
		return true, nil
	case "edges":
		if err := s.expectArrayOpen(); err != nil {
			return false, err
		}
		s.phase = phaseInEdges
		return true, nil
	default:
		var discard json.RawMessage
		if err := s.dec.Decode(&discard); err != nil {
			return false, errors.WrapInvalid(err, "jsonformat.Source", "seekNextArray", "skip unknown key")
		}
		return true, nil
	}
}

func (s *Source) expectArrayOpen() error {
	tok, err := s.dec.Token()
	if err != nil {
		return errors.WrapInvalid(err, "jsonformat.Source", "expectArrayOpen", "read token")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return errors.WrapInvalid(errors.ErrMalformedRecord, "jsonformat.Source", "expectArrayOpen",
			"expected array")
	}
	return nil
}

func (s *Source) nextInArray(kind string) (source.Record, bool, error) {
	for s.dec.More() {
		var raw json.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			return source.Record{}, false, errors.WrapInvalid(err, "jsonformat.Source", "nextInArray",
				"read array element")
		}
		if kind == "node" {
			var n model.Node
			if err := json.Unmarshal(raw, &n); err != nil || n.ID == "" {
				s.metrics.RecordDropped("node", "MALFORMED_RECORD")
				continue
			}
			s.metrics.RecordRead("node", "jsonformat")
			return source.Record{Kind: source.KindNode, Node: &n}, true, nil
		}
		var e model.Edge
		if err := json.Unmarshal(raw, &e); err != nil || e.Subject == "" || e.Object == "" || e.Predicate == "" {
			s.metrics.RecordDropped("edge", "MALFORMED_RECORD")
			continue
		}
		s.metrics.RecordRead("edge", "jsonformat")
		return source.Record{Kind: source.KindEdge, Edge: &e}, true, nil
	}
	// Consume the closing ']'.
	if _, err := s.dec.Token(); err != nil {
		return source.Record{}, false, errors.WrapInvalid(err, "jsonformat.Source", "nextInArray",
			"read closing bracket")
	}
	return source.Record{}, false, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	if err := s.closer.Close(); err != nil {
		return errors.WrapTransient(err, "jsonformat.Source", "Close", "close file")
	}
	return nil
}
