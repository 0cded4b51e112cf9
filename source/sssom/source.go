package sssom

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/biolink/kgx/archive"
	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/source"
)

// Source reads an SSSOM mapping set TSV (spec §4.3.7). Leading lines
// starting with "#" (the embedded YAML metadata block) are skipped before
// the header row.
type Source struct {
	closer  io.Closer
	reader  *csv.Reader
	header  []string
	seen    map[string]bool
	pending []source.Record
	pos     int
	metrics *metric.Metrics
}

// NewSource opens the SSSOM TSV file named in opts.Filename[0].
func NewSource(opts config.Options) (*Source, error) {
	if len(opts.Filename) != 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "sssom.Source", "NewSource",
			"Filename must contain exactly one entry")
	}
	f, err := archive.OpenReader(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}

	buf := bufio.NewReader(f)
	for {
		peeked, err := buf.Peek(1)
		if err != nil || len(peeked) == 0 || peeked[0] != '#' {
			break
		}
		if _, err := buf.ReadString('\n'); err != nil {
			break
		}
	}

	reader := csv.NewReader(buf)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil && err != io.EOF {
		f.Close()
		return nil, errors.WrapInvalid(err, "sssom.Source", "NewSource", "read header")
	}

	return &Source{
		closer:  f,
		reader:  reader,
		header:  header,
		seen:    make(map[string]bool),
		metrics: metric.NewMetrics(),
	}, nil
}

// Next returns the next record derived from the mapping file until it is
// exhausted (errors.ErrSourceExhausted).
func (s *Source) Next(ctx context.Context) (source.Record, error) {
	if err := ctx.Err(); err != nil {
		return source.Record{}, errors.WrapTransient(err, "sssom.Source", "Next", "context")
	}
	for {
		if s.pos < len(s.pending) {
			rec := s.pending[s.pos]
			s.pos++
			return rec, nil
		}
		s.pending = nil
		s.pos = 0

		row, err := s.reader.Read()
		if err == io.EOF {
			return source.Record{}, errors.ErrSourceExhausted
		}
		if err != nil {
			s.metrics.RecordDropped("mapping", "MALFORMED_RECORD")
			continue
		}
		s.pending = s.rowToRecords(row)
		if len(s.pending) == 0 {
			continue
		}
	}
}

func (s *Source) rowToRecords(row []string) []source.Record {
	fields := make(map[string]string, len(s.header))
	for i, col := range s.header {
		if i < len(row) {
			fields[col] = row[i]
		}
	}

	subjectID := fields["subject_id"]
	predicateID := fields["predicate_id"]
	objectID := fields["object_id"]
	if subjectID == "" || predicateID == "" || objectID == "" {
		s.metrics.RecordDropped("mapping", "MISSING_EDGE_PROPERTY")
		return nil
	}

	var records []source.Record
	if !s.seen[subjectID] {
		s.seen[subjectID] = true
		records = append(records, source.Record{Kind: source.KindNode, Node: mappingNode(subjectID, fields["subject_label"])})
	}
	if !s.seen[objectID] {
		s.seen[objectID] = true
		records = append(records, source.Record{Kind: source.KindNode, Node: mappingNode(objectID, fields["object_label"])})
	}

	e := model.NewEdge(subjectID, predicateID, objectID)
	if j := fields["mapping_justification"]; j != "" {
		e.Properties["mapping_justification"] = model.String(j)
	}
	if c := fields["confidence"]; c != "" {
		if f, err := strconv.ParseFloat(c, 64); err == nil {
			e.Properties["confidence"] = model.Number(f)
		}
	}
	s.metrics.RecordRead("edge", "sssom")
	records = append(records, source.Record{Kind: source.KindEdge, Edge: e})
	return records
}

func mappingNode(id, label string) *model.Node {
	n := model.NewNode(id)
	n.Name = strings.TrimSpace(label)
	return n
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	if err := s.closer.Close(); err != nil {
		return errors.WrapTransient(err, "sssom.Source", "Close", "close file")
	}
	return nil
}
