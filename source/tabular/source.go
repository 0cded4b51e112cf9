package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/biolink/kgx/archive"
	"github.com/biolink/kgx/config"
	stderrors "errors"

	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/internal/delimited"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/pkg/worker"
	"github.com/biolink/kgx/source"
)

const (
	defaultChunkSize    = 500
	defaultChunkWorkers = 4
)

// parsedRow is one row's parse outcome, reassembled by its position in the
// chunk so concurrent parsing never reorders records within a file (spec
// §5, "chunks are reassembled in order before yield").
type parsedRow struct {
	rec source.Record
	err error
}

type rowJob struct {
	index int
	row   []string
	out   []parsedRow
}

var coreNodeColumns = map[string]bool{
	"id": true, "category": true, "name": true, "description": true,
	"xref": true, "synonym": true, "provided_by": true,
}

var coreEdgeColumns = map[string]bool{
	"id": true, "subject": true, "object": true, "predicate": true, "category": true,
	"knowledge_level": true, "agent_type": true,
	"primary_knowledge_source": true, "aggregator_knowledge_source": true,
	"supporting_data_source": true, "publications": true,
}

// Source reads a node file and an edge file in CSV/TSV form (spec §4.3.1).
// Options.Filename must have exactly two entries: [nodesPath, edgesPath].
type Source struct {
	opts config.Options

	nodesCloser io.Closer
	edgesCloser io.Closer
	nodesReader *csv.Reader
	edgesReader *csv.Reader
	nodesHeader []string
	edgesHeader []string

	nodesDone bool
	metrics   *metric.Metrics

	chunkSize    int
	chunkWorkers int

	nodePending []parsedRow
	nodeCursor  int
	nodesEOF    bool

	edgePending []parsedRow
	edgeCursor  int
	edgesEOF    bool
}

// NewSource opens the node and edge files named in opts.Filename.
func NewSource(opts config.Options) (*Source, error) {
	if len(opts.Filename) != 2 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "tabular.Source", "NewSource",
			"Filename must contain exactly [nodesPath, edgesPath]")
	}

	delim := rune('\t')
	if opts.Format == "csv" {
		delim = ','
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

	nodesReader := csv.NewReader(nodesFile)
	nodesReader.Comma = delim
	nodesReader.FieldsPerRecord = -1
	edgesReader := csv.NewReader(edgesFile)
	edgesReader.Comma = delim
	edgesReader.FieldsPerRecord = -1

	nodesHeader, err := nodesReader.Read()
	if err != nil && err != io.EOF {
		nodesFile.Close()
		edgesFile.Close()
		return nil, errors.WrapInvalid(err, "tabular.Source", "NewSource", "read node header")
	}
	edgesHeader, err := edgesReader.Read()
	if err != nil && err != io.EOF {
		nodesFile.Close()
		edgesFile.Close()
		return nil, errors.WrapInvalid(err, "tabular.Source", "NewSource", "read edge header")
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	chunkWorkers := opts.ChunkWorkers
	if chunkWorkers <= 0 {
		chunkWorkers = defaultChunkWorkers
	}

	return &Source{
		opts:         opts,
		nodesCloser:  nodesFile,
		edgesCloser:  edgesFile,
		nodesReader:  nodesReader,
		edgesReader:  edgesReader,
		nodesHeader:  nodesHeader,
		edgesHeader:  edgesHeader,
		metrics:      metric.NewMetrics(),
		chunkSize:    chunkSize,
		chunkWorkers: chunkWorkers,
	}, nil
}

// Next returns the next Node record, then the next Edge record, until both
// files are exhausted (errors.ErrSourceExhausted).
func (s *Source) Next(ctx context.Context) (source.Record, error) {
	if err := ctx.Err(); err != nil {
		return source.Record{}, errors.WrapTransient(err, "tabular.Source", "Next", "context")
	}

	if !s.nodesDone {
		rec, ok, err := s.nextNode()
		if err != nil {
			return source.Record{}, err
		}
		if ok {
			return rec, nil
		}
		s.nodesDone = true
	}

	rec, ok, err := s.nextEdge()
	if err != nil {
		return source.Record{}, err
	}
	if ok {
		return rec, nil
	}

	return source.Record{}, errors.ErrSourceExhausted
}

func (s *Source) nextNode() (source.Record, bool, error) {
	for {
		for s.nodeCursor < len(s.nodePending) {
			pr := s.nodePending[s.nodeCursor]
			s.nodeCursor++
			if pr.err != nil {
				s.metrics.RecordDropped("node", "MISSING_NODE_PROPERTY")
				continue
			}
			s.metrics.RecordRead("node", "tabular")
			return pr.rec, true, nil
		}
		if s.nodesEOF {
			return source.Record{}, false, nil
		}
		if err := s.fetchNodeChunk(); err != nil {
			return source.Record{}, false, err
		}
	}
}

func (s *Source) nextEdge() (source.Record, bool, error) {
	for {
		for s.edgeCursor < len(s.edgePending) {
			pr := s.edgePending[s.edgeCursor]
			s.edgeCursor++
			if pr.err != nil {
				s.metrics.RecordDropped("edge", "MISSING_EDGE_PROPERTY")
				continue
			}
			s.metrics.RecordRead("edge", "tabular")
			return pr.rec, true, nil
		}
		if s.edgesEOF {
			return source.Record{}, false, nil
		}
		if err := s.fetchEdgeChunk(); err != nil {
			return source.Record{}, false, err
		}
	}
}

// fetchNodeChunk reads up to chunkSize rows off disk sequentially (a csv.Reader
// isn't safe for concurrent reads), then parses them across chunkWorkers
// goroutines via a worker.Pool, reassembling results by their original row
// index so concurrency never reorders the stream (spec §4.3.1, §4.5, "pkg/worker
// pool for bounded-concurrency chunk processing of tabular Source chunks").
func (s *Source) fetchNodeChunk() error {
	rows, eof := readChunk(s.nodesReader, s.chunkSize)
	s.nodesEOF = eof
	s.nodePending = parseChunk(rows, s.chunkWorkers, func(row []string) parsedRow {
		n, err := rowToNode(s.nodesHeader, row)
		if err != nil {
			return parsedRow{err: err}
		}
		return parsedRow{rec: source.Record{Kind: source.KindNode, Node: n}}
	})
	s.nodeCursor = 0
	return nil
}

func (s *Source) fetchEdgeChunk() error {
	rows, eof := readChunk(s.edgesReader, s.chunkSize)
	s.edgesEOF = eof
	s.edgePending = parseChunk(rows, s.chunkWorkers, func(row []string) parsedRow {
		e, err := rowToEdge(s.edgesHeader, row)
		if err != nil {
			return parsedRow{err: err}
		}
		return parsedRow{rec: source.Record{Kind: source.KindEdge, Edge: e}}
	})
	s.edgeCursor = 0
	return nil
}

// readChunk reads up to size rows from r, stopping early (and reporting eof)
// at end of file. A malformed row is dropped rather than failing the chunk.
func readChunk(r *csv.Reader, size int) (rows [][]string, eof bool) {
	for len(rows) < size {
		row, err := r.Read()
		if stderrors.Is(err, io.EOF) {
			return rows, true
		}
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, false
}

// parseChunk runs parse over every row in rows concurrently across workers
// goroutines, returning results in rows' original order.
func parseChunk(rows [][]string, workers int, parse func(row []string) parsedRow) []parsedRow {
	if len(rows) == 0 {
		return nil
	}
	out := make([]parsedRow, len(rows))
	if len(rows) == 1 {
		out[0] = parse(rows[0])
		return out
	}

	pool := worker.NewPool(workers, len(rows), func(_ context.Context, job rowJob) error {
		job.out[job.index] = parse(job.row)
		return nil
	})
	if err := pool.Start(context.Background()); err != nil {
		for i, row := range rows {
			out[i] = parse(row)
		}
		return out
	}
	for i, row := range rows {
		_ = pool.Submit(rowJob{index: i, row: row, out: out})
	}
	_ = pool.Stop(30 * time.Second)
	return out
}

func rowToNode(header, row []string) (*model.Node, error) {
	fields := zipRow(header, row)

	id, ok := fields["id"]
	if !ok || id == "" {
		return nil, errors.ErrMissingNodeProperty
	}

	n := model.NewNode(id)
	n.Properties = make(model.PropertyMap)

	if v, ok := fields["category"]; ok && v != "" {
		n.Category = delimited.Split(v)
	}
	n.Name = fields["name"]
	n.Description = fields["description"]
	if v, ok := fields["xref"]; ok {
		n.Xref = delimited.Split(v)
	}
	if v, ok := fields["synonym"]; ok {
		n.Synonym = delimited.Split(v)
	}
	if v, ok := fields["provided_by"]; ok {
		n.ProvidedBy = delimited.Split(v)
	}

	for k, v := range fields {
		if coreNodeColumns[k] || v == "" {
			continue
		}
		n.Properties[k] = parseScalarOrList(v)
	}

	return n, nil
}

func rowToEdge(header, row []string) (*model.Edge, error) {
	fields := zipRow(header, row)

	subject, hasSubject := fields["subject"]
	object, hasObject := fields["object"]
	predicate, hasPredicate := fields["predicate"]
	if !hasSubject || !hasObject || !hasPredicate || subject == "" || object == "" || predicate == "" {
		return nil, errors.ErrMissingEdgeProperty
	}

	e := model.NewEdge(subject, predicate, object)
	e.ID = fields["id"]
	if v, ok := fields["category"]; ok {
		e.Category = delimited.Split(v)
	}
	e.KnowledgeLevel = fields["knowledge_level"]
	e.AgentType = fields["agent_type"]
	e.PrimaryKnowledgeSource = fields["primary_knowledge_source"]
	if v, ok := fields["aggregator_knowledge_source"]; ok {
		e.AggregatorKnowledgeSource = delimited.Split(v)
	}
	if v, ok := fields["supporting_data_source"]; ok {
		e.SupportingDataSource = delimited.Split(v)
	}
	if v, ok := fields["publications"]; ok {
		e.Publications = delimited.Split(v)
	}

	for k, v := range fields {
		if coreEdgeColumns[k] || v == "" {
			continue
		}
		e.Properties[k] = parseScalarOrList(v)
	}

	return e, nil
}

func zipRow(header, row []string) map[string]string {
	out := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(row) {
			out[col] = row[i]
		}
	}
	return out
}

func parseScalarOrList(v string) model.Value {
	if stringsContainsUnescapedPipe(v) {
		return model.StringList(delimited.Split(v))
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return model.Number(f)
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return model.Bool(b)
	}
	return model.String(v)
}

func stringsContainsUnescapedPipe(v string) bool {
	return len(delimited.Split(v)) > 1
}

// Close releases both file handles.
func (s *Source) Close() error {
	err1 := s.nodesCloser.Close()
	err2 := s.edgesCloser.Close()
	if err1 != nil {
		return errors.WrapTransient(err1, "tabular.Source", "Close", "close nodes file")
	}
	if err2 != nil {
		return errors.WrapTransient(err2, "tabular.Source", "Close", "close edges file")
	}
	return nil
}
