package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/biolink/kgx/archive"
	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/internal/delimited"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
)

var coreNodeColumns = []string{"id", "category", "name", "description", "xref", "synonym", "provided_by"}
var coreEdgeColumns = []string{
	"id", "subject", "predicate", "object", "category",
	"knowledge_level", "agent_type",
	"primary_knowledge_source", "aggregator_knowledge_source", "supporting_data_source", "publications",
}

// Sink buffers nodes and edges in memory so the header can be computed as
// the union of all property keys seen before any row is written (spec
// §4.4: "header is the union of all keys seen, with core columns first").
type Sink struct {
	opts config.Options

	nodes       []*model.Node
	edges       []*model.Edge
	extraNodeCols map[string]bool
	extraEdgeCols map[string]bool

	metrics *metric.Metrics
}

// NewSink prepares a Sink that will write to opts.Filename = [nodesPath, edgesPath].
func NewSink(opts config.Options) (*Sink, error) {
	if len(opts.Filename) != 2 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "tabular.Sink", "NewSink",
			"Filename must contain exactly [nodesPath, edgesPath]")
	}
	return &Sink{
		opts:          opts,
		extraNodeCols: make(map[string]bool),
		extraEdgeCols: make(map[string]bool),
		metrics:       metric.NewMetrics(),
	}, nil
}

// WriteNode buffers n for the eventual node file write.
func (s *Sink) WriteNode(ctx context.Context, n *model.Node) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "tabular.Sink", "WriteNode", "context")
	}
	s.nodes = append(s.nodes, n)
	for k := range n.Properties {
		s.extraNodeCols[k] = true
	}
	s.metrics.RecordWritten("node", "tabular")
	return nil
}

// WriteEdge buffers e for the eventual edge file write.
func (s *Sink) WriteEdge(ctx context.Context, e *model.Edge) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "tabular.Sink", "WriteEdge", "context")
	}
	s.edges = append(s.edges, e)
	for k := range e.Properties {
		s.extraEdgeCols[k] = true
	}
	s.metrics.RecordWritten("edge", "tabular")
	return nil
}

// Finalize writes the node and edge files and closes them.
func (s *Sink) Finalize(ctx context.Context) error {
	delim := rune('\t')
	if s.opts.Format == "csv" {
		delim = ','
	}

	nodeHeader := append(append([]string{}, coreNodeColumns...), sortedKeys(s.extraNodeCols)...)
	edgeHeader := append(append([]string{}, coreEdgeColumns...), sortedKeys(s.extraEdgeCols)...)

	if err := writeTable(s.opts.Filename[0], s.opts.Compression, delim, nodeHeader, len(s.nodes), func(i int) []string {
		return nodeRow(nodeHeader, s.nodes[i])
	}); err != nil {
		return err
	}
	if err := writeTable(s.opts.Filename[1], s.opts.Compression, delim, edgeHeader, len(s.edges), func(i int) []string {
		return edgeRow(edgeHeader, s.edges[i])
	}); err != nil {
		return err
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func writeTable(path string, compression config.Compression, delim rune, header []string, n int, rowAt func(int) []string) error {
	w, err := archive.NewWriter(path, compression)
	if err != nil {
		return err
	}
	defer w.Close()

	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(header); err != nil {
		return errors.WrapTransient(err, "tabular", "writeTable", "write header")
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(rowAt(i)); err != nil {
			return errors.WrapTransient(err, "tabular", "writeTable", "write row")
		}
	}
	cw.Flush()
	return cw.Error()
}

func nodeRow(header []string, n *model.Node) []string {
	row := make([]string, len(header))
	for i, col := range header {
		switch col {
		case "id":
			row[i] = n.ID
		case "category":
			row[i] = delimited.Join(n.Category)
		case "name":
			row[i] = n.Name
		case "description":
			row[i] = n.Description
		case "xref":
			row[i] = delimited.Join(n.Xref)
		case "synonym":
			row[i] = delimited.Join(n.Synonym)
		case "provided_by":
			row[i] = delimited.Join(n.ProvidedBy)
		default:
			row[i] = valueToString(n.Properties[col])
		}
	}
	return row
}

func edgeRow(header []string, e *model.Edge) []string {
	row := make([]string, len(header))
	for i, col := range header {
		switch col {
		case "id":
			row[i] = e.ID
		case "subject":
			row[i] = e.Subject
		case "predicate":
			row[i] = e.Predicate
		case "object":
			row[i] = e.Object
		case "category":
			row[i] = delimited.Join(e.Category)
		case "knowledge_level":
			row[i] = e.KnowledgeLevel
		case "agent_type":
			row[i] = e.AgentType
		case "primary_knowledge_source":
			row[i] = e.PrimaryKnowledgeSource
		case "aggregator_knowledge_source":
			row[i] = delimited.Join(e.AggregatorKnowledgeSource)
		case "supporting_data_source":
			row[i] = delimited.Join(e.SupportingDataSource)
		case "publications":
			row[i] = delimited.Join(e.Publications)
		default:
			row[i] = valueToString(e.Properties[col])
		}
	}
	return row
}

func valueToString(v model.Value) string {
	if v == nil {
		return ""
	}
	switch vv := v.(type) {
	case model.StringList:
		return delimited.Join(vv)
	case model.NumberList:
		strs := make([]string, len(vv))
		for i, n := range vv {
			strs[i] = fmt.Sprintf("%g", n)
		}
		return delimited.Join(strs)
	default:
		return v.String()
	}
}
