package trapi

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

type document struct {
	Message        *message        `json:"message"`
	KnowledgeGraph *knowledgeGraph `json:"knowledge_graph"`
}

type message struct {
	KnowledgeGraph *knowledgeGraph `json:"knowledge_graph"`
}

type knowledgeGraph struct {
	Nodes map[string]rawNode `json:"nodes"`
	Edges map[string]rawEdge `json:"edges"`
}

type rawNode struct {
	Name       string          `json:"name"`
	Categories []string        `json:"categories"`
	Attributes []rawAttribute  `json:"attributes"`
}

type rawAttribute struct {
	AttributeTypeID string          `json:"attribute_type_id"`
	Value           json.RawMessage `json:"value"`
}

type rawEdge struct {
	Subject    string         `json:"subject"`
	Predicate  string         `json:"predicate"`
	Object     string         `json:"object"`
	Attributes []rawAttribute `json:"attributes"`
	Sources    []rawSource    `json:"sources"`
}

type rawSource struct {
	ResourceID   string `json:"resource_id"`
	ResourceRole string `json:"resource_role"`
}

// Source reads an entire TRAPI knowledge_graph JSON document up front and
// replays its nodes and edges as records (spec §4.3.8).
type Source struct {
	pending []source.Record
	pos     int
	metrics *metric.Metrics
}

// NewSource reads and parses the TRAPI JSON file named in opts.Filename[0].
func NewSource(opts config.Options) (*Source, error) {
	if len(opts.Filename) != 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "trapi.Source", "NewSource",
			"Filename must contain exactly one entry")
	}
	f, err := archive.OpenReader(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.WrapTransient(err, "trapi.Source", "NewSource", "read file")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapInvalid(err, "trapi.Source", "NewSource", "decode document")
	}

	kg := doc.KnowledgeGraph
	if kg == nil && doc.Message != nil {
		kg = doc.Message.KnowledgeGraph
	}

	s := &Source{metrics: metric.NewMetrics()}
	if kg == nil {
		return s, nil
	}
	for id, n := range kg.Nodes {
		s.pending = append(s.pending, source.Record{Kind: source.KindNode, Node: convertNode(id, n)})
		s.metrics.RecordRead("node", "trapi")
	}
	for id, e := range kg.Edges {
		if e.Subject == "" || e.Object == "" || e.Predicate == "" {
			s.metrics.RecordDropped("edge", "MISSING_EDGE_PROPERTY")
			continue
		}
		s.pending = append(s.pending, source.Record{Kind: source.KindEdge, Edge: convertEdge(id, e)})
		s.metrics.RecordRead("edge", "trapi")
	}
	return s, nil
}

func convertNode(id string, n rawNode) *model.Node {
	node := model.NewNode(id, n.Categories...)
	node.Name = n.Name
	for _, attr := range n.Attributes {
		if attr.AttributeTypeID == "" {
			continue
		}
		if v, err := model.ValueFromJSON(attr.Value); err == nil {
			node.Properties[attr.AttributeTypeID] = v
		}
	}
	return node
}

func convertEdge(id string, e rawEdge) *model.Edge {
	edge := model.NewEdge(e.Subject, e.Predicate, e.Object)
	edge.ID = id
	for _, attr := range e.Attributes {
		if attr.AttributeTypeID == "" {
			continue
		}
		if v, err := model.ValueFromJSON(attr.Value); err == nil {
			edge.Properties[attr.AttributeTypeID] = v
		}
	}
	for _, src := range e.Sources {
		switch src.ResourceRole {
		case "primary_knowledge_source":
			edge.PrimaryKnowledgeSource = src.ResourceID
		case "aggregator_knowledge_source":
			edge.AggregatorKnowledgeSource = append(edge.AggregatorKnowledgeSource, src.ResourceID)
		case "supporting_data_source":
			edge.SupportingDataSource = append(edge.SupportingDataSource, src.ResourceID)
		}
	}
	return edge
}

// Next returns the next record until every node and edge has been
// returned (errors.ErrSourceExhausted).
func (s *Source) Next(ctx context.Context) (source.Record, error) {
	if err := ctx.Err(); err != nil {
		return source.Record{}, errors.WrapTransient(err, "trapi.Source", "Next", "context")
	}
	if s.pos >= len(s.pending) {
		return source.Record{}, errors.ErrSourceExhausted
	}
	rec := s.pending[s.pos]
	s.pos++
	return rec, nil
}

// Close is a no-op; the document is fully read during NewSource.
func (s *Source) Close() error {
	return nil
}
