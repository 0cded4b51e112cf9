package obograph

import (
	"context"
	"encoding/json"
	"io"

	"github.com/biolink/kgx/archive"
	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/prefixmanager"
	"github.com/biolink/kgx/source"
)

// defaultPredicateMap translates the small set of OBO relation predicates
// used unqualified in OBOGraph edges into Biolink predicates. opts.
// PredicateMappings overrides or extends this table.
var defaultPredicateMap = map[string]string{
	"is_a":    "biolink:subclass_of",
	"part_of": "biolink:part_of",
}

type document struct {
	Graphs []graph `json:"graphs"`
}

type graph struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

type rawNode struct {
	ID   string   `json:"id"`
	Lbl  string   `json:"lbl"`
	Type string   `json:"type"`
	Meta *rawMeta `json:"meta"`
}

type rawMeta struct {
	Definition *rawDefinition `json:"definition"`
	Synonyms   []rawSynonym   `json:"synonyms"`
	Xrefs      []rawXref      `json:"xrefs"`
	Comments   []string       `json:"comments"`
}

type rawDefinition struct {
	Val string `json:"val"`
}

type rawSynonym struct {
	Val string `json:"val"`
}

type rawXref struct {
	Val string `json:"val"`
}

type rawEdge struct {
	Sub  string `json:"sub"`
	Pred string `json:"pred"`
	Obj  string `json:"obj"`
}

// Source reads an entire OBOGraph JSON document up front (ontology exports
// are not expected to approach the size of a bulk KG dump) and replays it
// as node/edge records (spec §4.3.6).
type Source struct {
	opts    config.Options
	pm      *prefixmanager.PrefixManager
	pending []source.Record
	pos     int
	metrics *metric.Metrics
}

// NewSource reads and parses the OBOGraph JSON file named in opts.Filename[0].
func NewSource(opts config.Options) (*Source, error) {
	if len(opts.Filename) != 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "obograph.Source", "NewSource",
			"Filename must contain exactly one entry")
	}
	f, err := archive.OpenReader(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.WrapTransient(err, "obograph.Source", "NewSource", "read file")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapInvalid(err, "obograph.Source", "NewSource", "decode document")
	}

	s := &Source{
		opts:    opts,
		pm:      prefixmanager.New(opts.PrefixMap),
		metrics: metric.NewMetrics(),
	}
	for _, g := range doc.Graphs {
		for _, n := range g.Nodes {
			if rec, ok := s.convertNode(n); ok {
				s.pending = append(s.pending, rec)
			}
		}
		for _, e := range g.Edges {
			if rec, ok := s.convertEdge(e); ok {
				s.pending = append(s.pending, rec)
			}
		}
	}
	return s, nil
}

func (s *Source) contract(iri string) string {
	if curie, err := s.pm.Contract(iri); err == nil {
		return curie
	}
	return iri
}

func (s *Source) convertNode(n rawNode) (source.Record, bool) {
	if n.ID == "" {
		s.metrics.RecordDropped("node", "MISSING_NODE_PROPERTY")
		return source.Record{}, false
	}
	category := categoryForType(n.Type)
	node := model.NewNode(s.contract(n.ID), category)
	node.Name = n.Lbl
	if n.Meta != nil {
		if n.Meta.Definition != nil {
			node.Description = n.Meta.Definition.Val
		}
		for _, syn := range n.Meta.Synonyms {
			node.Synonym = append(node.Synonym, syn.Val)
		}
		for _, xref := range n.Meta.Xrefs {
			node.Xref = append(node.Xref, xref.Val)
		}
		if len(n.Meta.Comments) > 0 {
			node.Properties["comment"] = model.StringList(n.Meta.Comments)
		}
	}
	s.metrics.RecordRead("node", "obograph")
	return source.Record{Kind: source.KindNode, Node: node}, true
}

func categoryForType(oboType string) string {
	switch oboType {
	case "CLASS":
		return "biolink:OntologyClass"
	case "PROPERTY":
		return "biolink:Relationship"
	case "INDIVIDUAL":
		return "biolink:NamedThing"
	default:
		return model.RootEntityCategory
	}
}

func (s *Source) mapPredicate(pred string) string {
	if mapped, ok := s.opts.PredicateMappings[pred]; ok {
		return mapped
	}
	if mapped, ok := defaultPredicateMap[pred]; ok {
		return mapped
	}
	return s.contract(pred)
}

func (s *Source) convertEdge(e rawEdge) (source.Record, bool) {
	if e.Sub == "" || e.Obj == "" || e.Pred == "" {
		s.metrics.RecordDropped("edge", "MISSING_EDGE_PROPERTY")
		return source.Record{}, false
	}
	edge := model.NewEdge(s.contract(e.Sub), s.mapPredicate(e.Pred), s.contract(e.Obj))
	s.metrics.RecordRead("edge", "obograph")
	return source.Record{Kind: source.KindEdge, Edge: edge}, true
}

// Next returns the next record until every node and edge in the document
// has been returned (errors.ErrSourceExhausted).
func (s *Source) Next(ctx context.Context) (source.Record, error) {
	if err := ctx.Err(); err != nil {
		return source.Record{}, errors.WrapTransient(err, "obograph.Source", "Next", "context")
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
