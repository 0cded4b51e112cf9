package ntriples

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/biolink/kgx/archive"
	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/prefixmanager"
	"github.com/biolink/kgx/source"
)

// Standard RDF reification vocabulary (spec §4.3.4).
const (
	rdfSubjectIRI   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#subject"
	rdfPredicateIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#predicate"
	rdfObjectIRI    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#object"
)

// Fixed OWL-star vocabulary the OWL Source recognizes as edge annotations
// (spec §4.3.5). format="owl" enables this recognition.
var owlAnnotationPredicates = map[string]string{
	"http://www.w3.org/2002/07/owl#equivalentClass": "owl_equivalent_class",
	"http://www.w3.org/2002/07/owl#someValuesFrom":  "owl_some_values_from",
	"http://www.w3.org/2002/07/owl#allValuesFrom":   "owl_all_values_from",
	"http://www.w3.org/2002/07/owl#hasValue":        "owl_has_value",
}

type reifiedBuf struct {
	hasSubject, hasPredicate, hasObject bool
	subject, predicate, object          string
	annotations                         model.PropertyMap
}

// Source reads an N-Triples (or OWL-as-RDF, when opts.Format == "owl")
// file, grouping consecutive same-subject triples into a single node or
// reified edge (spec §4.3.4, §4.3.5). Input is assumed sorted by subject.
type Source struct {
	opts    config.Options
	closer  io.Closer
	scanner *bufio.Scanner
	pm      *prefixmanager.PrefixManager

	nodePropPredicates map[string]bool
	owlMode            bool

	pending []source.Record

	currentSubject      string
	currentHasReified    bool
	currentReified       reifiedBuf
	currentHasNodeProps  bool
	currentNodeProps     model.PropertyMap

	eof     bool
	metrics *metric.Metrics
}

// NewSource opens the N-Triples file named in opts.Filename[0].
func NewSource(opts config.Options) (*Source, error) {
	if len(opts.Filename) != 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "ntriples.Source", "NewSource",
			"Filename must contain exactly one entry")
	}
	f, err := archive.OpenReader(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}

	nodeProps := make(map[string]bool, len(opts.NodePropertyPredicates))
	for _, p := range opts.NodePropertyPredicates {
		nodeProps[p] = true
	}

	return &Source{
		opts:               opts,
		closer:             f,
		scanner:            bufio.NewScanner(f),
		pm:                 prefixmanager.New(opts.PrefixMap),
		nodePropPredicates: nodeProps,
		owlMode:            opts.Format == "owl",
		metrics:            metric.NewMetrics(),
	}, nil
}

// Next returns the next parsed Node or Edge record until the file and any
// pending buffered subject are exhausted (errors.ErrSourceExhausted).
func (s *Source) Next(ctx context.Context) (source.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return source.Record{}, errors.WrapTransient(err, "ntriples.Source", "Next", "context")
		}
		if len(s.pending) > 0 {
			rec := s.pending[0]
			s.pending = s.pending[1:]
			return rec, nil
		}
		if s.eof {
			if rec := s.flushCurrent(); rec != nil {
				s.currentSubject = ""
				return *rec, nil
			}
			return source.Record{}, errors.ErrSourceExhausted
		}
		if !s.scanner.Scan() {
			s.eof = true
			continue
		}
		s.handleLine(s.scanner.Text())
	}
}

func (s *Source) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	t, ok := parseTriple(line)
	if !ok {
		s.metrics.RecordDropped("triple", "MALFORMED_RECORD")
		return
	}

	if t.subject != s.currentSubject {
		if rec := s.flushCurrent(); rec != nil {
			s.pending = append(s.pending, *rec)
		}
		s.currentSubject = t.subject
		s.currentHasReified = false
		s.currentReified = reifiedBuf{}
		s.currentHasNodeProps = false
		s.currentNodeProps = nil
	}

	switch {
	case t.predicate == rdfSubjectIRI:
		s.currentReified.hasSubject = true
		s.currentReified.subject = t.object
		s.currentHasReified = true
	case t.predicate == rdfPredicateIRI:
		s.currentReified.hasPredicate = true
		s.currentReified.predicate = t.object
		s.currentHasReified = true
	case t.predicate == rdfObjectIRI:
		s.currentReified.hasObject = true
		s.currentReified.object = t.object
		s.currentHasReified = true
	case s.owlMode && owlAnnotationPredicates[t.predicate] != "":
		if s.currentReified.annotations == nil {
			s.currentReified.annotations = make(model.PropertyMap)
		}
		s.currentReified.annotations[owlAnnotationPredicates[t.predicate]] = model.String(s.annotationValue(t))
		s.currentHasReified = true
	case s.nodePropPredicates[t.predicate]:
		if s.currentNodeProps == nil {
			s.currentNodeProps = make(model.PropertyMap)
		}
		s.currentNodeProps[s.contract(t.predicate)] = model.String(s.annotationValue(t))
		s.currentHasNodeProps = true
	default:
		if !t.objectIsIRI {
			s.metrics.RecordDropped("edge", "MISSING_EDGE_PROPERTY")
			return
		}
		e := model.NewEdge(s.contract(t.subject), s.mapPredicate(t.predicate), s.contract(t.object))
		s.metrics.RecordRead("edge", "ntriples")
		s.pending = append(s.pending, source.Record{Kind: source.KindEdge, Edge: e})
	}
}

func (s *Source) annotationValue(t triple) string {
	if t.objectIsIRI {
		return s.contract(t.object)
	}
	return t.objectLiteral
}

func (s *Source) flushCurrent() *source.Record {
	if s.currentSubject == "" {
		return nil
	}
	if s.currentHasReified {
		r := s.currentReified
		if r.hasSubject && r.hasPredicate && r.hasObject {
			e := model.NewEdge(s.contract(r.subject), s.mapPredicate(r.predicate), s.contract(r.object))
			e.ID = s.contract(s.currentSubject)
			for k, v := range r.annotations {
				e.Properties[k] = v
			}
			s.metrics.RecordRead("edge", "ntriples")
			return &source.Record{Kind: source.KindEdge, Edge: e}
		}
		return nil
	}
	if s.currentHasNodeProps {
		n := model.NewNode(s.contract(s.currentSubject))
		n.Properties = s.currentNodeProps
		s.metrics.RecordRead("node", "ntriples")
		return &source.Record{Kind: source.KindNode, Node: n}
	}
	return nil
}

func (s *Source) contract(iri string) string {
	if curie, err := s.pm.Contract(iri); err == nil {
		return curie
	}
	return iri
}

func (s *Source) mapPredicate(iri string) string {
	if mapped, ok := s.opts.PredicateMappings[iri]; ok {
		return mapped
	}
	return s.contract(iri)
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	if err := s.closer.Close(); err != nil {
		return errors.WrapTransient(err, "ntriples.Source", "Close", "close file")
	}
	return nil
}
