package rdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/biolink/kgx/archive"
	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/prefixmanager"
)

const (
	rdfTypeIRI      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfSubjectIRI   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#subject"
	rdfPredicateIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#predicate"
	rdfObjectIRI    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#object"

	propertyVocabBase = "https://w3id.org/biolink/vocab/"
)

// Sink writes nodes and edges as N-Triples (spec §4.3.4, §4.4). An edge
// with no properties beyond its core fields is emitted as a single plain
// triple; an edge that carries extra properties is emitted as a reified
// statement plus one triple per extra property.
type Sink struct {
	opts config.Options
	w    io.WriteCloser
	pm   *prefixmanager.PrefixManager

	stmtCounter int
	metrics     *metric.Metrics
}

// NewSink prepares a Sink that will write to opts.Filename[0].
func NewSink(opts config.Options) (*Sink, error) {
	if len(opts.Filename) != 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "rdf.Sink", "NewSink",
			"Filename must contain exactly one entry")
	}
	w, err := archive.NewWriter(opts.Filename[0], opts.Compression)
	if err != nil {
		return nil, err
	}
	return &Sink{
		opts:    opts,
		w:       w,
		pm:      prefixmanager.New(opts.PrefixMap, prefixmanager.WithDefaultPrefix(opts.ProvidedBy)),
		metrics: metric.NewMetrics(),
	}, nil
}

func (s *Sink) expand(curie string) string {
	if iri, err := s.pm.Expand(curie); err == nil {
		return iri
	}
	return curie
}

func (s *Sink) propertyPredicate(key string) string {
	if iri, ok := s.opts.ReversePredicateMappings[key]; ok {
		return iri
	}
	return propertyVocabBase + strings.TrimPrefix(key, "_")
}

func (s *Sink) writeIRITriple(subject, predicate, object string) error {
	_, err := fmt.Fprintf(s.w, "<%s> <%s> <%s> .\n", subject, predicate, object)
	return err
}

func (s *Sink) writeLiteralTriple(subject, predicate string, value model.Value) error {
	_, err := fmt.Fprintf(s.w, "<%s> <%s> %s .\n", subject, predicate, literalTerm(value))
	return err
}

func literalTerm(v model.Value) string {
	escaped := strings.ReplaceAll(v.String(), `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// WriteNode emits one rdf:type triple per category, plus one triple per
// core and extra property.
func (s *Sink) WriteNode(ctx context.Context, n *model.Node) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "rdf.Sink", "WriteNode", "context")
	}
	subj := s.expand(n.ID)
	for _, cat := range n.Category {
		if err := s.writeIRITriple(subj, rdfTypeIRI, s.expand(cat)); err != nil {
			return errors.WrapTransient(err, "rdf.Sink", "WriteNode", "write rdf:type")
		}
	}
	if n.Name != "" {
		if err := s.writeLiteralTriple(subj, s.propertyPredicate("name"), model.String(n.Name)); err != nil {
			return errors.WrapTransient(err, "rdf.Sink", "WriteNode", "write name")
		}
	}
	if n.Description != "" {
		if err := s.writeLiteralTriple(subj, s.propertyPredicate("description"), model.String(n.Description)); err != nil {
			return errors.WrapTransient(err, "rdf.Sink", "WriteNode", "write description")
		}
	}
	for _, xref := range n.Xref {
		if err := s.writeLiteralTriple(subj, s.propertyPredicate("xref"), model.String(xref)); err != nil {
			return errors.WrapTransient(err, "rdf.Sink", "WriteNode", "write xref")
		}
	}
	for k, v := range n.Properties {
		if err := s.writeProperty(subj, k, v); err != nil {
			return errors.WrapTransient(err, "rdf.Sink", "WriteNode", "write property")
		}
	}
	s.metrics.RecordWritten("node", "ntriples")
	return nil
}

func (s *Sink) writeProperty(subject, key string, v model.Value) error {
	switch vv := v.(type) {
	case model.StringList:
		for _, item := range vv {
			if err := s.writeLiteralTriple(subject, s.propertyPredicate(key), model.String(item)); err != nil {
				return err
			}
		}
		return nil
	case model.NumberList:
		for _, item := range vv {
			if err := s.writeLiteralTriple(subject, s.propertyPredicate(key), model.Number(item)); err != nil {
				return err
			}
		}
		return nil
	default:
		return s.writeLiteralTriple(subject, s.propertyPredicate(key), v)
	}
}

// WriteEdge emits a plain triple for an edge with no extra properties, or
// a reified statement plus one triple per extra property otherwise.
func (s *Sink) WriteEdge(ctx context.Context, e *model.Edge) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "rdf.Sink", "WriteEdge", "context")
	}
	subj := s.expand(e.Subject)
	pred := s.mapPredicateIRI(e.Predicate)
	obj := s.expand(e.Object)

	if len(e.Properties) == 0 {
		if err := s.writeIRITriple(subj, pred, obj); err != nil {
			return errors.WrapTransient(err, "rdf.Sink", "WriteEdge", "write triple")
		}
		s.metrics.RecordWritten("edge", "ntriples")
		return nil
	}

	stmtIRI := s.statementIRI(e)
	if err := s.writeIRITriple(stmtIRI, rdfSubjectIRI, subj); err != nil {
		return errors.WrapTransient(err, "rdf.Sink", "WriteEdge", "write reified subject")
	}
	if err := s.writeIRITriple(stmtIRI, rdfPredicateIRI, pred); err != nil {
		return errors.WrapTransient(err, "rdf.Sink", "WriteEdge", "write reified predicate")
	}
	if err := s.writeIRITriple(stmtIRI, rdfObjectIRI, obj); err != nil {
		return errors.WrapTransient(err, "rdf.Sink", "WriteEdge", "write reified object")
	}
	for k, v := range e.Properties {
		if err := s.writeProperty(stmtIRI, k, v); err != nil {
			return errors.WrapTransient(err, "rdf.Sink", "WriteEdge", "write property")
		}
	}
	s.metrics.RecordWritten("edge", "ntriples")
	return nil
}

func (s *Sink) mapPredicateIRI(predicate string) string {
	if iri, ok := s.opts.ReversePredicateMappings[predicate]; ok {
		return iri
	}
	return s.expand(predicate)
}

func (s *Sink) statementIRI(e *model.Edge) string {
	if e.ID != "" {
		return s.expand(e.ID)
	}
	s.stmtCounter++
	return fmt.Sprintf("urn:kgx:stmt:%d", s.stmtCounter)
}

// Finalize closes the underlying file.
func (s *Sink) Finalize(ctx context.Context) error {
	if err := s.w.Close(); err != nil {
		return errors.WrapTransient(err, "rdf.Sink", "Finalize", "close file")
	}
	return nil
}
