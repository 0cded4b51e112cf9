package transform

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"

	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/metric"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/prefixmanager"
	"github.com/biolink/kgx/sink"
	"github.com/biolink/kgx/source"
	"github.com/biolink/kgx/vocab"
)

// Inspector observes every record a Transform run hands to its Sink, after
// all six pipeline stages have run, without being able to alter it. Used to
// drive a Validator or Summarizer alongside a real or null Sink (spec §5).
type Inspector func(kind source.Kind, node *model.Node, edge *model.Edge) error

// Transformer runs the six-stage per-record pipeline the spec assigns to
// every kgx transform: filter, CURIE normalization, category defaulting,
// predicate normalization, provenance injection, then Sink/Inspector
// handoff (spec §4.5). It holds no hidden global state — every dependency
// (prefix map, vocabulary, InfoRes rewrite rule) is supplied at
// construction, mirroring the explicit stage list a flow-graph component
// declares up front rather than discovering at run time.
type Transformer struct {
	opts    config.Options
	pm      *prefixmanager.PrefixManager
	vocab   vocab.Service
	catalog *infoResCatalog
	metrics *metric.Metrics
	logger  *slog.Logger

	mu         sync.Mutex
	categories map[string][]string
}

// Option configures a Transformer at construction time.
type Option func(*Transformer)

// WithVocabService supplies the vocabulary consulted for edge category
// defaulting. Without one, edges default to biolink:Association.
func WithVocabService(v vocab.Service) Option {
	return func(t *Transformer) { t.vocab = v }
}

// WithPrefixManager overrides the PrefixManager built from opts.PrefixMap.
func WithPrefixManager(pm *prefixmanager.PrefixManager) Option {
	return func(t *Transformer) { t.pm = pm }
}

// WithLogger overrides the logger used for per-record diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) { t.logger = logger }
}

// WithMetrics overrides the Metrics instance the Transformer records to.
func WithMetrics(m *metric.Metrics) Option {
	return func(t *Transformer) { t.metrics = m }
}

// New returns a Transformer configured from opts.
func New(opts config.Options, options ...Option) *Transformer {
	t := &Transformer{
		opts:       opts,
		catalog:    newInfoResCatalog(),
		metrics:    metric.NewMetrics(),
		logger:     slog.Default(),
		categories: make(map[string][]string),
	}
	for _, o := range options {
		o(t)
	}
	if t.pm == nil {
		t.pm = prefixmanager.New(opts.PrefixMap)
	}
	return t
}

// InfoResCatalog returns the original-source-name -> minted-infores map
// accumulated by every provenance field this Transformer has rewritten
// (spec §4.5, "InfoRes catalog").
func (t *Transformer) InfoResCatalog() map[string]string {
	return t.catalog.Snapshot()
}

// Transform pulls records from src, runs the six-stage pipeline over each,
// and writes survivors to sink. If inspector is non-nil it is called with
// every record that survives filtering, after normalization, before the
// Sink write (spec §5, "format=null and an inspector"). Transform checks
// ctx between records; on cancellation it makes a best-effort call to
// sink.Finalize before returning a fatal, Cancelled-classified error (spec
// §5, "Concurrency & Resource Model").
func (t *Transformer) Transform(ctx context.Context, src source.Source, snk sink.Sink, inspector Inspector) error {
	for {
		if err := ctx.Err(); err != nil {
			_ = snk.Finalize(context.Background())
			return errors.WrapFatal(errors.ErrCancelled, "transform.Transformer", "Transform", "context")
		}

		rec, err := src.Next(ctx)
		if err != nil {
			if stderrors.Is(err, errors.ErrSourceExhausted) {
				break
			}
			return err
		}

		switch rec.Kind {
		case source.KindNode:
			node, keep := t.processNode(rec.Node)
			if !keep {
				continue
			}
			if inspector != nil {
				if err := inspector(source.KindNode, node, nil); err != nil {
					return err
				}
			}
			if err := snk.WriteNode(ctx, node); err != nil {
				return err
			}
			t.metrics.RecordWritten("node", t.opts.Format)
		case source.KindEdge:
			edge, keep := t.processEdge(rec.Edge)
			if !keep {
				continue
			}
			if inspector != nil {
				if err := inspector(source.KindEdge, nil, edge); err != nil {
					return err
				}
			}
			if err := snk.WriteEdge(ctx, edge); err != nil {
				return err
			}
			t.metrics.RecordWritten("edge", t.opts.Format)
		}
	}
	return snk.Finalize(ctx)
}

// TransformToStore drains src into a new Graph Store, running the same
// six-stage pipeline as Transform, and returns the populated store. Use
// this when the caller needs graph-shaped operations (clique merge,
// summarization) unavailable in streaming mode (spec §5, "graph-only
// operations require store mode").
func (t *Transformer) TransformToStore(ctx context.Context, src source.Source) (*graphstore.Graph, error) {
	store := graphstore.New()
	err := t.Transform(ctx, src, storeSink{store}, nil)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Save drains every node and edge in store to sink, in insertion order,
// without re-running the pipeline (a store's contents were already
// normalized on the way in). Finalize is always called, even on error.
func (t *Transformer) Save(ctx context.Context, store *graphstore.Graph, snk sink.Sink) error {
	for _, n := range store.Nodes() {
		if err := ctx.Err(); err != nil {
			_ = snk.Finalize(context.Background())
			return errors.WrapFatal(errors.ErrCancelled, "transform.Transformer", "Save", "context")
		}
		if err := snk.WriteNode(ctx, n); err != nil {
			_ = snk.Finalize(ctx)
			return err
		}
	}
	for _, e := range store.Edges() {
		if err := ctx.Err(); err != nil {
			_ = snk.Finalize(context.Background())
			return errors.WrapFatal(errors.ErrCancelled, "transform.Transformer", "Save", "context")
		}
		if err := snk.WriteEdge(ctx, e); err != nil {
			_ = snk.Finalize(ctx)
			return err
		}
	}
	return snk.Finalize(ctx)
}

// storeSink adapts a Graph Store to the sink.Sink interface so
// TransformToStore can reuse Transform's pipeline unchanged.
type storeSink struct{ store *graphstore.Graph }

func (s storeSink) WriteNode(_ context.Context, n *model.Node) error { s.store.AddNode(n); return nil }
func (s storeSink) WriteEdge(_ context.Context, e *model.Edge) error { s.store.AddEdge(e); return nil }
func (s storeSink) Finalize(_ context.Context) error                 { return nil }

// processNode runs stages 1-3 (filter, CURIE normalization, category
// defaulting) over n and returns the transformed node plus whether it
// survived filtering.
func (t *Transformer) processNode(n *model.Node) (*model.Node, bool) {
	if !t.filterNode(n) {
		t.metrics.RecordDropped("node", "FILTERED")
		return nil, false
	}

	n.ID = t.canonicalizeCURIE(n.ID)
	n.Xref = t.canonicalizeCURIEs(n.Xref)

	if len(n.Category) == 0 {
		n.Category = []string{model.RootEntityCategory}
		t.logWarn("node lacks category, defaulting to root", "node_id", n.ID)
	}

	t.mu.Lock()
	t.categories[n.ID] = n.Category
	t.mu.Unlock()

	return n, true
}

// processEdge runs stages 1-5 over e and returns the transformed edge plus
// whether it survived filtering. Predicate normalization (stage 4) runs
// before category defaulting (stage 3) so the association lookup sees a
// biolink:-prefixed predicate.
func (t *Transformer) processEdge(e *model.Edge) (*model.Edge, bool) {
	if !t.filterEdge(e) {
		t.metrics.RecordDropped("edge", "FILTERED")
		return nil, false
	}

	e.Subject = t.canonicalizeCURIE(e.Subject)
	e.Object = t.canonicalizeCURIE(e.Object)
	e.Publications = t.canonicalizeCURIEs(e.Publications)

	e.Predicate = t.normalizePredicate(e.Predicate)

	if len(e.Category) == 0 {
		e.Category = []string{t.defaultAssociationCategory(e)}
	}

	t.injectProvenance(e)

	return e, true
}

// filterNode applies the node_filters allow-list (spec §4.3 common
// configuration table).
func (t *Transformer) filterNode(n *model.Node) bool {
	f := t.opts.NodeFilters
	if len(f.Category) > 0 && !anyIntersect(n.Category, f.Category) {
		return false
	}
	for key, allowed := range f.Properties {
		val, ok := nodeFieldValue(n, key)
		if !ok || !contains(allowed, val) {
			return false
		}
	}
	return true
}

// filterEdge applies the edge_filters allow-list. Endpoint category checks
// consult categories observed on nodes already streamed through this same
// Transformer; an edge whose endpoint category is unknown (not yet seen,
// or the format streams edges before nodes) passes the category check
// rather than being dropped on incomplete information.
func (t *Transformer) filterEdge(e *model.Edge) bool {
	f := t.opts.EdgeFilters
	if len(f.Predicate) > 0 && !contains(f.Predicate, e.Predicate) {
		return false
	}
	if len(f.SubjectCategory) > 0 {
		if cats, known := t.lookupCategory(e.Subject); known && !anyIntersect(cats, f.SubjectCategory) {
			return false
		}
	}
	if len(f.ObjectCategory) > 0 {
		if cats, known := t.lookupCategory(e.Object); known && !anyIntersect(cats, f.ObjectCategory) {
			return false
		}
	}
	return true
}

func (t *Transformer) lookupCategory(id string) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cats, ok := t.categories[id]
	return cats, ok
}

// canonicalizeCURIE rewrites id through the prefix map, per (spec §4.1
// Canonical), leaving it unchanged if it is already a bare CURIE with no
// registered alternate prefix or the manager is non-strict and finds no
// match.
func (t *Transformer) canonicalizeCURIE(id string) string {
	if id == "" {
		return id
	}
	canon, err := t.pm.Canonical(id)
	if err != nil {
		return id
	}
	return canon
}

func (t *Transformer) canonicalizeCURIEs(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.canonicalizeCURIE(id)
	}
	return out
}

// defaultAssociationCategory picks the association class to assign an edge
// with no explicit category: the most specific registered Association
// subclass whose declared domain/range matches e.Predicate and the
// subject/object node categories observed so far, falling back to the
// root association class when the vocabulary is absent, the endpoint
// categories aren't known yet, or no subclass matches (spec §4.5 stage 3,
// "lowest-common association class compatible with subject/object
// categories", mirroring node category defaulting's use of the root
// entity class).
func (t *Transformer) defaultAssociationCategory(e *model.Edge) string {
	const rootAssociation = "biolink:Association"
	if t.vocab == nil {
		return rootAssociation
	}
	subjCats, subjOK := t.lookupCategory(e.Subject)
	objCats, objOK := t.lookupCategory(e.Object)
	if !subjOK || !objOK {
		return rootAssociation
	}
	for _, sc := range subjCats {
		for _, oc := range objCats {
			if cat := t.vocab.AssociationCategory(e.Predicate, sc, oc); cat != rootAssociation {
				return cat
			}
		}
	}
	return rootAssociation
}

// normalizePredicate applies opts.PredicateMappings and, absent a mapping,
// defaults to the biolink: prefix for a bare predicate name (spec §4.5
// stage 4). An unrecognized predicate is logged but the edge is still
// passed through; the Validator, not the Transformer, is what rejects
// records (spec §4.6).
func (t *Transformer) normalizePredicate(predicate string) string {
	if mapped, ok := t.opts.PredicateMappings[predicate]; ok {
		predicate = mapped
	}
	if predicate == "" {
		return predicate
	}
	if !prefixmanager.IsCURIE(predicate) {
		predicate = "biolink:" + predicate
	}
	if t.vocab != nil && !t.vocab.IsKnownPredicate(predicate) {
		t.metrics.RecordValidationIssue("WARNING", "UNRECOGNIZED_PREDICATE")
		t.logWarn("predicate not in vocabulary", "predicate", predicate)
	}
	return predicate
}

// injectProvenance fills missing knowledge-source fields from
// opts.KnowledgeSource defaults, then applies the InfoRes rewrite rule to
// every knowledge-source value that is not already an infores: CURIE
// (spec §4.5 stage 5).
func (t *Transformer) injectProvenance(e *model.Edge) {
	if e.PrimaryKnowledgeSource == "" {
		e.PrimaryKnowledgeSource = t.opts.KnowledgeSource.PrimaryKnowledgeSource
	}
	if len(e.AggregatorKnowledgeSource) == 0 {
		e.AggregatorKnowledgeSource = t.opts.KnowledgeSource.AggregatorKnowledgeSource
	}
	if len(e.SupportingDataSource) == 0 {
		e.SupportingDataSource = t.opts.KnowledgeSource.SupportingDataSource
	}
	if e.KnowledgeLevel == "" {
		if t.opts.KnowledgeSource.KnowledgeLevel != "" {
			e.KnowledgeLevel = t.opts.KnowledgeSource.KnowledgeLevel
		} else {
			t.metrics.RecordValidationIssue("WARNING", "MISSING_KNOWLEDGE_LEVEL")
		}
	}
	if e.AgentType == "" {
		if t.opts.KnowledgeSource.AgentType != "" {
			e.AgentType = t.opts.KnowledgeSource.AgentType
		} else {
			t.metrics.RecordValidationIssue("WARNING", "MISSING_AGENT_TYPE")
		}
	}

	e.PrimaryKnowledgeSource = t.catalog.rewrite(e.PrimaryKnowledgeSource, t.opts.InfoResRewrite)
	for i, src := range e.AggregatorKnowledgeSource {
		e.AggregatorKnowledgeSource[i] = t.catalog.rewrite(src, t.opts.InfoResRewrite)
	}
	for i, src := range e.SupportingDataSource {
		e.SupportingDataSource[i] = t.catalog.rewrite(src, t.opts.InfoResRewrite)
	}
}

func (t *Transformer) logWarn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}

func nodeFieldValue(n *model.Node, key string) (string, bool) {
	switch key {
	case "id":
		return n.ID, true
	case "name":
		return n.Name, n.Name != ""
	case "description":
		return n.Description, n.Description != ""
	default:
		v, ok := n.Properties[key]
		if !ok {
			return "", false
		}
		return v.String(), true
	}
}

func anyIntersect(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	for _, v := range a {
		if set[v] {
			return true
		}
	}
	return false
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}
