package pgdb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"golang.org/x/sync/errgroup"

	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/source"
)

// Source pages nodes then edges out of a property-graph database, honoring
// node/edge filters at query time. Next fetches one page at a time, in
// page order; FetchPagesConcurrently is the concurrent prefetch path.
type Source struct {
	client *Client
	opts   config.Options

	nodeCategoryFilter []string
	edgeFilter         config.EdgeFilters

	pending []source.Record
	cursor  int
	phase   phase
	done    bool

	nodesFetched int
	edgesFetched int

	mu sync.Mutex
}

type phase int

const (
	phaseNodes phase = iota
	phaseEdges
	phaseDone
)

// NewSource returns a Source reading through client, honoring opts'
// NodeFilters/EdgeFilters (spec §6.3).
func NewSource(client *Client, opts config.Options) *Source {
	return &Source{
		client:             client,
		opts:               opts,
		nodeCategoryFilter: opts.NodeFilters.Category,
		edgeFilter:         opts.EdgeFilters,
	}
}

// Next returns the next Node then Edge record, fetching and reassembling
// pages as needed. It returns errors.ErrSourceExhausted once both passes
// are drained.
func (s *Source) Next(ctx context.Context) (source.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.cursor < len(s.pending) {
			rec := s.pending[s.cursor]
			s.cursor++
			return rec, nil
		}
		if s.done {
			return source.Record{}, errors.ErrSourceExhausted
		}
		if err := s.fetchNextPage(ctx); err != nil {
			return source.Record{}, err
		}
	}
}

// Close is a no-op; the underlying Client's connection is owned and
// closed by its caller, since one Client is typically shared by a Source
// and its paired Sink.
func (s *Source) Close() error { return nil }

func (s *Source) fetchNextPage(ctx context.Context) error {
	switch s.phase {
	case phaseNodes:
		records, err := s.fetchNodePage(ctx, s.nodesFetched)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			s.phase = phaseEdges
			s.pending, s.cursor = nil, 0
			return nil
		}
		s.pending, s.cursor = records, 0
		s.nodesFetched += len(records)
		return nil
	case phaseEdges:
		records, err := s.fetchEdgePage(ctx, s.edgesFetched)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			s.phase = phaseDone
			s.done = true
			s.pending, s.cursor = nil, 0
			return nil
		}
		s.pending, s.cursor = records, 0
		s.edgesFetched += len(records)
		return nil
	default:
		s.done = true
		return nil
	}
}

func (s *Source) fetchNodePage(ctx context.Context, skip int) ([]source.Record, error) {
	pageSize := s.client.cfg.PageSize
	where, params := nodeFilterClause(s.nodeCategoryFilter)
	cypher := fmt.Sprintf(`MATCH (n:KGXNode) %s RETURN n SKIP $skip LIMIT $limit`, where)
	params["skip"] = skip
	params["limit"] = pageSize

	rows, err := s.client.run(ctx, neo4j.AccessModeRead, cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]source.Record, 0, len(rows))
	for _, row := range rows {
		raw, _, err := neo4j.GetRecordValue[dbtype.Node](row, "n")
		if err != nil {
			return nil, errors.WrapInvalid(err, "pgdb", "fetchNodePage", "extract node")
		}
		n, err := propsToNode(raw.Props)
		if err != nil {
			return nil, err
		}
		out = append(out, source.Record{Kind: source.KindNode, Node: n})
	}
	return out, nil
}

func (s *Source) fetchEdgePage(ctx context.Context, skip int) ([]source.Record, error) {
	pageSize := s.client.cfg.PageSize
	where, params := edgeFilterClause(s.edgeFilter)
	cypher := fmt.Sprintf(`MATCH (subj)-[r:%s]->(obj) %s RETURN subj, r, obj SKIP $skip LIMIT $limit`, edgeRelType, where)
	params["skip"] = skip
	params["limit"] = pageSize

	rows, err := s.client.run(ctx, neo4j.AccessModeRead, cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]source.Record, 0, len(rows))
	for _, row := range rows {
		subj, _, err := neo4j.GetRecordValue[dbtype.Node](row, "subj")
		if err != nil {
			return nil, errors.WrapInvalid(err, "pgdb", "fetchEdgePage", "extract subject")
		}
		obj, _, err := neo4j.GetRecordValue[dbtype.Node](row, "obj")
		if err != nil {
			return nil, errors.WrapInvalid(err, "pgdb", "fetchEdgePage", "extract object")
		}
		rel, _, err := neo4j.GetRecordValue[dbtype.Relationship](row, "r")
		if err != nil {
			return nil, errors.WrapInvalid(err, "pgdb", "fetchEdgePage", "extract relationship")
		}
		subjectID, _ := subj.Props["id"].(string)
		objectID, _ := obj.Props["id"].(string)
		e, err := propsToEdge(cloneProps(rel.Props), subjectID, objectID)
		if err != nil {
			return nil, err
		}
		out = append(out, source.Record{Kind: source.KindEdge, Edge: e})
	}
	return out, nil
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func nodeFilterClause(categories []string) (string, map[string]any) {
	if len(categories) == 0 {
		return "", map[string]any{}
	}
	return "WHERE any(c IN n.category WHERE c IN $categories)", map[string]any{"categories": categories}
}

func edgeFilterClause(f config.EdgeFilters) (string, map[string]any) {
	var clauses []string
	params := map[string]any{}
	if len(f.Predicate) > 0 {
		clauses = append(clauses, "r.predicate IN $predicates")
		params["predicates"] = f.Predicate
	}
	if len(f.SubjectCategory) > 0 {
		clauses = append(clauses, "any(c IN subj.category WHERE c IN $subject_categories)")
		params["subject_categories"] = f.SubjectCategory
	}
	if len(f.ObjectCategory) > 0 {
		clauses = append(clauses, "any(c IN obj.category WHERE c IN $object_categories)")
		params["object_categories"] = f.ObjectCategory
	}
	if len(clauses) == 0 {
		return "", params
	}
	return "WHERE " + strings.Join(clauses, " AND "), params
}

// FetchPagesConcurrently prefetches up to MaxConcurrentPages pages of a
// node scan starting at offsets, reassembling them in offset order before
// returning (spec §4.3.9, §5). Exposed for callers that want to warm a
// cache ahead of a streaming Transform run instead of paging one page at
// a time through Next.
func (s *Source) FetchPagesConcurrently(ctx context.Context, offsets []int) ([][]source.Record, error) {
	results := make([][]source.Record, len(offsets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.client.cfg.MaxConcurrentPages)
	for i, offset := range offsets {
		i, offset := i, offset
		g.Go(func() error {
			page, err := s.fetchNodePage(gctx, offset)
			if err != nil {
				return err
			}
			results[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
