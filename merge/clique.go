package merge

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/graphstore"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/vocab"
)

// CliqueResolver collapses equivalence-class cliques (nodes joined by
// biolink:same_as edges or a same_as property) to a single leader node and
// rewrites every incident edge to reference it (spec §4.7).
type CliqueResolver struct {
	vocab          vocab.Service
	strict         bool
	allowSelfLoops bool
	prefixPriority map[string][]string
}

// Option configures a CliqueResolver at construction time.
type Option func(*CliqueResolver)

// WithVocabService supplies the vocabulary used for strict-mode category
// compatibility checks. Without one, every clique is treated as
// compatible.
func WithVocabService(v vocab.Service) Option {
	return func(r *CliqueResolver) { r.vocab = v }
}

// WithStrictMode aborts a clique (recording CliqueConflict) instead of
// unioning categories when its members have no common ancestor (spec §4.7
// step 6).
func WithStrictMode(strict bool) Option {
	return func(r *CliqueResolver) { r.strict = strict }
}

// WithAllowSelfLoops keeps edges that become self-loops as a result of
// endpoint rewriting, instead of dropping them (spec §4.7 step 5).
func WithAllowSelfLoops(allow bool) Option {
	return func(r *CliqueResolver) { r.allowSelfLoops = allow }
}

// WithPrefixPriority supplies the per-category identifier-prefix priority
// list consulted during leader election (spec §4.7 step 3(b), e.g.
// "Prefix priority for Gene: HGNC > NCBIGene > ENSEMBL").
func WithPrefixPriority(priority map[string][]string) Option {
	return func(r *CliqueResolver) { r.prefixPriority = priority }
}

// NewCliqueResolver returns a CliqueResolver configured from opts.
func NewCliqueResolver(opts ...Option) *CliqueResolver {
	r := &CliqueResolver{prefixPriority: map[string][]string{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve builds the same-as clique graph over store, elects a leader per
// clique, merges non-leaders into it, and returns a new Graph Store with
// every edge rewritten to reference leaders (spec §4.7). It returns a
// CliqueConflict-classified error if any clique was rejected in strict
// mode; conflicting cliques are left unmerged rather than aborting the
// whole run (spec §7, "aborts clique-merge only").
func (r *CliqueResolver) Resolve(store *graphstore.Graph) (*graphstore.Graph, error) {
	uf := newUnionFind()
	for _, n := range store.Nodes() {
		uf.add(n.ID)
	}
	for _, e := range store.Edges() {
		if r.isSameAs(e.Predicate) {
			uf.union(e.Subject, e.Object)
		}
	}
	for _, n := range store.Nodes() {
		for _, other := range model.GetStringList(n.Properties, "same_as", nil) {
			uf.union(n.ID, other)
		}
	}

	leaderOf := make(map[string]string)
	var conflicts []string
	for _, members := range uf.groups() {
		nodes := make([]*model.Node, 0, len(members))
		for _, id := range members {
			nodes = append(nodes, store.GetNode(id))
		}

		if r.strict && !r.categoriesCompatible(nodes) {
			sort.Strings(members)
			conflicts = append(conflicts, strings.Join(members, ","))
			continue
		}

		leader := r.electLeader(nodes)
		for _, id := range members {
			leaderOf[id] = leader
		}
	}

	out := graphstore.New()
	for _, n := range store.Nodes() {
		leaderID, rewritten := leaderOf[n.ID]
		clone := n.Clone()
		if rewritten && leaderID != n.ID {
			clone.Xref = append(clone.Xref, n.ID)
			clone.ID = leaderID
		}
		out.AddNode(clone)
	}
	for _, e := range store.Edges() {
		newSubject, subjectRewritten := resolveLeader(leaderOf, e.Subject)
		newObject, objectRewritten := resolveLeader(leaderOf, e.Object)

		originalSelfLoop := e.Subject == e.Object
		rewrittenSelfLoop := newSubject == newObject
		if rewrittenSelfLoop && !originalSelfLoop && !r.allowSelfLoops {
			continue
		}

		clone := e.Clone()
		clone.Subject = newSubject
		clone.Object = newObject
		if subjectRewritten {
			clone.OriginalSubject = e.Subject
		}
		if objectRewritten {
			clone.OriginalObject = e.Object
		}
		out.AddEdge(clone)
	}

	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return out, errors.WrapInvalid(errors.ErrCliqueConflict, "merge.CliqueResolver", "Resolve",
			fmt.Sprintf("%d clique(s) rejected: %s", len(conflicts), strings.Join(conflicts, "; ")))
	}
	return out, nil
}

func resolveLeader(leaderOf map[string]string, id string) (string, bool) {
	leader, ok := leaderOf[id]
	if !ok {
		return id, false
	}
	return leader, leader != id
}

// isSameAs reports whether predicate is biolink:same_as or one of its
// registered sub-predicates.
func (r *CliqueResolver) isSameAs(predicate string) bool {
	if predicate == model.SameAsPredicate {
		return true
	}
	if r.vocab == nil {
		return false
	}
	for _, ancestor := range r.vocab.PredicateAncestors(predicate) {
		if ancestor == model.SameAsPredicate {
			return true
		}
	}
	return false
}

// categoriesCompatible reports whether every pair of nodes in the clique
// shares a common ancestor class (spec §4.7 step 6, strict mode).
func (r *CliqueResolver) categoriesCompatible(nodes []*model.Node) bool {
	if r.vocab == nil {
		return true
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if !anyCategoryPairShares(nodes[i].Category, nodes[j].Category, r.vocab) {
				return false
			}
		}
	}
	return true
}

func anyCategoryPairShares(a, b []string, v vocab.Service) bool {
	for _, ca := range a {
		for _, cb := range b {
			if v.CommonAncestor(ca, cb) {
				return true
			}
		}
	}
	return false
}

// electLeader picks the clique leader per spec §4.7 step 3: an explicit
// clique_leader annotation first, then identifier-prefix priority for the
// node's category, then alphabetical order — each tier only breaking ties
// left by the one before it.
func (r *CliqueResolver) electLeader(nodes []*model.Node) string {
	candidates := nodes
	if flagged := filterClaimedLeaders(nodes); len(flagged) > 0 {
		candidates = flagged
	}
	if len(candidates) == 1 {
		return candidates[0].ID
	}

	candidates = r.filterByPrefixPriority(candidates)
	if len(candidates) == 1 {
		return candidates[0].ID
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates[0].ID
}

func filterClaimedLeaders(nodes []*model.Node) []*model.Node {
	var flagged []*model.Node
	for _, n := range nodes {
		if model.GetBool(n.Properties, "clique_leader", false) {
			flagged = append(flagged, n)
		}
	}
	return flagged
}

func (r *CliqueResolver) filterByPrefixPriority(nodes []*model.Node) []*model.Node {
	bestRank := math.MaxInt
	var best []*model.Node
	for _, n := range nodes {
		rank := r.bestPrefixRank(n)
		switch {
		case rank < bestRank:
			bestRank = rank
			best = []*model.Node{n}
		case rank == bestRank:
			best = append(best, n)
		}
	}
	if len(best) == 0 {
		return nodes
	}
	return best
}

func (r *CliqueResolver) bestPrefixRank(n *model.Node) int {
	prefix, _, found := strings.Cut(n.ID, ":")
	if !found {
		return math.MaxInt
	}
	best := math.MaxInt
	for _, category := range n.Category {
		priority, ok := r.prefixPriority[category]
		if !ok {
			continue
		}
		for i, p := range priority {
			if p == prefix && i < best {
				best = i
			}
		}
	}
	return best
}
