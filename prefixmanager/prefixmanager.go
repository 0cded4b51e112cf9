package prefixmanager

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/biolink/kgx/errors"
)

// PrefixManager holds the bidirectional prefix↔base-IRI mapping and the
// priority list used to pick a canonical CURIE when an IRI matches more
// than one base (spec §4.1).
type PrefixManager struct {
	mu            sync.RWMutex
	p2i           map[string]string
	priority      []string
	priorityIndex map[string]int
	defaultPrefix string
	strict        bool
	logger        *slog.Logger
}

// Option configures a PrefixManager at construction time.
type Option func(*PrefixManager)

// WithPriority sets the ordered prefix list used to break contraction ties.
func WithPriority(prefixes ...string) Option {
	return func(pm *PrefixManager) { pm.setPriority(prefixes) }
}

// WithDefaultPrefix sets the prefix applied to colon-free tokens.
func WithDefaultPrefix(prefix string) Option {
	return func(pm *PrefixManager) { pm.defaultPrefix = prefix }
}

// WithStrict makes Contract return ErrNoContraction instead of passing the
// IRI through unchanged when no base matches.
func WithStrict(strict bool) Option {
	return func(pm *PrefixManager) { pm.strict = strict }
}

// WithLogger overrides the logger used for prefix-redefinition warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(pm *PrefixManager) { pm.logger = logger }
}

// New returns a PrefixManager seeded with prefixMap (prefix → base IRI).
func New(prefixMap map[string]string, opts ...Option) *PrefixManager {
	pm := &PrefixManager{
		p2i:    make(map[string]string),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(pm)
	}
	pm.Update(prefixMap)
	return pm
}

func (pm *PrefixManager) setPriority(prefixes []string) {
	pm.priority = append([]string(nil), prefixes...)
	pm.priorityIndex = make(map[string]int, len(prefixes))
	for i, p := range prefixes {
		pm.priorityIndex[p] = i
	}
}

// isIRI reports whether s already looks like a fully-expanded IRI rather
// than a CURIE.
func isIRI(s string) bool {
	return strings.Contains(s, "://")
}

// Update merges additional prefix bindings into the manager. Later
// bindings win; redefining a prefix with a different base logs a warning
// rather than failing (spec §4.1).
func (pm *PrefixManager) Update(prefixMap map[string]string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	keys := make([]string, 0, len(prefixMap))
	for k := range prefixMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		base := prefixMap[prefix]
		if existing, ok := pm.p2i[prefix]; ok && existing != base {
			pm.logger.Warn("prefix redefined with a different base IRI",
				"prefix", prefix, "previous_base", existing, "new_base", base)
		}
		pm.p2i[prefix] = base
	}
}

// Expand resolves a CURIE to its base IRI. If curie already looks like an
// IRI it is returned unchanged. A colon-free token is expanded using the
// default prefix, if one is configured.
func (pm *PrefixManager) Expand(curie string) (string, error) {
	if isIRI(curie) {
		return curie, nil
	}

	prefix, local, found := strings.Cut(curie, ":")
	if !found {
		if pm.defaultPrefix == "" {
			return "", errors.WrapInvalid(errors.ErrUnknownPrefix, "PrefixManager", "Expand",
				"no prefix in token and no default prefix configured: "+curie)
		}
		prefix, local = pm.defaultPrefix, curie
	}

	pm.mu.RLock()
	base, ok := pm.p2i[prefix]
	pm.mu.RUnlock()
	if !ok {
		return "", errors.WrapInvalid(errors.ErrUnknownPrefix, "PrefixManager", "Expand",
			"unknown prefix: "+prefix)
	}
	return base + local, nil
}

// Contract picks the longest base IRI matching iri and rewrites it as
// prefix:local. Ties are broken by the priority list, then alphabetically
// by prefix. If no base matches, Contract returns iri unchanged unless the
// manager was built WithStrict(true), in which case it returns
// ErrNoContraction.
func (pm *PrefixManager) Contract(iri string) (string, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	type candidate struct {
		prefix string
		base   string
	}
	var best *candidate
	for prefix, base := range pm.p2i {
		if !strings.HasPrefix(iri, base) {
			continue
		}
		c := candidate{prefix: prefix, base: base}
		if best == nil || pm.contractBetter(c.prefix, c.base, best.prefix, best.base) {
			best = &c
		}
	}

	if best == nil {
		if pm.strict {
			return "", errors.WrapInvalid(errors.ErrNoContraction, "PrefixManager", "Contract",
				"no base IRI matches: "+iri)
		}
		return iri, nil
	}
	return best.prefix + ":" + strings.TrimPrefix(iri, best.base), nil
}

// contractBetter reports whether candidate (prefixA, baseA) should win over
// the current best (prefixB, baseB): longer base first, then priority-list
// rank, then alphabetical prefix.
func (pm *PrefixManager) contractBetter(prefixA, baseA, prefixB, baseB string) bool {
	if len(baseA) != len(baseB) {
		return len(baseA) > len(baseB)
	}
	rankA, hasA := pm.priorityIndex[prefixA]
	rankB, hasB := pm.priorityIndex[prefixB]
	switch {
	case hasA && hasB:
		if rankA != rankB {
			return rankA < rankB
		}
	case hasA:
		return true
	case hasB:
		return false
	}
	return prefixA < prefixB
}

// Canonical expands then contracts curie, producing its preferred form
// (spec P2: contract(expand(c)) = canonical(c)).
func (pm *PrefixManager) Canonical(curie string) (string, error) {
	iri, err := pm.Expand(curie)
	if err != nil {
		return "", err
	}
	return pm.Contract(iri)
}

// IsCURIE reports whether s has the syntactic shape prefix:local and is
// not itself an IRI.
func IsCURIE(s string) bool {
	if isIRI(s) {
		return false
	}
	prefix, local, found := strings.Cut(s, ":")
	return found && prefix != "" && local != ""
}
