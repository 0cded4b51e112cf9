package transform

import (
	"regexp"
	"strings"
	"sync"

	"github.com/biolink/kgx/config"
)

var wordSplitRE = regexp.MustCompile(`[^a-z0-9]+`)

// mintInfoRes lowercases, strips non-alphanumerics and joins the remaining
// words with '-' — the "true" form of the InfoRes rewrite rule (spec §4.5).
func mintInfoRes(s string) string {
	lower := strings.ToLower(s)
	words := wordSplitRE.Split(lower, -1)
	parts := words[:0]
	for _, w := range words {
		if w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, "-")
}

// rewriteInfoRes applies rule to name and returns the minted infores CURIE.
// The four forms (spec §4.5):
//
//	true                  -> mintInfoRes(name)
//	(regex)               -> delete regex matches, then mint
//	(regex, sub)          -> replace regex matches with sub, then mint
//	(regex, sub, prefix)  -> as above, minted under prefix instead of "infores"
func rewriteInfoRes(name string, rule *config.InfoResRewrite) string {
	if name == "" {
		return name
	}
	if rule == nil || !rule.Enabled {
		return "infores:" + mintInfoRes(name)
	}
	working := name
	if rule.Regex != "" {
		if re, err := regexp.Compile(rule.Regex); err == nil {
			if rule.Substitution != nil {
				working = re.ReplaceAllString(working, *rule.Substitution)
			} else {
				working = re.ReplaceAllString(working, "")
			}
		}
	}
	prefix := "infores"
	if rule.Prefix != "" {
		prefix = rule.Prefix
	}
	return prefix + ":" + mintInfoRes(working)
}

// infoResCatalog records the original (pre-rewrite) knowledge source name
// each minted infores CURIE was derived from, so callers can audit or
// reverse the rewrite after a Transform run (spec §4.5, "InfoRes catalog").
type infoResCatalog struct {
	mu      sync.RWMutex
	byInfoRes map[string]string
}

func newInfoResCatalog() *infoResCatalog {
	return &infoResCatalog{byInfoRes: make(map[string]string)}
}

// rewrite mints an infores CURIE for name (unless it is already one),
// records the original->minted mapping and returns the minted value.
func (c *infoResCatalog) rewrite(name string, rule *config.InfoResRewrite) string {
	if name == "" || strings.HasPrefix(name, "infores:") {
		return name
	}
	minted := rewriteInfoRes(name, rule)
	c.mu.Lock()
	c.byInfoRes[minted] = name
	c.mu.Unlock()
	return minted
}

// Snapshot returns a copy of the original->minted catalog, keyed by the
// original source name (spec §4.5).
func (c *infoResCatalog) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.byInfoRes))
	for minted, original := range c.byInfoRes {
		out[original] = minted
	}
	return out
}
