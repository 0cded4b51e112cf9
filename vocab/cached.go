package vocab

import (
	"fmt"

	"github.com/biolink/kgx/pkg/cache"
)

// cachedService wraps a Service with an LRU cache over its lookup methods.
// The bundled default registry is an in-memory map and gains nothing from
// this, but an embedding application's Service backed by an HTTP client
// against a biolink-model.yaml resolver (service.go, "typically backed by
// an HTTP client") turns every Ancestors/IsKnownPredicate call into a
// network round trip; NewCachedService lets that caller avoid re-resolving
// the same class or predicate on every record of a run.
type cachedService struct {
	inner Service

	classes    cache.Cache[bool]
	predicates cache.Cache[bool]
	ancestors  cache.Cache[[]string]
	predAnc    cache.Cache[[]string]
	assoc      cache.Cache[string]
}

// NewCachedService wraps inner with a bounded LRU cache (capacity entries
// per lookup kind). Ancestors/PredicateAncestors/CommonAncestor results key
// off the class or predicate name alone, which is safe since a Service is
// immutable for the lifetime a Validator or Transformer holds it (spec
// §1, "a Validator captures one Service ... and never mutates it").
func NewCachedService(inner Service, capacity int) (Service, error) {
	classes, err := cache.NewLRU[bool](capacity)
	if err != nil {
		return nil, err
	}
	predicates, err := cache.NewLRU[bool](capacity)
	if err != nil {
		return nil, err
	}
	ancestors, err := cache.NewLRU[[]string](capacity)
	if err != nil {
		return nil, err
	}
	predAnc, err := cache.NewLRU[[]string](capacity)
	if err != nil {
		return nil, err
	}
	assoc, err := cache.NewLRU[string](capacity)
	if err != nil {
		return nil, err
	}
	return &cachedService{
		inner:      inner,
		classes:    classes,
		predicates: predicates,
		ancestors:  ancestors,
		predAnc:    predAnc,
		assoc:      assoc,
	}, nil
}

func (c *cachedService) Version() Version { return c.inner.Version() }

func (c *cachedService) IsKnownClass(name string) bool {
	if v, ok := c.classes.Get(name); ok {
		return v
	}
	v := c.inner.IsKnownClass(name)
	_, _ = c.classes.Set(name, v)
	return v
}

func (c *cachedService) IsKnownPredicate(name string) bool {
	if v, ok := c.predicates.Get(name); ok {
		return v
	}
	v := c.inner.IsKnownPredicate(name)
	_, _ = c.predicates.Set(name, v)
	return v
}

func (c *cachedService) Ancestors(class string) []string {
	if v, ok := c.ancestors.Get(class); ok {
		return v
	}
	v := c.inner.Ancestors(class)
	_, _ = c.ancestors.Set(class, v)
	return v
}

func (c *cachedService) RequiredSlots(class string) []string {
	return c.inner.RequiredSlots(class)
}

func (c *cachedService) ValueType(class, slot string) (ValueType, bool) {
	return c.inner.ValueType(class, slot)
}

func (c *cachedService) PredicateAncestors(predicate string) []string {
	if v, ok := c.predAnc.Get(predicate); ok {
		return v
	}
	v := c.inner.PredicateAncestors(predicate)
	_, _ = c.predAnc.Set(predicate, v)
	return v
}

func (c *cachedService) CommonAncestor(a, b string) bool {
	key := fmt.Sprintf("%s|%s", a, b)
	if v, ok := c.classes.Get(key); ok {
		return v
	}
	v := c.inner.CommonAncestor(a, b)
	_, _ = c.classes.Set(key, v)
	return v
}

func (c *cachedService) AssociationCategory(predicate, subjectCategory, objectCategory string) string {
	key := fmt.Sprintf("%s|%s|%s", predicate, subjectCategory, objectCategory)
	if v, ok := c.assoc.Get(key); ok {
		return v
	}
	v := c.inner.AssociationCategory(predicate, subjectCategory, objectCategory)
	_, _ = c.assoc.Set(key, v)
	return v
}
