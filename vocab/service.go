package vocab

// Service is the immutable vocabulary contract the Validator, Clique Merge
// Resolver and Summarizer consult (spec §1, §4.6). Implementations must be
// safe for concurrent use; a Validator captures one Service (and thus one
// Version) at construction time and never mutates it.
type Service interface {
	Version() Version
	IsKnownClass(name string) bool
	IsKnownPredicate(name string) bool
	Ancestors(class string) []string
	RequiredSlots(class string) []string
	ValueType(class, slot string) (ValueType, bool)
	PredicateAncestors(predicate string) []string
	CommonAncestor(a, b string) bool
	AssociationCategory(predicate, subjectCategory, objectCategory string) string
}

// ServiceWithVersion returns the bundled default Service pinned to version.
// Embedding applications that need the live Biolink Model instead implement
// Service themselves, typically backed by an HTTP client against a
// biolink-model.yaml resolver.
func ServiceWithVersion(version Version) Service {
	return newDefaultRegistry(version)
}
