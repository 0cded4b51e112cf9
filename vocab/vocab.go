package vocab

import "sync"

// Version identifies the Biolink Model release a Service answers questions
// against, e.g. "4.2.1". The Validator captures a Version at construction
// time rather than consulting a process-wide global (spec §4.6, §9).
type Version string

// ValueType is the declared value type of a node or edge property, checked
// by the Validator against the value it actually holds.
type ValueType string

const (
	ValueTypeString      ValueType = "string"
	ValueTypeCURIE       ValueType = "curie"
	ValueTypeNumber      ValueType = "number"
	ValueTypeBoolean     ValueType = "boolean"
	ValueTypeListString  ValueType = "list_of_string"
	ValueTypeListCURIE   ValueType = "list_of_curie"
	ValueTypeListNumber  ValueType = "list_of_number"
)

// ClassMetadata describes one Biolink class node in the "is_a" hierarchy.
// Domain/RangeType are only meaningful on Association subclasses: the
// subject/object category a predicate with the same declared domain/range
// must match for AssociationCategory to select this class (spec §4.5
// stage 3).
type ClassMetadata struct {
	Name          string
	Parent        string
	Mixins        []string
	RequiredSlots []string
	SlotTypes     map[string]ValueType
	Abstract      bool
	Domain        string
	RangeType     string
}

// PredicateMetadata describes one Biolink predicate (relation).
type PredicateMetadata struct {
	Name      string
	Parent    string
	Domain    string
	RangeType string
	Symmetric bool
	Inverse   string
}

// ClassOption configures a ClassMetadata during RegisterClass.
type ClassOption func(*ClassMetadata)

// WithParent sets the direct superclass in the "is_a" hierarchy.
func WithParent(parent string) ClassOption {
	return func(m *ClassMetadata) { m.Parent = parent }
}

// WithMixins records additional non-hierarchical parents a class borrows
// slots from.
func WithMixins(mixins ...string) ClassOption {
	return func(m *ClassMetadata) { m.Mixins = append(m.Mixins, mixins...) }
}

// WithRequiredSlots lists the slot names the Validator treats as mandatory
// on instances of this class.
func WithRequiredSlots(slots ...string) ClassOption {
	return func(m *ClassMetadata) { m.RequiredSlots = append(m.RequiredSlots, slots...) }
}

// WithSlotType declares the expected ValueType for a named slot.
func WithSlotType(slot string, vt ValueType) ClassOption {
	return func(m *ClassMetadata) {
		if m.SlotTypes == nil {
			m.SlotTypes = make(map[string]ValueType)
		}
		m.SlotTypes[slot] = vt
	}
}

// WithAbstract marks a class as a grouping class not expected to appear
// directly as a node's most specific category.
func WithAbstract() ClassOption {
	return func(m *ClassMetadata) { m.Abstract = true }
}

// WithAssociationDomain declares the subject category an Association
// subclass applies to, matched against a predicate's own declared domain
// by AssociationCategory.
func WithAssociationDomain(class string) ClassOption {
	return func(m *ClassMetadata) { m.Domain = class }
}

// WithAssociationRange declares the object category an Association
// subclass applies to, matched against a predicate's own declared range
// by AssociationCategory.
func WithAssociationRange(class string) ClassOption {
	return func(m *ClassMetadata) { m.RangeType = class }
}

// PredicateOption configures a PredicateMetadata during RegisterPredicate.
type PredicateOption func(*PredicateMetadata)

// WithPredicateParent sets the direct superproperty.
func WithPredicateParent(parent string) PredicateOption {
	return func(m *PredicateMetadata) { m.Parent = parent }
}

// WithDomain restricts the predicate's subject to instances of class.
func WithDomain(class string) PredicateOption {
	return func(m *PredicateMetadata) { m.Domain = class }
}

// WithRangeClass restricts the predicate's object to instances of class.
func WithRangeClass(class string) PredicateOption {
	return func(m *PredicateMetadata) { m.RangeType = class }
}

// WithSymmetric marks a predicate as its own inverse.
func WithSymmetric() PredicateOption {
	return func(m *PredicateMetadata) { m.Symmetric = true }
}

// WithInverse names the predicate's inverse relation.
func WithInverse(inverse string) PredicateOption {
	return func(m *PredicateMetadata) { m.Inverse = inverse }
}

// Registry is an in-memory Service implementation: a class hierarchy and a
// predicate hierarchy, each keyed by CamelCase / snake_case Biolink name.
type Registry struct {
	mu         sync.RWMutex
	version    Version
	classes    map[string]ClassMetadata
	predicates map[string]PredicateMetadata
}

// NewRegistry returns an empty Registry pinned to version.
func NewRegistry(version Version) *Registry {
	return &Registry{
		version:    version,
		classes:    make(map[string]ClassMetadata),
		predicates: make(map[string]PredicateMetadata),
	}
}

// RegisterClass adds or overwrites a class in the hierarchy.
func (r *Registry) RegisterClass(name string, opts ...ClassOption) {
	meta := ClassMetadata{Name: name}
	for _, opt := range opts {
		opt(&meta)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[name] = meta
}

// RegisterPredicate adds or overwrites a predicate in the hierarchy.
func (r *Registry) RegisterPredicate(name string, opts ...PredicateOption) {
	meta := PredicateMetadata{Name: name}
	for _, opt := range opts {
		opt(&meta)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[name] = meta
}

// Version returns the Biolink Model release this Registry was built from.
func (r *Registry) Version() Version {
	return r.version
}

// IsKnownClass reports whether name is a registered class.
func (r *Registry) IsKnownClass(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.classes[name]
	return ok
}

// IsKnownPredicate reports whether name is a registered predicate.
func (r *Registry) IsKnownPredicate(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.predicates[name]
	return ok
}

// Ancestors returns class and every superclass up to the hierarchy root,
// nearest first, including class itself. Mixins are appended after the
// direct "is_a" chain. An unknown class returns just itself.
func (r *Registry) Ancestors(class string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain []string
	seen := make(map[string]bool)
	cur := class
	for cur != "" && !seen[cur] {
		chain = append(chain, cur)
		seen[cur] = true
		meta, ok := r.classes[cur]
		if !ok {
			break
		}
		for _, mixin := range meta.Mixins {
			if !seen[mixin] {
				chain = append(chain, mixin)
				seen[mixin] = true
			}
		}
		cur = meta.Parent
	}
	return chain
}

// RequiredSlots returns the required slot names declared for class,
// including those inherited from ancestors.
func (r *Registry) RequiredSlots(class string) []string {
	ancestors := r.Ancestors(class)

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var slots []string
	for _, a := range ancestors {
		meta, ok := r.classes[a]
		if !ok {
			continue
		}
		for _, s := range meta.RequiredSlots {
			if !seen[s] {
				seen[s] = true
				slots = append(slots, s)
			}
		}
	}
	return slots
}

// ValueType returns the declared value type for slot on class, walking up
// the ancestor chain, and false if no ancestor declares it.
func (r *Registry) ValueType(class, slot string) (ValueType, bool) {
	ancestors := r.Ancestors(class)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range ancestors {
		meta, ok := r.classes[a]
		if !ok {
			continue
		}
		if vt, ok := meta.SlotTypes[slot]; ok {
			return vt, true
		}
	}
	return "", false
}

// PredicateAncestors returns predicate and its superproperties, nearest
// first, including predicate itself.
func (r *Registry) PredicateAncestors(predicate string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain []string
	seen := make(map[string]bool)
	cur := predicate
	for cur != "" && !seen[cur] {
		chain = append(chain, cur)
		seen[cur] = true
		meta, ok := r.predicates[cur]
		if !ok {
			break
		}
		cur = meta.Parent
	}
	return chain
}

// CommonAncestor reports whether a and b share any class in their
// respective Ancestors chains below the root entity class (biolink:NamedThing
// and its own ancestors are not counted), used by the Clique Merge
// Resolver's strict-mode category-compatibility check.
func (r *Registry) CommonAncestor(a, b string) bool {
	const rootClass = "biolink:NamedThing"
	if a == b {
		return true
	}
	roots := make(map[string]bool)
	for _, c := range r.Ancestors(rootClass) {
		roots[c] = true
	}
	setA := make(map[string]bool)
	for _, c := range r.Ancestors(a) {
		if !roots[c] {
			setA[c] = true
		}
	}
	for _, c := range r.Ancestors(b) {
		if setA[c] {
			return true
		}
	}
	return false
}

// AssociationCategory picks the most specific registered Association
// subclass compatible with predicate's declared domain/range and with
// subjectCategory/objectCategory, falling back to the root biolink:
// Association class when predicate is unknown, has no declared domain or
// range, or no registered subclass declares that exact domain/range pair
// (spec §4.5 stage 3, "lowest-common association class compatible with
// subject/object categories").
func (r *Registry) AssociationCategory(predicate, subjectCategory, objectCategory string) string {
	const rootAssociation = "biolink:Association"

	r.mu.RLock()
	pred, ok := r.predicates[predicate]
	r.mu.RUnlock()
	if !ok || pred.Domain == "" || pred.RangeType == "" {
		return rootAssociation
	}

	if !classIsA(r.Ancestors(subjectCategory), pred.Domain) || !classIsA(r.Ancestors(objectCategory), pred.RangeType) {
		return rootAssociation
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, meta := range r.classes {
		if meta.Domain == pred.Domain && meta.RangeType == pred.RangeType {
			return name
		}
	}
	return rootAssociation
}

func classIsA(ancestors []string, class string) bool {
	for _, a := range ancestors {
		if a == class {
			return true
		}
	}
	return false
}
