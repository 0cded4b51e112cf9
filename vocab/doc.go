// Package vocab defines the contract a Biolink-like vocabulary answers
// class/slot/predicate questions against (spec §4.6), and ships an
// in-memory implementation of it seeded with a small, representative
// slice of the Biolink Model: enough classes and predicates for the
// Validator, Clique Merge Resolver and Summarizer to exercise every
// check they define without requiring network access to a live
// biolink-model.yaml.
//
// Registration follows the functional-options pattern this codebase
// uses elsewhere for building up metadata incrementally:
//
//	reg.RegisterClass("biolink:Disease",
//	    WithParent("biolink:DiseaseOrPhenotypicFeature"),
//	    WithRequiredSlots("id", "category"))
//
//	reg.RegisterPredicate("biolink:treats",
//	    WithDomain("biolink:ChemicalEntity"),
//	    WithRangeClass("biolink:Disease"),
//	    WithInverse("biolink:treated_by"))
package vocab
