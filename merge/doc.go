// Package merge implements the Clique Merge Resolver (spec §4.7) and
// multi-store Graph Merge (spec §4.8). The resolver is grounded on
// connected-components clustering the way a relationship-clustering
// package groups entities by an arbitrary relation, generalized here to
// cluster specifically by the same-as predicate/property.
package merge
