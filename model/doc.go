// Package model defines the uniform Node and Edge record types every
// Source produces and every Sink consumes (spec §3), and the Value sum
// type — string, number, bool, list-of-string, list-of-number — that
// every non-core property value belongs to.
package model
