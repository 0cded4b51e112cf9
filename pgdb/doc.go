// Package pgdb is the Source/Sink pair that exchanges records with a
// remote labeled-property-graph database over its native binary protocol
// (spec §4.3.9, §4.4 "DB Sink", §6.2).
//
// The connection wrapper follows the teacher's natsclient connection
// lifecycle: an explicit Connect/Close, a Status() queryable from another
// goroutine, and retry-with-backoff (via pkg/retry) around the initial
// handshake instead of a free-running reconnect loop, since a labeled-
// property-graph driver already reconnects transparently beneath
// individual session calls.
package pgdb
