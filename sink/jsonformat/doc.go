// Package jsonformat implements the Sink side of the single-file JSON
// Graph form (spec §4.3.2, §4.4): one document shaped {"nodes": [...],
// "edges": [...]}, written incrementally as records arrive rather than
// assembled in memory and marshaled once.
package jsonformat
