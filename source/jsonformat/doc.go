// Package jsonformat implements the Source and Sink for the single-file
// JSON Graph form: one JSON document shaped {"nodes": [...], "edges":
// [...]} (spec §4.3.2, §4.4). Both directions stream rather than
// materializing the whole document: the Source reads token-by-token with
// encoding/json.Decoder and the Sink writes one json.Marshal'd record at a
// time, so a multi-gigabyte file does not need to fit in memory.
package jsonformat
