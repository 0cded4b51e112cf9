// Package delimited implements the `|`-delimited, backquote-escaped
// multivalued column convention the tabular Source and Sink share (spec
// §4.3.1, §4.4).
package delimited

import "strings"

const (
	separator = '|'
	escape    = '`'
)

// Split parses a multivalued column into its elements. A `|` preceded by a
// backquote is treated as a literal character rather than a separator.
func Split(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var cur strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == escape && i+1 < len(runes) && runes[i+1] == separator {
			cur.WriteRune(separator)
			i++
			continue
		}
		if runes[i] == separator {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(runes[i])
	}
	parts = append(parts, cur.String())
	return parts
}

// Join renders values as a single `|`-delimited column, escaping any
// literal `|` in a value with a preceding backquote.
func Join(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = strings.ReplaceAll(v, "|", "`|")
	}
	return strings.Join(escaped, "|")
}
