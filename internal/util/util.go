// Package util provides small string helpers shared by the command front end.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// Unquote trims surrounding quotes and unescapes doubled quotes.
func Unquote(s string) string {
	return FixEscapeQuotes(TrimQuotes(s))
}

// SplitArgs splits a script line on whitespace. A double-quoted run is kept as
// one field with its quotes; a doubled quote inside it does not end the run.
func SplitArgs(line string) []string {
	var (
		fields  []string
		b       strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			fields = append(fields, b.String())
			b.Reset()
			started = false
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && quoted && i+1 < len(line) && line[i+1] == '"':
			b.WriteString(`""`)
			i++
		case c == '"':
			quoted = !quoted
			started = true
			b.WriteByte(c)
		case !quoted && (c == ' ' || c == '\t'):
			flush()
		default:
			started = true
			b.WriteByte(c)
		}
	}
	flush()
	return fields
}
