package engine

import (
	"strings"
	"unicode"
)

// ExpandAlias replaces the line's first whitespace-delimited word when it
// matches an alias key. Expansion applies once; aliases do not compose.
// The second return reports whether a replacement happened.
func ExpandAlias(line string, aliases map[string]string) (string, bool) {
	if len(aliases) == 0 {
		return line, false
	}

	trimmed := strings.TrimLeft(line, " \t")
	end := strings.IndexFunc(trimmed, unicode.IsSpace)
	if end == -1 {
		end = len(trimmed)
	}
	first := trimmed[:end]

	replacement, ok := aliases[first]
	if !ok {
		return line, false
	}
	return replacement + trimmed[end:], true
}

// ExpandValue applies tilde and environment-variable expansion to a value
// outside of command parsing, e.g. `[export]` entries from the config file.
func ExpandValue(value string) string {
	rs := []rune(value)
	var b strings.Builder
	i := 0
	for i < len(rs) {
		if rs[i] == '$' {
			expanded, next := expandDollar(rs, i)
			b.WriteString(expanded)
			i = next
			continue
		}
		b.WriteRune(rs[i])
		i++
	}
	return expandTilde(b.String())
}
