// internal/matching/taxonomy/normalize.go
package taxonomy

import (
	"strings"
	"unicode"
)

// Normalize prepares free text for keyword comparison: every Unicode
// whitespace rune is removed and ASCII letters are lower-cased. Korean
// program titles mix spacing styles ("바이오 헬스" vs "바이오헬스"),
// so comparisons never see raw spacing.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// NormalizeAll normalizes every entry and drops those that become empty.
func NormalizeAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ContainsEither reports bidirectional substring containment between two
// already-normalized strings. Empty strings never match anything.
func ContainsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
