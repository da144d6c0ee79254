package inventory

import (
	"strings"
	"unicode"
)

// NormalizeCode returns the canonical form of an asset code: whitespace and
// hyphens removed, letters upper-cased. "ab-12", " AB 12 " and "AB12" all
// normalize to "AB12".
func NormalizeCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// normalizeCodePtr returns a normalized copy of code. nil and codes that
// normalize to "" both yield nil.
func normalizeCodePtr(code *string) *string {
	if code == nil {
		return nil
	}
	n := NormalizeCode(*code)
	if n == "" {
		return nil
	}
	return &n
}
