package scoring

import (
	"strings"
	"unicode"
)

// Normalize folds an ingredient string into the canonical form used for
// matching: lower case, only ASCII letters, digits, whitespace and hyphens
// kept, whitespace runs collapsed to one space, ends trimmed.  Normalize is
// idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

//Personal.AI order the ending
