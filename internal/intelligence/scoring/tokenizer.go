package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

var (
	// first declared concentration anywhere in a segment
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	// an inner item that is only a concentration, e.g. "(12%)"
	barePercentPattern = regexp.MustCompile(`^\d+(\.\d+)?%$`)
)

// ---------------------------------------------------------------------------
// Tokenizer
// ---------------------------------------------------------------------------

// Tokenize splits an ingredient declaration into ranked tokens.
//
// Segments are separated by commas outside parentheses.  Blank segments are
// skipped and do not consume a rank.  Items listed inside the first
// balanced parenthesised group of a segment are emitted right after their
// parent with the parent's rank and no declared percent; items that are only
// a concentration are dropped.  Nested groups stay inside their item.
func Tokenize(text string) []scoring.IngredientToken {
	segments := splitTopLevel(text)
	tokens := make([]scoring.IngredientToken, 0, len(segments))

	rank := 0
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		rank++
		parent := newToken(seg, rank)
		tokens = append(tokens, parent)
		tokens = append(tokens, subTokens(seg, rank)...)
	}
	return tokens
}

// splitTopLevel splits on commas at parenthesis depth zero.  Depth is a plain
// counter, so an unmatched ")" drives it negative and the commas that follow
// are treated as nested until it recovers.
func splitTopLevel(text string) []string {
	var (
		segments []string
		current  strings.Builder
		depth    int
	)
	for _, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if r == ',' && depth == 0 {
			segments = append(segments, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	return append(segments, current.String())
}

func newToken(raw string, rank int) scoring.IngredientToken {
	return scoring.IngredientToken{
		Raw:        strings.TrimSpace(raw),
		Normalized: Normalize(raw),
		Rank:       rank,
		Percent:    declaredPercent(raw),
	}
}

// firstGroup returns the content of the first balanced parenthesised group
// in raw.  An opening parenthesis that is never closed is skipped.
func firstGroup(raw string) (string, bool) {
	for start := strings.IndexByte(raw, '('); start >= 0; {
		depth := 0
		for i := start; i < len(raw); i++ {
			switch raw[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				return raw[start+1 : i], true
			}
		}
		next := strings.IndexByte(raw[start+1:], '(')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func subTokens(raw string, rank int) []scoring.IngredientToken {
	inner, ok := firstGroup(raw)
	if !ok {
		return nil
	}
	var out []scoring.IngredientToken
	for _, item := range splitTopLevel(inner) {
		item = strings.TrimSpace(item)
		if item == "" || barePercentPattern.MatchString(item) {
			continue
		}
		out = append(out, scoring.IngredientToken{
			Raw:        item,
			Normalized: Normalize(item),
			Rank:       rank,
		})
	}
	return out
}

func declaredPercent(raw string) *float64 {
	m := percentPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

//Personal.AI order the ending
