package scoring

import (
	"regexp"
	"strings"

	"github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// codePattern finds a hazard code such as "e330", "e-330" or "e 330" in
// normalised text.  Only the first occurrence in a token is considered.
var codePattern = regexp.MustCompile(`e[\s-]?(\d+)`)

// ---------------------------------------------------------------------------
// Compiled catalog
// ---------------------------------------------------------------------------

// matcherEntry is a catalog entry with its synonyms normalised once at
// engine construction.
type matcherEntry struct {
	entry    *catalog.Entry
	names    []string
	strategy catalog.MatchStrategy
}

type matcher struct {
	entries []matcherEntry
}

func newMatcher(cat *catalog.Catalog) *matcher {
	m := &matcher{entries: make([]matcherEntry, cat.Len())}
	for i := range m.entries {
		e := cat.Entry(i)
		names := make([]string, 0, len(e.Names))
		for _, n := range e.Names {
			// An empty synonym would be contained in every token.
			if norm := Normalize(n); norm != "" {
				names = append(names, norm)
			}
		}
		m.entries[i] = matcherEntry{entry: e, names: names, strategy: e.Strategy()}
	}
	return m
}

// matches reports whether token satisfies the entry's code or name test.
func (me *matcherEntry) matches(token *scoring.IngredientToken) bool {
	if me.entry.ENumber != "" {
		if m := codePattern.FindStringSubmatch(token.Normalized); m != nil {
			if strings.Contains(me.entry.ENumber, "E"+m[1]) {
				return true
			}
		}
	}
	for _, name := range me.names {
		switch me.strategy {
		case catalog.MatchExact:
			if token.Normalized == name {
				return true
			}
		case catalog.MatchContains, catalog.MatchExactOrContains:
			if strings.Contains(token.Normalized, name) {
				return true
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Matching
// ---------------------------------------------------------------------------

// matchSet is the outcome of matching one scan.
type matchSet struct {
	risks     []scoring.MatchedRisk
	breakdown map[string]int
	autoFail  bool
}

// match tests every token against every entry not yet consumed in this scan.
// The consumed set is local so that the matcher itself stays read-only and
// can serve concurrent scans.
func (m *matcher) match(tokens []scoring.IngredientToken) matchSet {
	out := matchSet{breakdown: make(map[string]int)}
	consumed := make([]bool, len(m.entries))

	for t := range tokens {
		token := &tokens[t]
		for i := range m.entries {
			if consumed[i] {
				continue
			}
			me := &m.entries[i]
			if !me.matches(token) {
				continue
			}
			consumed[i] = true
			if me.entry.Tier.IsAutoFail() {
				out.autoFail = true
			}
			out.risks = append(out.risks, newRisk(me.entry, token))
			out.breakdown[me.entry.Category]++
		}
	}
	return out
}

func newRisk(e *catalog.Entry, token *scoring.IngredientToken) scoring.MatchedRisk {
	var percent *float64
	if token.Percent != nil {
		v := *token.Percent
		percent = &v
	}
	return scoring.MatchedRisk{
		Name:            e.PrimaryName(),
		Match:           token.Raw,
		Tier:            string(e.Tier),
		Penalty:         e.Penalty,
		WeightedPenalty: Weight(e, token),
		Category:        e.Category,
		Notes:           e.Notes,
		ENumber:         e.ENumber,
		Tags:            append([]string(nil), e.Tags...),
		Evidence: scoring.Evidence{
			Token:    token.Raw,
			Position: token.Rank,
			Percent:  percent,
			IsTop3:   token.Rank <= 3,
		},
	}
}

//Personal.AI order the ending
