package scoring

import (
	"fmt"

	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// Tags read by the stacking rules.
const (
	TagUPF         = "upf"
	TagFat         = "fat"
	TagSaturated   = "saturated"
	TagTrans       = "trans"
	TagSugar       = "sugar"
	TagSweetener   = "sweetener"
	TagRefinedCarb = "refined_carb"
)

// CategoryUPF is the category that counts towards the UPF stack even when an
// entry carries no upf tag.
const CategoryUPF = "Ultra-Processed Food Markers"

// Rule detects a compound pattern across the matched risks of one scan.  A
// rule fires at most once per scan.
type Rule interface {
	Name() string
	Apply(risks []scoring.MatchedRisk) (scoring.RulePenalty, bool)
}

// DefaultRules returns the stacking rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{UPFStackRule{}, TriadRule{}, MultipleOilsRule{}}
}

// ---------------------------------------------------------------------------
// UPF stack
// ---------------------------------------------------------------------------

// UPFStackRule penalises a pile-up of ultra-processed markers.
type UPFStackRule struct{}

func (UPFStackRule) Name() string { return "UPF Stack" }

func (UPFStackRule) Apply(risks []scoring.MatchedRisk) (scoring.RulePenalty, bool) {
	n := 0
	for _, r := range risks {
		if r.HasTag(TagUPF) || r.Category == CategoryUPF {
			n++
		}
	}
	switch {
	case n >= 5:
		return scoring.RulePenalty{
			Rule:        "UPF Stack (5+)",
			Penalty:     -15,
			Explanation: "High number of ultra-processed markers detected.",
		}, true
	case n >= 3:
		return scoring.RulePenalty{
			Rule:        "UPF Stack (3+)",
			Penalty:     -10,
			Explanation: "Multiple ultra-processed markers detected.",
		}, true
	}
	return scoring.RulePenalty{}, false
}

// ---------------------------------------------------------------------------
// Hyper-palatable triad
// ---------------------------------------------------------------------------

// TriadRule fires when fat, sugar (or sweetener) and refined carbohydrate
// co-occur.  It weighs more when at least two contributors are top-3
// ingredients.
type TriadRule struct{}

func (TriadRule) Name() string { return "Hyper-Palatable Triad" }

func (r TriadRule) Apply(risks []scoring.MatchedRisk) (scoring.RulePenalty, bool) {
	var hasFat, hasSugar, hasCarb bool
	top3 := 0
	for _, risk := range risks {
		fat := risk.HasTag(TagFat)
		sugar := risk.HasAnyTag(TagSugar, TagSweetener)
		carb := risk.HasTag(TagRefinedCarb)
		hasFat = hasFat || fat
		hasSugar = hasSugar || sugar
		hasCarb = hasCarb || carb
		if (fat || sugar || carb) && risk.Evidence.IsTop3 {
			top3++
		}
	}
	if !hasFat || !hasSugar || !hasCarb {
		return scoring.RulePenalty{}, false
	}
	if top3 >= 2 {
		return scoring.RulePenalty{
			Rule:        r.Name(),
			Penalty:     -15,
			Explanation: "Combination of fat, sugar, and refined carbs in main ingredients.",
		}, true
	}
	return scoring.RulePenalty{
		Rule:        r.Name(),
		Penalty:     -10,
		Explanation: "Combination of fat, sugar, and refined carbs.",
	}, true
}

// ---------------------------------------------------------------------------
// Multiple oil sources
// ---------------------------------------------------------------------------

// MultipleOilsRule fires when two or more distinct fat entries match.
type MultipleOilsRule struct{}

func (MultipleOilsRule) Name() string { return "Multiple Oil Sources" }

func (r MultipleOilsRule) Apply(risks []scoring.MatchedRisk) (scoring.RulePenalty, bool) {
	fats := 0
	hardened := false
	for _, risk := range risks {
		if !risk.HasTag(TagFat) {
			continue
		}
		fats++
		if risk.HasAnyTag(TagSaturated, TagTrans) {
			hardened = true
		}
	}
	if fats < 2 {
		return scoring.RulePenalty{}, false
	}
	penalty := -5.0
	suffix := ""
	if hardened {
		penalty -= 5
		suffix = " (including saturated/trans)"
	}
	return scoring.RulePenalty{
		Rule:        r.Name(),
		Penalty:     penalty,
		Explanation: fmt.Sprintf("Contains %d different fat/oil sources%s.", fats, suffix),
	}, true
}

// applyRules runs every rule over the risks and collects the penalties that
// fired, in rule order.
func applyRules(rules []Rule, risks []scoring.MatchedRisk) []scoring.RulePenalty {
	out := make([]scoring.RulePenalty, 0, len(rules))
	for _, rule := range rules {
		if p, ok := rule.Apply(risks); ok {
			out = append(out, p)
		}
	}
	return out
}

//Personal.AI order the ending
