// Package scoring defines the public result types produced by the label scoring
// engine.  They are plain, JSON-serialisable records so that scan history,
// caches and event payloads can store a ScoreResult as an opaque document and
// reproduce it by re-evaluating the stored text.
package scoring

import (
	"strings"

	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Frequency
// ─────────────────────────────────────────────────────────────────────────────

// Frequency is how often the caller consumes the product.
type Frequency string

const (
	FrequencyDaily  Frequency = "Daily"
	FrequencyWeekly Frequency = "Weekly"
	FrequencyRare   Frequency = "Rare"
)

var frequencyFactors = map[Frequency]float64{
	FrequencyDaily:  1.5,
	FrequencyWeekly: 1.0,
	FrequencyRare:   0.5,
}

// Frequencies lists the accepted labels in descending consumption order.
func Frequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyRare}
}

// ParseFrequency maps a label to a Frequency, ignoring case and surrounding
// whitespace.  Any other label is rejected.
func ParseFrequency(label string) (Frequency, error) {
	trimmed := strings.TrimSpace(label)
	for _, f := range Frequencies() {
		if strings.EqualFold(trimmed, string(f)) {
			return f, nil
		}
	}
	return "", errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency %q", label).
		WithDetail("expected one of Daily, Weekly, Rare")
}

// Valid reports whether f is one of the three defined frequencies.
func (f Frequency) Valid() bool {
	_, ok := frequencyFactors[f]
	return ok
}

// Factor is the loss amplification applied for f.  Callers must check Valid first.
func (f Frequency) Factor() float64 {
	return frequencyFactors[f]
}

func (f Frequency) String() string { return string(f) }

// ─────────────────────────────────────────────────────────────────────────────
// Grade
// ─────────────────────────────────────────────────────────────────────────────

// Grade is the letter grade derived from a score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Meaning labels paired with each grade.
const (
	MeaningExcellent  = "Excellent"
	MeaningGood       = "Good"
	MeaningAcceptable = "Acceptable"
	MeaningPoor       = "Poor"
	MeaningAvoid      = "Avoid"
)

// GradeFor maps a score to its grade and meaning.  Lower bounds are inclusive.
func GradeFor(score int) (Grade, string) {
	switch {
	case score >= 90:
		return GradeA, MeaningExcellent
	case score >= 75:
		return GradeB, MeaningGood
	case score >= 60:
		return GradeC, MeaningAcceptable
	case score >= 40:
		return GradeD, MeaningPoor
	default:
		return GradeF, MeaningAvoid
	}
}

// Valid reports whether g is one of the five grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeF:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Tokens, risks and results
// ─────────────────────────────────────────────────────────────────────────────

// IngredientToken is one ingredient declaration segment.
type IngredientToken struct {
	Raw        string   `json:"raw"`
	Normalized string   `json:"normalized"`
	Rank       int      `json:"rank"`
	Percent    *float64 `json:"percent,omitempty"`
}

// Evidence snapshots the token that triggered a match.
type Evidence struct {
	Token    string   `json:"token"`
	Position int      `json:"position"`
	Percent  *float64 `json:"percent,omitempty"`
	IsTop3   bool     `json:"isTop3"`
}

// MatchedRisk is one catalog entry matched during a scan.
type MatchedRisk struct {
	Name            string   `json:"name"`
	Match           string   `json:"match"`
	Tier            string   `json:"tier"`
	Penalty         float64  `json:"penalty"`
	WeightedPenalty float64  `json:"weightedPenalty"`
	Category        string   `json:"category"`
	Notes           string   `json:"notes,omitempty"`
	ENumber         string   `json:"e_number,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Evidence        Evidence `json:"evidence"`
}

// HasTag reports whether the source entry of r carries tag.
func (r MatchedRisk) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether r carries at least one of tags.
func (r MatchedRisk) HasAnyTag(tags ...string) bool {
	for _, tag := range tags {
		if r.HasTag(tag) {
			return true
		}
	}
	return false
}

// RulePenalty is a compound-pattern penalty fired by a stacking rule.
type RulePenalty struct {
	Rule        string  `json:"rule"`
	Penalty     float64 `json:"penalty"`
	Explanation string  `json:"explanation"`
}

// ScoreResult is the final output of one evaluation.
type ScoreResult struct {
	Score             int            `json:"score"`
	Grade             Grade          `json:"grade"`
	Meaning           string         `json:"meaning"`
	Risks             []MatchedRisk  `json:"risks"`
	RulePenalties     []RulePenalty  `json:"rulePenalties"`
	CategoryBreakdown map[string]int `json:"categoryBreakdown"`
}

// TierAutoFail is the severity tier that short-circuits scoring to zero.
const TierAutoFail = "Auto-Fail"

// AutoFailed reports whether the result came from the Auto-Fail short circuit.
func (r *ScoreResult) AutoFailed() bool {
	for _, risk := range r.Risks {
		if risk.Tier == TierAutoFail {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
