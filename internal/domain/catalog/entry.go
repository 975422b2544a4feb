package catalog

import (
	"strings"

	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// Tier is the ordered severity classification of an entry.
type Tier string

const (
	TierLow      Tier = "Low Concern"
	TierMedium   Tier = "Medium Concern"
	TierHigh     Tier = "High Concern"
	TierAutoFail Tier = scoring.TierAutoFail
)

var tierRank = map[Tier]int{
	TierLow:      1,
	TierMedium:   2,
	TierHigh:     3,
	TierAutoFail: 4,
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Severity returns the ordinal of t (0 for unknown tiers).
func (t Tier) Severity() int {
	return tierRank[t]
}

// IsAutoFail reports whether t short-circuits scoring.
func (t Tier) IsAutoFail() bool {
	return t == TierAutoFail
}

// MatchStrategy controls how entry synonyms are compared to tokens.
type MatchStrategy string

const (
	MatchExact           MatchStrategy = "exact"
	MatchContains        MatchStrategy = "contains"
	MatchExactOrContains MatchStrategy = "exact_or_contains"
)

// Valid reports whether s is a known strategy.  The empty strategy is valid
// and resolves to MatchExactOrContains.
func (s MatchStrategy) Valid() bool {
	switch s {
	case "", MatchExact, MatchContains, MatchExactOrContains:
		return true
	}
	return false
}

// PositionMultiplier scales a penalty by the rank of the matching token.
// A nil bucket was not configured; an explicit 0 zeroes the penalty.
type PositionMultiplier struct {
	Top3 *float64 `yaml:"top3" json:"top3,omitempty"`
	Top6 *float64 `yaml:"top6" json:"top6,omitempty"`
	Rest *float64 `yaml:"rest" json:"rest,omitempty"`
}

// PercentMultiplier scales a penalty by the declared concentration.
type PercentMultiplier struct {
	GT10   *float64 `yaml:"gt10" json:"gt10,omitempty"`
	From3  *float64 `yaml:"3to10" json:"3to10,omitempty"`
	Below3 *float64 `yaml:"lt3" json:"lt3,omitempty"`
}

// PositionFactors are the resolved per-rank factors of an entry.
type PositionFactors struct {
	Top3, Top6, Rest float64
}

// PercentFactors are the resolved per-concentration factors of an entry.
type PercentFactors struct {
	GT10, From3, Below3 float64
}

// IdentityPosition and IdentityPercent are the factors used when an entry
// omits a multiplier block.
var (
	IdentityPosition = PositionFactors{Top3: 1, Top6: 1, Rest: 1}
	IdentityPercent  = PercentFactors{GT10: 1, From3: 1, Below3: 1}
)

// Factor returns a pointer to v, for building multiplier blocks in code.
func Factor(v float64) *float64 { return &v }

func factorOr1(v *float64) float64 {
	if v == nil {
		return 1
	}
	return *v
}

func copyFactor(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Factor(*v)
}

// Entry is one configured risk definition.
type Entry struct {
	Names              []string            `yaml:"names" json:"names"`
	ENumber            string              `yaml:"e_number" json:"e_number"`
	Tier               Tier                `yaml:"tier" json:"tier"`
	Penalty            float64             `yaml:"penalty" json:"penalty"`
	Category           string              `yaml:"category" json:"category"`
	Notes              string              `yaml:"notes" json:"notes"`
	Tags               []string            `yaml:"tags" json:"tags,omitempty"`
	MatchType          MatchStrategy       `yaml:"match_type" json:"match_type,omitempty"`
	PositionMultiplier *PositionMultiplier `yaml:"position_multiplier" json:"position_multiplier,omitempty"`
	PercentMultiplier  *PercentMultiplier  `yaml:"percent_multiplier" json:"percent_multiplier,omitempty"`
}

// PrimaryName is the first synonym, or the code when no names are configured.
func (e *Entry) PrimaryName() string {
	if len(e.Names) > 0 {
		return e.Names[0]
	}
	return e.ENumber
}

// Strategy returns the effective match strategy.
func (e *Entry) Strategy() MatchStrategy {
	if e.MatchType == "" {
		return MatchExactOrContains
	}
	return e.MatchType
}

// Position returns the effective position factors.  Buckets missing from a
// partially specified block fall back to 1.0.
func (e *Entry) Position() PositionFactors {
	pm := e.PositionMultiplier
	if pm == nil {
		return IdentityPosition
	}
	return PositionFactors{Top3: factorOr1(pm.Top3), Top6: factorOr1(pm.Top6), Rest: factorOr1(pm.Rest)}
}

// Percent returns the effective concentration factors.
func (e *Entry) Percent() PercentFactors {
	pm := e.PercentMultiplier
	if pm == nil {
		return IdentityPercent
	}
	return PercentFactors{GT10: factorOr1(pm.GT10), From3: factorOr1(pm.From3), Below3: factorOr1(pm.Below3)}
}

// HasTag reports whether the entry carries tag.
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// clone deep-copies the slices and multiplier blocks of e so a Catalog never
// shares memory with the caller that built it.
func (e Entry) clone() Entry {
	out := e
	out.Names = append([]string(nil), e.Names...)
	out.Tags = append([]string(nil), e.Tags...)
	out.ENumber = strings.TrimSpace(e.ENumber)
	if pm := e.PositionMultiplier; pm != nil {
		out.PositionMultiplier = &PositionMultiplier{Top3: copyFactor(pm.Top3), Top6: copyFactor(pm.Top6), Rest: copyFactor(pm.Rest)}
	}
	if pm := e.PercentMultiplier; pm != nil {
		out.PercentMultiplier = &PercentMultiplier{GT10: copyFactor(pm.GT10), From3: copyFactor(pm.From3), Below3: copyFactor(pm.Below3)}
	}
	return out
}

//Personal.AI order the ending
