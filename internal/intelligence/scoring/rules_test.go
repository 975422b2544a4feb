package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

func risk(category string, top3 bool, tags ...string) scoring.MatchedRisk {
	return scoring.MatchedRisk{Category: category, Tags: tags, Evidence: scoring.Evidence{IsTop3: top3}}
}

func TestUPFStackRule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		risks   []scoring.MatchedRisk
		fired   bool
		rule    string
		penalty float64
	}{
		{
			name:  "two markers",
			risks: []scoring.MatchedRisk{risk("X", false, TagUPF), risk(CategoryUPF, false)},
		},
		{
			name:    "three markers by tag or category",
			risks:   []scoring.MatchedRisk{risk("X", false, TagUPF), risk(CategoryUPF, false), risk("Y", false, TagUPF)},
			fired:   true,
			rule:    "UPF Stack (3+)",
			penalty: -10,
		},
		{
			name: "five markers",
			risks: []scoring.MatchedRisk{
				risk(CategoryUPF, false), risk(CategoryUPF, false), risk(CategoryUPF, false),
				risk("X", false, TagUPF), risk("Y", false, TagUPF), risk("Z", false),
			},
			fired:   true,
			rule:    "UPF Stack (5+)",
			penalty: -15,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p, ok := UPFStackRule{}.Apply(tc.risks)
			assert.Equal(t, tc.fired, ok)
			if tc.fired {
				assert.Equal(t, tc.rule, p.Rule)
				assert.Equal(t, tc.penalty, p.Penalty)
			}
		})
	}
}

func TestTriadRule(t *testing.T) {
	t.Parallel()

	_, ok := TriadRule{}.Apply([]scoring.MatchedRisk{risk("F", true, TagFat), risk("S", true, TagSugar)})
	assert.False(t, ok, "refined carb missing")

	p, ok := TriadRule{}.Apply([]scoring.MatchedRisk{
		risk("F", true, TagFat), risk("S", false, TagSweetener), risk("C", true, TagRefinedCarb),
	})
	assert.True(t, ok)
	assert.Equal(t, "Hyper-Palatable Triad", p.Rule)
	assert.Equal(t, -15.0, p.Penalty)
	assert.Equal(t, "Combination of fat, sugar, and refined carbs in main ingredients.", p.Explanation)

	p, ok = TriadRule{}.Apply([]scoring.MatchedRisk{
		risk("F", true, TagFat), risk("S", false, TagSugar), risk("C", false, TagRefinedCarb),
		risk("U", true, TagUPF),
	})
	assert.True(t, ok)
	assert.Equal(t, -10.0, p.Penalty)
	assert.Equal(t, "Combination of fat, sugar, and refined carbs.", p.Explanation)
}

func TestMultipleOilsRule(t *testing.T) {
	t.Parallel()

	_, ok := MultipleOilsRule{}.Apply([]scoring.MatchedRisk{risk("F", false, TagFat, TagSaturated)})
	assert.False(t, ok)

	p, ok := MultipleOilsRule{}.Apply([]scoring.MatchedRisk{risk("F", false, TagFat), risk("F", false, TagFat)})
	assert.True(t, ok)
	assert.Equal(t, -5.0, p.Penalty)
	assert.Equal(t, "Contains 2 different fat/oil sources.", p.Explanation)

	p, ok = MultipleOilsRule{}.Apply([]scoring.MatchedRisk{
		risk("F", false, TagFat), risk("F", false, TagFat, TagTrans), risk("F", false, TagFat),
	})
	assert.True(t, ok)
	assert.Equal(t, -10.0, p.Penalty)
	assert.Equal(t, "Contains 3 different fat/oil sources (including saturated/trans).", p.Explanation)
}

func TestApplyRules_Order(t *testing.T) {
	t.Parallel()

	risks := []scoring.MatchedRisk{
		risk(CategoryUPF, true, TagFat, TagSaturated),
		risk(CategoryUPF, true, TagSugar),
		risk(CategoryUPF, true, TagRefinedCarb, TagFat),
	}
	got := applyRules(DefaultRules(), risks)
	if assert.Len(t, got, 3) {
		assert.Equal(t, "UPF Stack (3+)", got[0].Rule)
		assert.Equal(t, "Hyper-Palatable Triad", got[1].Rule)
		assert.Equal(t, "Multiple Oil Sources", got[2].Rule)
	}
	assert.Empty(t, applyRules(nil, risks))
}

//Personal.AI order the ending
