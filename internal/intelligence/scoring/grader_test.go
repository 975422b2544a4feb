package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

func TestAggregate(t *testing.T) {
	t.Parallel()

	risks := []scoring.MatchedRisk{{WeightedPenalty: -16}, {WeightedPenalty: -4}}
	rules := []scoring.RulePenalty{{Rule: "UPF Stack (3+)", Penalty: -10}}

	cases := []struct {
		name  string
		risks []scoring.MatchedRisk
		rules []scoring.RulePenalty
		freq  scoring.Frequency
		want  int
	}{
		{"no penalties", nil, nil, scoring.FrequencyDaily, 100},
		{"weekly", risks, rules, scoring.FrequencyWeekly, 70},
		{"daily scales loss up", risks, rules, scoring.FrequencyDaily, 55},
		{"rare scales loss down", risks, rules, scoring.FrequencyRare, 85},
		{"clamped at zero", []scoring.MatchedRisk{{WeightedPenalty: -120}}, nil, scoring.FrequencyWeekly, 0},
		{"rounds to nearest", []scoring.MatchedRisk{{WeightedPenalty: -12.8}}, nil, scoring.FrequencyWeekly, 87},
		{"rounds half away from zero", []scoring.MatchedRisk{{WeightedPenalty: -2.5}}, nil, scoring.FrequencyWeekly, 98},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Aggregate(tc.risks, tc.rules, tc.freq))
		})
	}
}

func TestSortByWeighted_Stable(t *testing.T) {
	t.Parallel()

	risks := []scoring.MatchedRisk{
		{Name: "salt", WeightedPenalty: -3},
		{Name: "sugar", WeightedPenalty: -16},
		{Name: "palm oil", WeightedPenalty: -3},
	}
	sortByWeighted(risks)
	assert.Equal(t, []string{"sugar", "salt", "palm oil"}, riskNames(risks))
}

func TestSortByBaseDescending(t *testing.T) {
	t.Parallel()

	risks := []scoring.MatchedRisk{
		{Name: "trans fat", Penalty: -100},
		{Name: "sugar", Penalty: -8},
		{Name: "salt", Penalty: -8},
		{Name: "msg", Penalty: -2},
	}
	sortByBaseDescending(risks)
	assert.Equal(t, []string{"msg", "sugar", "salt", "trans fat"}, riskNames(risks))
}

func riskNames(risks []scoring.MatchedRisk) []string {
	names := make([]string, len(risks))
	for i, r := range risks {
		names[i] = r.Name
	}
	return names
}

//Personal.AI order the ending
