package scoring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

func newDefaultEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(catalog.Default(), opts...)
	require.NoError(t, err)
	return e
}

func TestNewEngine_NilCatalog(t *testing.T) {
	_, err := NewEngine(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEngineNotReady))
}

func TestEvaluate_Scenarios(t *testing.T) {
	t.Parallel()
	engine := newDefaultEngine(t)

	cases := []struct {
		name  string
		text  string
		freq  scoring.Frequency
		score int
		grade scoring.Grade
	}{
		{"clean", "Water, Apples, Spinach", scoring.FrequencyWeekly, 100, scoring.GradeA},
		{"sugar first daily", "Sugar, Water, Apples", scoring.FrequencyDaily, 76, scoring.GradeB},
		{"sugar fourth daily", "Water, Apples, Spinach, Sugar", scoring.FrequencyDaily, 82, scoring.GradeB},
		{"sugar 15 percent", "Water, Sugar (15%), Apples", scoring.FrequencyWeekly, 76, scoring.GradeB},
		{"sugar 1 percent", "Water, Sugar (1%), Apples", scoring.FrequencyWeekly, 87, scoring.GradeB},
		{"upf stack of three", "Water, Emulsifier, Flavouring, Stabiliser", scoring.FrequencyWeekly, 81, scoring.GradeB},
		{"upf stack of five", "Emulsifier, Flavouring, Stabiliser, Thickener, Carrageenan", scoring.FrequencyWeekly, 69, scoring.GradeC},
		{"triad in main ingredients", "Palm Oil, Sugar, Wheat Flour", scoring.FrequencyWeekly, 54, scoring.GradeD},
		{"triad further down", "Water, Apples, Spinach, Beans, Oats, Peas, Palm Oil, Sugar, Wheat Flour", scoring.FrequencyWeekly, 72, scoring.GradeC},
		{"saturated oils", "Palm Oil, Sunflower Oil, Canola Oil", scoring.FrequencyWeekly, 77, scoring.GradeB},
		{"seed oils", "Sunflower Oil, Canola Oil", scoring.FrequencyWeekly, 91, scoring.GradeA},
		{"empty", "", scoring.FrequencyDaily, 100, scoring.GradeA},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := engine.Evaluate(tc.text, tc.freq)
			require.NoError(t, err)
			assert.Equal(t, tc.score, res.Score)
			assert.Equal(t, tc.grade, res.Grade)
			_, meaning := scoring.GradeFor(tc.score)
			assert.Equal(t, meaning, res.Meaning)
		})
	}
}

func TestEvaluate_EmptyResultShape(t *testing.T) {
	t.Parallel()
	res, err := newDefaultEngine(t).Evaluate(" , ,", scoring.FrequencyWeekly)
	require.NoError(t, err)
	assert.NotNil(t, res.Risks)
	assert.Empty(t, res.Risks)
	assert.NotNil(t, res.RulePenalties)
	assert.Empty(t, res.RulePenalties)
	assert.Empty(t, res.CategoryBreakdown)
	assert.Equal(t, "Excellent", res.Meaning)
}

func TestEvaluate_RiskDetails(t *testing.T) {
	t.Parallel()
	res, err := newDefaultEngine(t).Evaluate("Water, Sugar (15%), Apples", scoring.FrequencyWeekly)
	require.NoError(t, err)
	require.Len(t, res.Risks, 1)

	r := res.Risks[0]
	assert.Equal(t, "sugar", r.Name)
	assert.Equal(t, "Sugar (15%)", r.Match)
	assert.Equal(t, "Medium Concern", r.Tier)
	assert.Equal(t, -8.0, r.Penalty)
	assert.InDelta(t, -24.0, r.WeightedPenalty, 1e-9)
	assert.Equal(t, "Added Sugars", r.Category)
	assert.Equal(t, 2, r.Evidence.Position)
	assert.True(t, r.Evidence.IsTop3)
	require.NotNil(t, r.Evidence.Percent)
	assert.Equal(t, 15.0, *r.Evidence.Percent)
	assert.Equal(t, map[string]int{"Added Sugars": 1}, res.CategoryBreakdown)
}

func TestEvaluate_RulePenalties(t *testing.T) {
	t.Parallel()
	engine := newDefaultEngine(t)

	res, err := engine.Evaluate("Palm Oil, Sugar, Wheat Flour", scoring.FrequencyWeekly)
	require.NoError(t, err)
	require.Len(t, res.RulePenalties, 1)
	assert.Equal(t, scoring.RulePenalty{
		Rule:        "Hyper-Palatable Triad",
		Penalty:     -15,
		Explanation: "Combination of fat, sugar, and refined carbs in main ingredients.",
	}, res.RulePenalties[0])

	// Largest hit first.
	require.Len(t, res.Risks, 3)
	assert.Equal(t, "sugar", res.Risks[0].Name)
	assert.Equal(t, "palm oil", res.Risks[1].Name)
	assert.Equal(t, "wheat flour", res.Risks[2].Name)

	res, err = engine.Evaluate("Palm Oil, Sunflower Oil, Canola Oil", scoring.FrequencyWeekly)
	require.NoError(t, err)
	require.Len(t, res.RulePenalties, 1)
	assert.Equal(t, "Multiple Oil Sources", res.RulePenalties[0].Rule)
	assert.Equal(t, -10.0, res.RulePenalties[0].Penalty)
	assert.Equal(t, "Contains 3 different fat/oil sources (including saturated/trans).", res.RulePenalties[0].Explanation)
	assert.Equal(t, map[string]int{"Fats & Oils": 3}, res.CategoryBreakdown)
}

func TestEvaluate_AutoFail(t *testing.T) {
	t.Parallel()
	res, err := newDefaultEngine(t).Evaluate(
		"Sugar, Partially Hydrogenated Vegetable Oil, Salt, Emulsifier, Flavouring, Stabiliser",
		scoring.FrequencyRare)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, scoring.GradeF, res.Grade)
	assert.Equal(t, "Avoid", res.Meaning)
	assert.NotNil(t, res.RulePenalties)
	assert.Empty(t, res.RulePenalties, "rules are not evaluated after an auto-fail match")
	assert.True(t, res.AutoFailed())

	for i := 1; i < len(res.Risks); i++ {
		assert.GreaterOrEqual(t, res.Risks[i-1].Penalty, res.Risks[i].Penalty)
	}
	last := res.Risks[len(res.Risks)-1]
	assert.Equal(t, "partially hydrogenated oil", last.Name)
	assert.Equal(t, 1, res.CategoryBreakdown["Trans Fats"])
	assert.Equal(t, 3, res.CategoryBreakdown["Ultra-Processed Food Markers"])
}

func TestEvaluate_AutoFailByCode(t *testing.T) {
	t.Parallel()
	res, err := newDefaultEngine(t).Evaluate("Flour, Flour Improver (E-924)", scoring.FrequencyRare)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.True(t, res.AutoFailed())
}

func TestEvaluate_HazardCodes(t *testing.T) {
	t.Parallel()
	engine := newDefaultEngine(t)

	cases := []struct {
		text string
		want string
	}{
		{"Water, E102", "tartrazine"},
		{"Water, Colour (E 129)", "allura red"},
		{"Water, e-621", "monosodium glutamate"},
		{"Water, Colour: E150d", "caramel colour"},
	}
	for _, tc := range cases {
		res, err := engine.Evaluate(tc.text, scoring.FrequencyWeekly)
		require.NoError(t, err)
		require.Len(t, res.Risks, 1, tc.text)
		assert.Equal(t, tc.want, res.Risks[0].Name, tc.text)
	}

	res, err := engine.Evaluate("Water, Acid (E330)", scoring.FrequencyWeekly)
	require.NoError(t, err)
	assert.Empty(t, res.Risks, "codes outside the catalog do not match")
}

func TestEvaluate_Deduplication(t *testing.T) {
	t.Parallel()
	res, err := newDefaultEngine(t).Evaluate("Cane Sugar, Water, Sugar, Brown Sugar", scoring.FrequencyWeekly)
	require.NoError(t, err)
	require.Len(t, res.Risks, 1)
	assert.Equal(t, 1, res.Risks[0].Evidence.Position, "the first matching token wins")
	assert.Equal(t, map[string]int{"Added Sugars": 1}, res.CategoryBreakdown)
}

func TestEvaluate_OneTokenManyEntries(t *testing.T) {
	t.Parallel()
	res, err := newDefaultEngine(t).Evaluate("Vegetable Oil (Palm Oil), Water", scoring.FrequencyWeekly)
	require.NoError(t, err)
	require.Len(t, res.Risks, 2)
	names := []string{res.Risks[0].Name, res.Risks[1].Name}
	assert.ElementsMatch(t, []string{"palm oil", "vegetable oil"}, names)
	for _, r := range res.Risks {
		assert.Equal(t, "Vegetable Oil (Palm Oil)", r.Match)
	}
	require.Len(t, res.RulePenalties, 1)
	assert.Equal(t, "Multiple Oil Sources", res.RulePenalties[0].Rule)
}

func TestEvaluate_ExactStrategy(t *testing.T) {
	t.Parallel()
	cat := catalog.New("t", []catalog.Entry{
		{Names: []string{"oil"}, Tier: catalog.TierLow, Penalty: -5, Category: "Oils", MatchType: catalog.MatchExact},
		{Names: []string{"", "  "}, Tier: catalog.TierLow, Penalty: -5, Category: "Dead"},
	})
	engine, err := NewEngine(cat)
	require.NoError(t, err)

	res, err := engine.Evaluate("Palm Oil, Water", scoring.FrequencyWeekly)
	require.NoError(t, err)
	assert.Empty(t, res.Risks, "exact does not match substrings and blank synonyms never match")

	res, err = engine.Evaluate("Water, OIL.", scoring.FrequencyWeekly)
	require.NoError(t, err)
	require.Len(t, res.Risks, 1)
	assert.Equal(t, 95, res.Score)
}

func TestEvaluate_ZeroMultiplierBucket(t *testing.T) {
	t.Parallel()
	cat := catalog.New("t", []catalog.Entry{
		{
			Names: []string{"x"}, Tier: catalog.TierLow, Penalty: -10, Category: "C",
			PositionMultiplier: &catalog.PositionMultiplier{Top3: catalog.Factor(0)},
		},
	})
	require.False(t, catalog.HasErrors(cat.Validate()))
	engine, err := NewEngine(cat)
	require.NoError(t, err)

	res, err := engine.Evaluate("x", scoring.FrequencyWeekly)
	require.NoError(t, err)
	require.Len(t, res.Risks, 1)
	assert.Equal(t, 100, res.Score, "an explicit zero factor cancels the penalty")

	res, err = engine.Evaluate("a, b, c, d, e, f, x", scoring.FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, 90, res.Score, "unset buckets stay at 1")
}

func TestEvaluate_InvalidFrequency(t *testing.T) {
	t.Parallel()
	engine := newDefaultEngine(t)

	res, err := engine.Evaluate("Sugar", scoring.Frequency("Hourly"))
	assert.Nil(t, res)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFrequency))

	res, err = engine.EvaluateLabel("Sugar", "sometimes")
	assert.Nil(t, res)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFrequency))

	res, err = engine.EvaluateLabel("Sugar, Water", " daily ")
	require.NoError(t, err)
	assert.Equal(t, 76, res.Score)
}

func TestEvaluate_FrequencyMonotonic(t *testing.T) {
	t.Parallel()
	engine := newDefaultEngine(t)

	texts := []string{
		"Sugar, Water",
		"Palm Oil, Sugar, Wheat Flour, Salt",
		"Water, Emulsifier, Flavouring, Stabiliser, Tartrazine",
	}
	for _, text := range texts {
		daily, err := engine.Evaluate(text, scoring.FrequencyDaily)
		require.NoError(t, err)
		weekly, err := engine.Evaluate(text, scoring.FrequencyWeekly)
		require.NoError(t, err)
		rare, err := engine.Evaluate(text, scoring.FrequencyRare)
		require.NoError(t, err)

		assert.LessOrEqual(t, daily.Score, weekly.Score, text)
		assert.LessOrEqual(t, weekly.Score, rare.Score, text)
		assert.Less(t, daily.Score, rare.Score, text)
	}
}

func TestEvaluate_Clamped(t *testing.T) {
	t.Parallel()
	res, err := newDefaultEngine(t).Evaluate(
		"High Fructose Corn Syrup, Sugar, Palm Oil, Hydrogenated Oil, Maltodextrin, Wheat Flour, "+
			"Aspartame, Tartrazine, Allura Red, Sunset Yellow, Sodium Nitrite, Carrageenan",
		scoring.FrequencyDaily)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, scoring.GradeF, res.Grade)
	assert.False(t, res.AutoFailed())
	assert.NotEmpty(t, res.RulePenalties)
}

func TestEvaluate_CustomRules(t *testing.T) {
	t.Parallel()
	engine := newDefaultEngine(t, WithRules())
	res, err := engine.Evaluate("Palm Oil, Sugar, Wheat Flour", scoring.FrequencyWeekly)
	require.NoError(t, err)
	assert.Empty(t, res.RulePenalties)
	assert.Equal(t, 69, res.Score)
}

func TestEvaluate_DeterministicAndConcurrent(t *testing.T) {
	t.Parallel()
	engine := newDefaultEngine(t)
	const text = "Wheat Flour, Sugar, Palm Oil (12%), Emulsifier (Soy Lecithin, E471), Salt, Flavouring"

	want, err := engine.Evaluate(text, scoring.FrequencyDaily)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*scoring.ScoreResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = engine.Evaluate(text, scoring.FrequencyDaily)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

//Personal.AI order the ending
