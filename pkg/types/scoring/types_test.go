package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Frequency
	}{
		{"Daily", FrequencyDaily},
		{"daily", FrequencyDaily},
		{" WEEKLY ", FrequencyWeekly},
		{"rare", FrequencyRare},
	}
	for _, tc := range cases {
		got, err := ParseFrequency(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseFrequency_Rejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "Hourly", "Monthly", "1.5"} {
		_, err := ParseFrequency(in)
		require.Error(t, err, in)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFrequency))
	}
}

func TestFrequency_Factor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.5, FrequencyDaily.Factor())
	assert.Equal(t, 1.0, FrequencyWeekly.Factor())
	assert.Equal(t, 0.5, FrequencyRare.Factor())
	assert.False(t, Frequency("Hourly").Valid())
}

func TestGradeFor_Thresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score   int
		grade   Grade
		meaning string
	}{
		{100, GradeA, MeaningExcellent},
		{90, GradeA, MeaningExcellent},
		{89, GradeB, MeaningGood},
		{75, GradeB, MeaningGood},
		{74, GradeC, MeaningAcceptable},
		{60, GradeC, MeaningAcceptable},
		{59, GradeD, MeaningPoor},
		{40, GradeD, MeaningPoor},
		{39, GradeF, MeaningAvoid},
		{0, GradeF, MeaningAvoid},
	}
	for _, tc := range cases {
		g, m := GradeFor(tc.score)
		assert.Equal(t, tc.grade, g, "score %d", tc.score)
		assert.Equal(t, tc.meaning, m, "score %d", tc.score)
	}
}

func TestGrade_Valid(t *testing.T) {
	for _, g := range []Grade{GradeA, GradeB, GradeC, GradeD, GradeF} {
		assert.True(t, g.Valid(), g)
	}
	assert.False(t, Grade("E").Valid())
	assert.False(t, Grade("a").Valid())
}

func TestMatchedRisk_Tags(t *testing.T) {
	t.Parallel()

	r := MatchedRisk{Tags: []string{"fat", "saturated"}}
	assert.True(t, r.HasTag("fat"))
	assert.False(t, r.HasTag("sugar"))
	assert.True(t, r.HasAnyTag("trans", "saturated"))
	assert.False(t, r.HasAnyTag())
}

func TestScoreResult_AutoFailed(t *testing.T) {
	t.Parallel()

	r := &ScoreResult{Risks: []MatchedRisk{{Tier: "High"}, {Tier: TierAutoFail}}}
	assert.True(t, r.AutoFailed())
	assert.False(t, (&ScoreResult{}).AutoFailed())
}

//Personal.AI order the ending
