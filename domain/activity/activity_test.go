package activity

import (
	"testing"

	"goimpact/domain/core"
	"goimpact/domain/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeAnswers() survey.ActivityAnswers {
	// 3 gym sessions/week × 60 minutes at moderate intensity = 180
	return survey.ActivityAnswers{Gym: survey.Session{FrequencyCode: 4, Minutes: 60, Intensity: survey.IntensityModerate}}
}

func respondent(m core.Market, seg core.Segment, g core.Gender, w float64, active bool) survey.Respondent {
	r := survey.Respondent{Market: m, Segment: seg, Gender: g, HasGender: true, Weight: w}
	if active {
		r.Activity = activeAnswers()
	}
	return r
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name    string
		answers survey.ActivityAnswers
		total   float64
		active  bool
	}{
		{"moderate gym", activeAnswers(), 180, true},
		{"vigorous doubles", survey.ActivityAnswers{
			Sports: survey.Session{FrequencyCode: 3, Minutes: 40, Intensity: survey.IntensityHigh},
		}, 160, true},
		{"low intensity ignored", survey.ActivityAnswers{
			Gym: survey.Session{FrequencyCode: 9, Minutes: 60, Intensity: survey.IntensityLow},
		}, 0, false},
		{"short walks dropped", survey.ActivityAnswers{
			Walking: survey.Session{FrequencyCode: 9, Minutes: 9, Intensity: survey.IntensityModerate},
		}, 0, false},
		{"less than weekly", survey.ActivityAnswers{
			Walking: survey.Session{FrequencyCode: 1, Minutes: 300, Intensity: survey.IntensityModerate},
		}, 150, true},
		{"unknown frequency", survey.ActivityAnswers{
			Gym: survey.Session{FrequencyCode: 12, Minutes: 60, Intensity: survey.IntensityHigh},
		}, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := Classify(tc.answers)
			assert.InDelta(t, tc.total, b.TotalMinutes, 1e-9)
			assert.Equal(t, tc.active, b.Active)
		})
	}
}

func TestSummarize(t *testing.T) {
	rs := []survey.Respondent{
		respondent(core.MarketAustralia, core.SegmentCustomer, core.GenderFemale, 3, true),
		respondent(core.MarketAustralia, core.SegmentCustomer, core.GenderFemale, 1, false),
		respondent(core.MarketAustralia, core.SegmentNonCustomer, core.GenderFemale, 1, true),
		respondent(core.MarketAustralia, core.SegmentNonCustomer, core.GenderFemale, 3, false),
		// male customers only: dropped by the inner join
		respondent(core.MarketAustralia, core.SegmentCustomer, core.GenderMale, 2, true),
	}

	out := Summarize(rs, core.DimensionGender)
	require.Len(t, out, 1)
	s := out[0]
	require.NoError(t, s.Err)
	assert.Equal(t, "Female", s.Group.Value)
	assert.InDelta(t, 0.75, s.ActiveCustomers, 1e-12)
	assert.InDelta(t, 0.25, s.ActiveNonCustomers, 1e-12)
	assert.InDelta(t, 0.5, s.Change, 1e-12)
	assert.InDelta(t, 8.0, s.TotalWeight, 1e-12)
	assert.InDelta(t, 0.5, s.NonCustomerShare, 1e-12)
}

func TestSummarize_ZeroWeightGroupIsFlagged(t *testing.T) {
	rs := []survey.Respondent{
		respondent(core.MarketCanada, core.SegmentCustomer, core.GenderMale, 0, true),
		respondent(core.MarketCanada, core.SegmentNonCustomer, core.GenderMale, 1, false),
	}
	out := Summarize(rs, core.DimensionGender)
	require.Len(t, out, 1)
	assert.True(t, core.IsDivisionByZero(out[0].Err))
}

func TestChangeLookup_MarketFallback(t *testing.T) {
	young := core.GroupKey{Market: core.MarketJapan, Dimension: core.DimensionAge, Value: core.AgeYoungAdult.Label()}
	old := core.GroupKey{Market: core.MarketJapan, Dimension: core.DimensionAge, Value: core.AgeOlderAdult.Label()}
	l := NewChangeLookup([]Summary{{Group: young, Change: 0.2}})

	c, fellBack, err := l.Change(young)
	require.NoError(t, err)
	assert.False(t, fellBack)
	assert.Equal(t, 0.2, c)

	c, fellBack, err = l.Change(old)
	require.NoError(t, err)
	assert.True(t, fellBack)
	assert.Equal(t, 0.2, c)

	_, _, err = l.Change(core.GroupKey{Market: core.MarketSpain, Dimension: core.DimensionAge, Value: "x"})
	assert.True(t, core.IsMissingReferenceData(err))
}

func TestSummarizeSpending(t *testing.T) {
	mk := func(g core.Gender, spend, w float64) survey.Respondent {
		return survey.Respondent{
			Market: core.MarketJapan, Segment: core.SegmentCustomer, Gender: g, HasGender: true,
			Weight: w, Spend: spend, HasSpend: true,
		}
	}
	rs := []survey.Respondent{
		mk(core.GenderFemale, 10, 2),
		mk(core.GenderFemale, 20, 1),
		mk(core.GenderFemale, 30, 1),
		mk(core.GenderOther, 999, 5),
	}

	out := SummarizeSpending(rs, core.DimensionGender, map[core.Market]float64{core.MarketJapan: 0.5})
	require.Len(t, out, 1)
	s := out[0]
	require.NoError(t, s.Err)
	assert.Equal(t, 15.0, s.MedianLocal)
	assert.Equal(t, 7.5, s.MedianUSD)
	assert.InDelta(t, 17.5, s.AverageLocal, 1e-12)
	assert.InDelta(t, 8.75, s.AverageUSD, 1e-12)
	assert.Equal(t, 4.0, s.WeightedTotal)
}

func TestSummarizeSpending_MissingRate(t *testing.T) {
	rs := []survey.Respondent{{
		Market: core.MarketSpain, Segment: core.SegmentCustomer, Gender: core.GenderMale, HasGender: true,
		Weight: 1, Spend: 5, HasSpend: true,
	}}
	out := SummarizeSpending(rs, core.DimensionGender, nil)
	require.Len(t, out, 1)
	assert.True(t, core.IsMissingReferenceData(out[0].Err))
	assert.Equal(t, 5.0, out[0].MedianLocal)
}
