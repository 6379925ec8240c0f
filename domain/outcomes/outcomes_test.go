package outcomes

import (
	"testing"

	"goimpact/domain/activity"
	"goimpact/domain/core"
	"goimpact/domain/elasticity"
	"goimpact/domain/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var femaleAU = core.GroupKey{Market: core.MarketAustralia, Dimension: core.DimensionGender, Value: "Female"}

func TestBusinessOutcomes(t *testing.T) {
	scenarios := []elasticity.Scenario{
		{ID: "AUS10F", Group: femaleAU, Tier: elasticity.DefaultTiers()[0], NewCustomers: 200},
		{ID: "CAN10F", Group: core.GroupKey{Market: core.MarketCanada, Dimension: core.DimensionGender, Value: "Female"}, NewCustomers: 5},
	}
	spending := []activity.Spending{
		{Group: femaleAU, MedianLocal: 30, MedianUSD: 19.2, AverageLocal: 40, AverageUSD: 25.6},
	}

	out := BusinessOutcomes(scenarios, spending)
	require.Len(t, out, 2)
	require.NoError(t, out[0].Err)
	assert.Equal(t, "10%", out[0].Price)
	assert.InDelta(t, 6000.0, out[0].MedianLocal, 1e-9)
	assert.InDelta(t, 3840.0, out[0].MedianUSD, 1e-9)
	assert.InDelta(t, 8000.0, out[0].AverageLocal, 1e-9)
	assert.InDelta(t, 5120.0, out[0].AverageUSD, 1e-9)
	assert.True(t, core.IsMissingReferenceData(out[1].Err))
}

func respondent(seg core.Segment, gender core.Gender, w, s6, s7 float64) survey.Respondent {
	return survey.Respondent{
		Market: core.MarketAustralia, Segment: seg, Weight: w,
		Gender: gender, HasGender: true,
		LifeSatisfaction: s6, CommunityTrust: s7, HasSocial: true,
	}
}

func TestSocialOutcomes(t *testing.T) {
	rs := []survey.Respondent{
		respondent(core.SegmentCustomer, core.GenderFemale, 1, 8, 6),
		respondent(core.SegmentCustomer, core.GenderFemale, 1, 6, 6),
		respondent(core.SegmentNonCustomer, core.GenderFemale, 2, 5, 3),
		respondent(core.SegmentNonCustomer, core.GenderOther, 2, 1, 1),
	}
	out := SocialOutcomes(rs, core.DimensionGender)
	require.Len(t, out, 1)
	s := out[0]
	require.NoError(t, s.Err)
	assert.Equal(t, femaleAU, s.Group)
	assert.InDelta(t, 7.0, s.LifeSatisfactionCustomer, 1e-12)
	assert.InDelta(t, 5.0, s.LifeSatisfactionNon, 1e-12)
	assert.InDelta(t, 2.0/7.0, s.LifeSatisfactionChange, 1e-12)
	assert.InDelta(t, 0.5, s.CommunityTrustChange, 1e-12)
	assert.InDelta(t, (2.0/7.0+0.5)/2, s.SocialChange, 1e-12)
	assert.InDelta(t, 4.0, s.WeightedTotal, 1e-12)
}

func TestSocialOutcomes_NoCustomers(t *testing.T) {
	rs := []survey.Respondent{respondent(core.SegmentNonCustomer, core.GenderMale, 1, 5, 5)}
	out := SocialOutcomes(rs, core.DimensionGender)
	require.Len(t, out, 1)
	assert.True(t, core.IsDivisionByZero(out[0].Err))
}
