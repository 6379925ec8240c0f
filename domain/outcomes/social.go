package outcomes

import (
	"fmt"

	"goimpact/domain/core"
	"goimpact/domain/stats"
	"goimpact/domain/survey"
)

// Social compares life satisfaction and community trust of customers and non-customers.
type Social struct {
	Group                    core.GroupKey `json:"group"`
	LifeSatisfactionCustomer float64       `json:"s6_customer"`
	LifeSatisfactionNon      float64       `json:"s6_non_customer"`
	CommunityTrustCustomer   float64       `json:"s7_customer"`
	CommunityTrustNon        float64       `json:"s7_non_customer"`
	LifeSatisfactionChange   float64       `json:"life_satisfaction_change"`
	CommunityTrustChange     float64       `json:"community_trust_change"`
	SocialChange             float64       `json:"social_change"`
	WeightedTotal            float64       `json:"weighted_total"`
	Err                      error         `json:"-"`
}

// SocialOutcomes computes per-group social change. Gender and age cuts only consider male
// and female respondents.
func SocialOutcomes(respondents []survey.Respondent, dim core.Dimension) []Social {
	rs := survey.Filter(respondents, func(r survey.Respondent) bool {
		if !r.HasSocial {
			return false
		}
		if dim == core.DimensionGender || dim == core.DimensionAge {
			return r.HasGender && r.Gender.Binary()
		}
		return true
	})

	keys, groups := survey.GroupBy(rs, dim)
	out := make([]Social, 0, len(keys))
	for _, key := range keys {
		out = append(out, socialFor(key, groups[key]))
	}
	return out
}

func socialFor(key core.GroupKey, rs []survey.Respondent) Social {
	s := Social{Group: key}
	customers := survey.Filter(rs, survey.BySegment(core.SegmentCustomer))
	nonCustomers := survey.Filter(rs, survey.BySegment(core.SegmentNonCustomer))

	var err error
	if s.LifeSatisfactionCustomer, err = mean(customers, lifeSatisfaction); err != nil {
		s.Err = fmt.Errorf("%s customers: %w", key, err)
		return s
	}
	if s.LifeSatisfactionNon, err = mean(nonCustomers, lifeSatisfaction); err != nil {
		s.Err = fmt.Errorf("%s non-customers: %w", key, err)
		return s
	}
	s.CommunityTrustCustomer, _ = mean(customers, communityTrust)
	s.CommunityTrustNon, _ = mean(nonCustomers, communityTrust)

	for _, r := range rs {
		s.WeightedTotal += r.Weight
	}

	if s.LifeSatisfactionCustomer == 0 || s.CommunityTrustCustomer == 0 {
		s.Err = core.NewDivisionByZeroError(key.String() + " customer social score")
		return s
	}
	s.LifeSatisfactionChange = (s.LifeSatisfactionCustomer - s.LifeSatisfactionNon) / s.LifeSatisfactionCustomer
	s.CommunityTrustChange = (s.CommunityTrustCustomer - s.CommunityTrustNon) / s.CommunityTrustCustomer
	s.SocialChange = (s.LifeSatisfactionChange + s.CommunityTrustChange) / 2
	return s
}

func lifeSatisfaction(r survey.Respondent) float64 { return r.LifeSatisfaction }
func communityTrust(r survey.Respondent) float64   { return r.CommunityTrust }

func mean(rs []survey.Respondent, value func(survey.Respondent) float64) (float64, error) {
	obs := make([]stats.WeightedObservation, len(rs))
	for i, r := range rs {
		obs[i] = stats.WeightedObservation{Value: value(r), Weight: r.Weight}
	}
	return stats.WeightedMean(obs)
}
