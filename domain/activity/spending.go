package activity

import (
	"fmt"

	"goimpact/domain/core"
	"goimpact/domain/stats"
	"goimpact/domain/survey"
)

// Spending is the weighted spend profile of existing customers in one group.
type Spending struct {
	Group         core.GroupKey `json:"group"`
	MedianLocal   float64       `json:"median_spent_local"`
	MedianUSD     float64       `json:"median_spent_usd"`
	AverageLocal  float64       `json:"avg_spent_local"`
	AverageUSD    float64       `json:"avg_spent_usd"`
	WeightedTotal float64       `json:"weighted_total"`
	Err           error         `json:"-"`
}

// SummarizeSpending profiles customer spend per group; usdRates converts local currency to USD.
// Respondents without a spend answer are skipped. Markets without a USD rate get an error row.
func SummarizeSpending(respondents []survey.Respondent, dim core.Dimension, usdRates map[core.Market]float64) []Spending {
	customers := survey.Filter(respondents, func(r survey.Respondent) bool {
		if r.Segment != core.SegmentCustomer || !r.HasSpend {
			return false
		}
		switch dim {
		case core.DimensionGender, core.DimensionAge:
			return r.HasGender && r.Gender.Binary()
		case core.DimensionIncome:
			return r.HasIncome && r.Income != core.IncomeUndisclosed
		}
		return true
	})

	keys, groups := survey.GroupBy(customers, dim)
	out := make([]Spending, 0, len(keys))
	for _, key := range keys {
		out = append(out, spendingFor(key, groups[key], usdRates))
	}
	return out
}

func spendingFor(key core.GroupKey, rs []survey.Respondent, usdRates map[core.Market]float64) Spending {
	s := Spending{Group: key}
	obs := make([]stats.WeightedObservation, len(rs))
	for i, r := range rs {
		obs[i] = stats.WeightedObservation{Value: r.Spend, Weight: r.Weight}
	}

	summary, err := stats.Summarize(obs)
	if err != nil {
		s.Err = fmt.Errorf("%s spending: %w", key, err)
		return s
	}
	s.MedianLocal = summary.Median
	s.AverageLocal = summary.Mean
	s.WeightedTotal = summary.TotalWeight

	rate, ok := usdRates[key.Market]
	if !ok {
		s.Err = core.NewMissingReferenceError("usd rates", key.Market.Label())
		return s
	}
	s.MedianUSD = s.MedianLocal * rate
	s.AverageUSD = s.AverageLocal * rate
	return s
}
