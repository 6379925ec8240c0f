package activity

import (
	"fmt"

	"goimpact/domain/core"
	"goimpact/domain/stats"
	"goimpact/domain/survey"

	mstats "github.com/montanaflynn/stats"
)

// Summary is the activity uplift for one demographic group.
type Summary struct {
	Group              core.GroupKey `json:"group"`
	ActiveCustomers    float64       `json:"active_customers"`
	ActiveNonCustomers float64       `json:"active_non_customers"`
	Change             float64       `json:"change"`
	CustomerWeight     float64       `json:"customers"`
	NonCustomerWeight  float64       `json:"non_customers"`
	TotalWeight        float64       `json:"total_count"`
	NonCustomerShare   float64       `json:"non_customers_pct"`
	Err                error         `json:"-"`
}

// Summarize computes per-group weighted active rates for customers and non-customers.
// Only groups present in both segments are returned, ordered by key.
func Summarize(respondents []survey.Respondent, dim core.Dimension) []Summary {
	customers := survey.Filter(respondents, survey.BySegment(core.SegmentCustomer))
	nonCustomers := survey.Filter(respondents, survey.BySegment(core.SegmentNonCustomer))

	_, custGroups := survey.GroupBy(customers, dim)
	nonKeys, nonGroups := survey.GroupBy(nonCustomers, dim)

	var out []Summary
	for _, key := range nonKeys {
		cust, ok := custGroups[key]
		if !ok {
			continue
		}
		out = append(out, summarizeGroup(key, cust, nonGroups[key]))
	}
	return out
}

func summarizeGroup(key core.GroupKey, customers, nonCustomers []survey.Respondent) Summary {
	s := Summary{Group: key}

	custObs := activeObservations(customers)
	nonObs := activeObservations(nonCustomers)

	s.CustomerWeight, _ = stats.TotalWeight(custObs)
	s.NonCustomerWeight, _ = stats.TotalWeight(nonObs)
	s.TotalWeight = s.CustomerWeight + s.NonCustomerWeight

	var err error
	s.ActiveCustomers, err = stats.WeightedMean(custObs)
	if err != nil {
		s.Err = fmt.Errorf("%s customers: %w", key, err)
		return s
	}
	s.ActiveNonCustomers, err = stats.WeightedMean(nonObs)
	if err != nil {
		s.Err = fmt.Errorf("%s non-customers: %w", key, err)
		return s
	}
	s.Change = s.ActiveCustomers - s.ActiveNonCustomers
	if s.TotalWeight > 0 {
		s.NonCustomerShare = s.NonCustomerWeight / s.TotalWeight
	}
	return s
}

func activeObservations(rs []survey.Respondent) []stats.WeightedObservation {
	obs := make([]stats.WeightedObservation, len(rs))
	for i, r := range rs {
		v := 0.0
		if Classify(r.Activity).Active {
			v = 1
		}
		obs[i] = stats.WeightedObservation{Value: v, Weight: r.Weight}
	}
	return obs
}

// ChangeLookup resolves the activity change for a group, falling back to the mean change
// of the market's other groups when the group itself has no usable summary.
type ChangeLookup struct {
	byKey    map[core.GroupKey]float64
	byMarket map[core.Market][]float64
}

func NewChangeLookup(summaries []Summary) *ChangeLookup {
	l := &ChangeLookup{
		byKey:    make(map[core.GroupKey]float64),
		byMarket: make(map[core.Market][]float64),
	}
	for _, s := range summaries {
		if s.Err != nil {
			continue
		}
		l.byKey[s.Group] = s.Change
		l.byMarket[s.Group.Market] = append(l.byMarket[s.Group.Market], s.Change)
	}
	return l
}

// Change returns the group's change and whether the market fallback was used.
func (l *ChangeLookup) Change(key core.GroupKey) (float64, bool, error) {
	if c, ok := l.byKey[key]; ok {
		return c, false, nil
	}
	changes := l.byMarket[key.Market]
	if len(changes) == 0 {
		return 0, false, core.NewMissingReferenceError("activity summary", key.String())
	}
	mean, err := mstats.Mean(changes)
	if err != nil {
		return 0, false, err
	}
	return mean, true, nil
}
