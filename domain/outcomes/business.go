// Package outcomes derives the business and social returns of the projected scenarios.
package outcomes

import (
	"goimpact/domain/activity"
	"goimpact/domain/core"
	"goimpact/domain/elasticity"
)

// Business is the extra customer spend implied by one scenario row.
type Business struct {
	ScenarioID   core.ScenarioID `json:"scenario_id"`
	Group        core.GroupKey   `json:"group"`
	Price        string          `json:"price"`
	NewCustomers float64         `json:"new_customers"`
	MedianLocal  float64         `json:"economic_outcome_median_local"`
	MedianUSD    float64         `json:"economic_outcome_median_usd"`
	AverageLocal float64         `json:"economic_outcome_avg_local"`
	AverageUSD   float64         `json:"economic_outcome_avg_usd"`
	Err          error           `json:"-"`
}

// BusinessOutcomes prices each scenario's new customers at the group's median and mean
// spend. Scenarios without a matching spend profile are kept with an error.
func BusinessOutcomes(scenarios []elasticity.Scenario, spending []activity.Spending) []Business {
	byGroup := make(map[core.GroupKey]activity.Spending, len(spending))
	for _, s := range spending {
		byGroup[s.Group] = s
	}

	out := make([]Business, 0, len(scenarios))
	for _, sc := range scenarios {
		b := Business{
			ScenarioID:   sc.ID,
			Group:        sc.Group,
			Price:        sc.Tier.Label,
			NewCustomers: sc.NewCustomers,
			Err:          sc.Err,
		}
		if b.Err == nil {
			sp, ok := byGroup[sc.Group]
			switch {
			case !ok:
				b.Err = core.NewMissingReferenceError("spending summary", sc.Group.String())
			case sp.Err != nil:
				b.Err = sp.Err
			default:
				b.MedianLocal = sc.NewCustomers * sp.MedianLocal
				b.MedianUSD = sc.NewCustomers * sp.MedianUSD
				b.AverageLocal = sc.NewCustomers * sp.AverageLocal
				b.AverageUSD = sc.NewCustomers * sp.AverageUSD
			}
		}
		out = append(out, b)
	}
	return out
}
