package elasticity

import (
	"fmt"

	"goimpact/domain/core"
	"goimpact/domain/survey"
)

// ChangeSource yields the activity uplift for a group; fallback reports an approximation.
type ChangeSource interface {
	Change(key core.GroupKey) (change float64, fallback bool, err error)
}

// Scenario is a tier rate projected onto the non-customer population.
type Scenario struct {
	ID                 core.ScenarioID `json:"scenario_id"`
	Tier               Tier            `json:"tier"`
	Group              core.GroupKey   `json:"group"`
	NonCustomers       float64         `json:"non_customers"`
	PctYes             float64         `json:"pct_yes"`
	PctPriceBarrier    float64         `json:"pct_price_barrier"`
	PctNonPriceBarrier float64         `json:"pct_non_price_barrier"`
	NewCustomers       float64         `json:"new_customers"`
	Change             float64         `json:"change"`
	ChangeFallback     bool            `json:"change_fallback"`
	NewlyActive        float64         `json:"newly_active_customers"`
	Err                error           `json:"-"`
}

// Project joins rates with the non-customer population and activity change per group.
// Missing joins leave the row in place with an error so the gap stays visible.
func Project(rates []TierRate, penetration map[core.GroupKey]float64, changes ChangeSource) []Scenario {
	out := make([]Scenario, 0, len(rates))
	for _, r := range rates {
		s := Scenario{
			ID:                 core.NewScenarioID(r.Group.Market, r.PriceLabel, r.Group.Value),
			Tier:               r.Tier,
			Group:              r.Group,
			PctYes:             r.PctYes,
			PctPriceBarrier:    r.PctPriceBarrier,
			PctNonPriceBarrier: r.PctNonPriceBarrier,
			Err:                r.Err,
		}
		if s.Err != nil {
			out = append(out, s)
			continue
		}

		pop, ok := penetration[r.Group]
		if !ok {
			s.Err = core.NewMissingReferenceError("market penetration", r.Group.String())
			out = append(out, s)
			continue
		}
		s.NonCustomers = pop
		s.NewCustomers = pop * r.PctYes * r.PctPriceBarrier

		change, fallback, err := changes.Change(r.Group)
		if err != nil {
			s.Err = fmt.Errorf("activity change: %w", err)
			out = append(out, s)
			continue
		}
		s.Change = change
		s.ChangeFallback = fallback
		s.NewlyActive = s.NewCustomers * change
		out = append(out, s)
	}
	return out
}

// SplitPenetration distributes each market's non-customer population across the groups of
// dim in proportion to the non-customer survey weight of each group.
func SplitPenetration(marketTotals map[core.Market]float64, respondents []survey.Respondent, dim core.Dimension) map[core.GroupKey]float64 {
	nonCustomers := survey.Filter(respondents, survey.BySegment(core.SegmentNonCustomer))
	keys, groups := survey.GroupBy(nonCustomers, dim)

	marketWeight := make(map[core.Market]float64)
	groupWeight := make(map[core.GroupKey]float64)
	for _, k := range keys {
		for _, r := range groups[k] {
			groupWeight[k] += r.Weight
			marketWeight[k.Market] += r.Weight
		}
	}

	out := make(map[core.GroupKey]float64, len(keys))
	for _, k := range keys {
		total, ok := marketTotals[k.Market]
		if !ok || marketWeight[k.Market] == 0 {
			continue
		}
		out[k] = total * groupWeight[k] / marketWeight[k.Market]
	}
	return out
}
