package elasticity

import (
	"fmt"
	"sort"

	"goimpact/domain/core"
	"goimpact/domain/stats"
	"goimpact/domain/survey"
)

// Response is one non-customer's discount answers within a group.
type Response struct {
	Group        core.GroupKey
	Weight       float64
	PriceBarrier bool
	Accepts      []bool // raw answers, one per tier
}

// TierRate is the weighted acceptance for one (tier, group) cell.
type TierRate struct {
	Tier               Tier          `json:"tier"`
	Group              core.GroupKey `json:"group"`
	PriceLabel         string        `json:"price"`
	PctYes             float64       `json:"pct_yes"`
	PctPriceBarrier    float64       `json:"pct_price_barrier"`
	PctNonPriceBarrier float64       `json:"pct_non_price_barrier"`
	RespondentCount    int           `json:"total_respondents"`
	TotalWeight        float64       `json:"total_weight"`
	BarrierWeight      float64       `json:"price_barrier_weight"`
	Err                error         `json:"-"`
}

// ResponsesFrom extracts non-customer responses grouped on dim. Respondents without a
// value on dim are skipped.
func ResponsesFrom(respondents []survey.Respondent, dim core.Dimension) []Response {
	var out []Response
	for _, r := range respondents {
		if r.Segment != core.SegmentNonCustomer {
			continue
		}
		key, ok := r.GroupKey(dim)
		if !ok {
			continue
		}
		out = append(out, Response{
			Group:        key,
			Weight:       r.Weight,
			PriceBarrier: r.PriceBarrier,
			Accepts:      r.TierAccepts,
		})
	}
	return out
}

type cell struct {
	total, barrier, nonBarrier, yes float64
	count                           int
}

// Rates propagates each response across tiers and aggregates per tier and group.
// Rows come back ordered by tier, then group key. A group with no price-barrier weight
// gets ErrDivisionByZero on its rows rather than a NaN rate.
func Rates(responses []Response, tiers []Tier) ([]TierRate, error) {
	if err := ValidateTiers(tiers); err != nil {
		return nil, err
	}

	weights := make([]stats.WeightedObservation, len(responses))
	for n, resp := range responses {
		weights[n] = stats.WeightedObservation{Value: 1, Weight: resp.Weight}
	}
	if _, err := stats.TotalWeight(weights); err != nil {
		return nil, fmt.Errorf("response weights: %w", err)
	}

	cells := make([]map[core.GroupKey]*cell, len(tiers))
	for i := range cells {
		cells[i] = make(map[core.GroupKey]*cell)
	}
	var keys []core.GroupKey
	seen := make(map[core.GroupKey]bool)

	for n, resp := range responses {
		if len(resp.Accepts) != len(tiers) {
			return nil, fmt.Errorf("response %d has %d tier answers, want %d", n, len(resp.Accepts), len(tiers))
		}
		if !seen[resp.Group] {
			seen[resp.Group] = true
			keys = append(keys, resp.Group)
		}

		accepts := Propagate(resp.Accepts)
		for i := range tiers {
			c := cells[i][resp.Group]
			if c == nil {
				c = &cell{}
				cells[i][resp.Group] = c
			}
			c.total += resp.Weight
			c.count++
			if resp.PriceBarrier {
				c.barrier += resp.Weight
				if accepts[i] {
					c.yes += resp.Weight
				}
			} else {
				c.nonBarrier += resp.Weight
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]TierRate, 0, len(keys)*len(tiers))
	for i, tier := range tiers {
		for _, key := range keys {
			out = append(out, rateFor(tier, key, cells[i][key]))
		}
	}
	return out, nil
}

func rateFor(tier Tier, key core.GroupKey, c *cell) TierRate {
	r := TierRate{
		Tier:            tier,
		Group:           key,
		PriceLabel:      tier.Label,
		RespondentCount: c.count,
		TotalWeight:     c.total,
		BarrierWeight:   c.barrier,
	}
	if c.total == 0 {
		r.Err = core.NewDivisionByZeroError(fmt.Sprintf("%s %s total weight", key, tier.Label))
		return r
	}
	r.PctPriceBarrier = c.barrier / c.total
	r.PctNonPriceBarrier = c.nonBarrier / c.total
	if c.barrier == 0 {
		r.Err = core.NewDivisionByZeroError(fmt.Sprintf("%s %s price-barrier weight", key, tier.Label))
		return r
	}
	r.PctYes = c.yes / c.barrier
	return r
}

// KeepModelled drops rows whose group value is not modelled for its dimension.
func KeepModelled(rates []TierRate) []TierRate {
	out := make([]TierRate, 0, len(rates))
	for _, r := range rates {
		for _, v := range core.ModelledValues(r.Group.Dimension) {
			if r.Group.Value == v {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
