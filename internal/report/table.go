// Package report shapes pipeline results into flat tables for workbooks and renders the
// run summary.
package report

import (
	"sort"
	"strconv"

	"goimpact/domain/activity"
	"goimpact/domain/costs"
	"goimpact/domain/elasticity"
	"goimpact/domain/expenditure"
	"goimpact/domain/health"
	"goimpact/domain/outcomes"

	"github.com/shopspring/decimal"
)

// Table is a named grid of cells. Money lists column indexes rounded to cents on output.
type Table struct {
	Name    string
	Headers []string
	Money   []int
	Rows    [][]interface{}
}

// IsMoney reports whether column c holds a monetary amount.
func (t Table) IsMoney(c int) bool {
	for _, m := range t.Money {
		if m == c {
			return true
		}
	}
	return false
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ActivityTable lists activity summaries.
func ActivityTable(rows []activity.Summary) Table {
	t := Table{
		Name: "activity",
		Headers: []string{"market", "dimension", "value", "active_customers", "active_non_customers",
			"change", "customers", "non_customers", "total_count", "non_customers_pct", "error"},
	}
	for _, s := range rows {
		t.Rows = append(t.Rows, []interface{}{
			s.Group.Market.Label(), string(s.Group.Dimension), s.Group.Value,
			s.ActiveCustomers, s.ActiveNonCustomers, s.Change,
			s.CustomerWeight, s.NonCustomerWeight, s.TotalWeight, roundTo(s.NonCustomerShare, 1),
			errText(s.Err),
		})
	}
	return t
}

// roundTo rounds to places decimals, half to even.
func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}

// SpendingTable lists customer spend profiles.
func SpendingTable(rows []activity.Spending) Table {
	t := Table{
		Name: "spending",
		Headers: []string{"market", "dimension", "value", "median_spent_local", "median_spent_usd",
			"avg_spent_local", "avg_spent_usd", "weighted_total", "error"},
		Money: []int{3, 4, 5, 6},
	}
	for _, s := range rows {
		t.Rows = append(t.Rows, []interface{}{
			s.Group.Market.Label(), string(s.Group.Dimension), s.Group.Value,
			s.MedianLocal, s.MedianUSD, s.AverageLocal, s.AverageUSD, s.WeightedTotal,
			errText(s.Err),
		})
	}
	return t
}

// RatesTable lists price elasticity rates per tier and group.
func RatesTable(rows []elasticity.TierRate) Table {
	t := Table{
		Name: "elasticity",
		Headers: []string{"market", "dimension", "value", "price", "pct_yes", "pct_price_barrier",
			"pct_non_price_barrier", "respondents", "total_weight", "error"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.Group.Market.Label(), string(r.Group.Dimension), r.Group.Value, r.PriceLabel,
			r.PctYes, r.PctPriceBarrier, r.PctNonPriceBarrier, r.RespondentCount, r.TotalWeight,
			errText(r.Err),
		})
	}
	return t
}

// ScenarioTable lists projected scenarios.
func ScenarioTable(rows []elasticity.Scenario) Table {
	t := Table{
		Name: "scenarios",
		Headers: []string{"scenario_id", "market", "dimension", "value", "price", "non_customers",
			"pct_yes", "pct_price_barrier", "new_customers", "change", "change_fallback",
			"newly_active_customers", "error"},
	}
	for _, s := range rows {
		t.Rows = append(t.Rows, []interface{}{
			s.ID.String(), s.Group.Market.Label(), string(s.Group.Dimension), s.Group.Value,
			s.Tier.Label, s.NonCustomers, s.PctYes, s.PctPriceBarrier, s.NewCustomers,
			s.Change, s.ChangeFallback, s.NewlyActive, errText(s.Err),
		})
	}
	return t
}

// BusinessTable lists economic outcomes.
func BusinessTable(rows []outcomes.Business) Table {
	t := Table{
		Name: "business",
		Headers: []string{"scenario_id", "market", "dimension", "value", "price", "new_customers",
			"economic_outcome_median_local", "economic_outcome_median_usd",
			"economic_outcome_avg_local", "economic_outcome_avg_usd", "error"},
		Money: []int{6, 7, 8, 9},
	}
	for _, b := range rows {
		t.Rows = append(t.Rows, []interface{}{
			b.ScenarioID.String(), b.Group.Market.Label(), string(b.Group.Dimension), b.Group.Value,
			b.Price, b.NewCustomers, b.MedianLocal, b.MedianUSD, b.AverageLocal, b.AverageUSD,
			errText(b.Err),
		})
	}
	return t
}

// SocialTable lists social outcomes.
func SocialTable(rows []outcomes.Social) Table {
	t := Table{
		Name: "social",
		Headers: []string{"market", "dimension", "value", "s6_customer", "s6_non_customer",
			"s7_customer", "s7_non_customer", "life_satisfaction_change", "community_trust_change",
			"social_change", "weighted_total", "error"},
	}
	for _, s := range rows {
		t.Rows = append(t.Rows, []interface{}{
			s.Group.Market.Label(), string(s.Group.Dimension), s.Group.Value,
			s.LifeSatisfactionCustomer, s.LifeSatisfactionNon, s.CommunityTrustCustomer,
			s.CommunityTrustNon, s.LifeSatisfactionChange, s.CommunityTrustChange,
			s.SocialChange, s.WeightedTotal, errText(s.Err),
		})
	}
	return t
}

// CostTable lists normalized cost figures with their intermediate factors.
func CostTable(rows []costs.Figure) Table {
	t := Table{
		Name: "costs",
		Headers: []string{"factor", "age_group", "gender", "category", "direct", "geography",
			"base_year", "cost_per_case_unflated", "forex_rate", "cost_per_case_local",
			"inflation_rate", "cost_inflated", "adjustment_factor", "cost_per_case_adjusted",
			"defined", "error"},
		Money: []int{7, 9, 11, 13},
	}
	for _, f := range rows {
		t.Rows = append(t.Rows, []interface{}{
			f.Factor, f.AgeGroup, f.Gender, f.Category, f.Direct, f.Geography, f.BaseYear,
			f.BaseAmount, f.ExchangeRate, f.LocalAmount, f.InflationFactor, f.InflatedAmount,
			f.AdjustmentFactor, f.AdjustedAmount, f.Defined, errText(f.Err),
		})
	}
	return t
}

// HealthTable lists health outcomes per scenario and factor.
func HealthTable(rows []health.Outcome) Table {
	t := Table{
		Name: "health",
		Headers: []string{"scenario_id", "factor", "gender", "geography", "newly_active_customers",
			"risk_active", "risk_fairly_active", "risk_inactive", "cases_saved", "deaths_saved",
			"dalys_saved", "direct_cost_per_case", "indirect_cost_per_case", "direct_cost_saving",
			"indirect_cost_saving", "total_saving", "error", "cost_error"},
		Money: []int{11, 12, 13, 14, 15},
	}
	for _, o := range rows {
		row := []interface{}{
			o.ScenarioID, o.Factor, o.Gender, o.Geography, o.NewlyActive,
			o.Rates.Active, o.Rates.FairlyActive, o.Rates.Inactive,
			o.Cases.Total(), o.Deaths.Total(), o.DALYs.Total(),
			o.DirectCostPerCase, o.IndirectCostPerCase,
		}
		if o.SavingDefined {
			row = append(row, o.DirectSaving, o.IndirectSaving, o.TotalSaving)
		} else {
			row = append(row, nil, nil, nil)
		}
		row = append(row, errText(o.Err), errText(o.CostErr))
		t.Rows = append(t.Rows, row)
	}
	return t
}

// YearTable lays out a yearly series wide: one row per key, one column per year.
func YearTable(name, keyHeader string, t costs.YearTable) Table {
	yearSet := make(map[int]bool)
	keys := make([]string, 0, len(t))
	for k, byYear := range t {
		keys = append(keys, k)
		for y := range byYear {
			yearSet[y] = true
		}
	}
	sort.Strings(keys)
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	out := Table{Name: name, Headers: []string{keyHeader}}
	for _, y := range years {
		out.Headers = append(out.Headers, strconv.Itoa(y))
	}
	for _, k := range keys {
		row := []interface{}{k}
		for _, y := range years {
			if v, ok := t[k][y]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// TrendTable lists fitted expenditure trends.
func TrendTable(trends []expenditure.Trend) Table {
	t := Table{Name: "trends", Headers: []string{"Country Name", "intercept", "slope", "points"}}
	for _, tr := range trends {
		t.Rows = append(t.Rows, []interface{}{tr.Country, tr.Intercept, tr.Slope, tr.Points})
	}
	return t
}
