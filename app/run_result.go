package app

import (
	"fmt"
	"math"
	"strings"
	"time"

	"goimpact/domain/activity"
	"goimpact/domain/core"
	"goimpact/domain/costs"
	"goimpact/domain/elasticity"
	"goimpact/domain/health"
	"goimpact/domain/outcomes"
	"goimpact/internal/report"
	"goimpact/ports"
)

// RunResult holds every table produced by a run
type RunResult struct {
	RunID      core.RunID
	ReportYear int
	StartedAt  time.Time
	FinishedAt time.Time

	Activity  []activity.Summary
	Spending  []activity.Spending
	Rates     []elasticity.TierRate
	Scenarios []elasticity.Scenario
	Business  []outcomes.Business
	Social    []outcomes.Social
	Costs     []costs.Figure
	Health    []health.Outcome

	Warnings []string
}

func newRunResult(reportYear int, loadWarnings []string) *RunResult {
	return &RunResult{
		RunID:      core.NewRunID(),
		ReportYear: reportYear,
		StartedAt:  time.Now().UTC(),
		Warnings:   append([]string(nil), loadWarnings...),
	}
}

func (r *RunResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Tables returns the non-empty output tables in workbook order
func (r *RunResult) Tables() []report.Table {
	all := []report.Table{
		report.ActivityTable(r.Activity),
		report.SpendingTable(r.Spending),
		report.RatesTable(r.Rates),
		report.ScenarioTable(r.Scenarios),
		report.BusinessTable(r.Business),
		report.SocialTable(r.Social),
		report.CostTable(r.Costs),
		report.HealthTable(r.Health),
	}
	out := all[:0]
	for _, t := range all {
		if len(t.Rows) > 0 {
			out = append(out, t)
		}
	}
	return out
}

func countRows(t report.Table) report.TableCount {
	return report.Count(t)
}

// Summary digests the run per market and price tier. Totals use the gender scenarios,
// which partition each market and are the ones carried into health outcomes.
func (r *RunResult) Summary() report.Summary {
	s := report.Summary{RunID: r.RunID.String(), Warnings: r.Warnings}
	for _, t := range r.Tables() {
		s.Counts = append(s.Counts, countRows(t))
	}

	byScenario := make(map[string][]health.Outcome)
	for _, o := range r.Health {
		byScenario[o.ScenarioID] = append(byScenario[o.ScenarioID], o)
	}

	type key struct {
		market core.Market
		price  string
	}
	totals := make(map[key]*report.MarketTotal)
	var order []key
	for _, sc := range r.Scenarios {
		if sc.Group.Dimension != core.DimensionGender || sc.Err != nil {
			continue
		}
		k := key{sc.Group.Market, sc.Tier.Label}
		t, ok := totals[k]
		if !ok {
			t = &report.MarketTotal{Market: sc.Group.Market.Label(), Price: sc.Tier.Label, Currency: sc.Group.Market.Currency()}
			totals[k] = t
			order = append(order, k)
		}
		t.NewCustomers += sc.NewCustomers
		t.NewlyActive += sc.NewlyActive
		for _, o := range byScenario[sc.ID.String()] {
			if o.Err != nil {
				continue
			}
			t.CasesSaved += o.Cases.Total()
			if o.SavingDefined {
				t.Saving = t.Saving.Add(costs.SumMoney(o.TotalSaving))
			}
		}
	}
	for _, k := range order {
		s.Markets = append(s.Markets, *totals[k])
	}
	return s
}

// Records flattens the run for the result store
func (r *RunResult) Records() ports.RunResults {
	out := ports.RunResults{
		Run: ports.RunRecord{
			ID:           r.RunID,
			ReportYear:   r.ReportYear,
			ScenarioRows: len(r.Scenarios),
			OutcomeRows:  len(r.Health),
			CostRows:     len(r.Costs),
			Warnings:     len(r.Warnings),
			StartedAt:    r.StartedAt,
			FinishedAt:   r.FinishedAt,
		},
	}

	for _, sc := range r.Scenarios {
		rec := ports.ScenarioRecord{
			RunID:      r.RunID,
			ScenarioID: sc.ID.String(),
			Market:     sc.Group.Market.Label(),
			Dimension:  string(sc.Group.Dimension),
			GroupValue: sc.Group.Value,
			Price:      sc.Tier.Label,
		}
		if sc.Err != nil {
			rec.Error = sc.Err.Error()
		} else {
			rec.PctYes = finite(sc.PctYes)
			rec.PctPriceBarrier = finite(sc.PctPriceBarrier)
			rec.PctNonPriceBarrier = finite(sc.PctNonPriceBarrier)
			rec.NewCustomers = finite(sc.NewCustomers)
			rec.NewlyActive = finite(sc.NewlyActive)
		}
		out.Scenarios = append(out.Scenarios, rec)
	}

	for _, o := range r.Health {
		rec := ports.HealthOutcomeRecord{RunID: r.RunID, ScenarioID: o.ScenarioID, Factor: o.Factor}
		var errs []string
		if o.Err != nil {
			errs = append(errs, o.Err.Error())
		} else {
			rec.CasesSaved = finite(o.Cases.Total())
			rec.DeathsAvoided = finite(o.Deaths.Total())
			rec.DALYsAvoided = finite(o.DALYs.Total())
		}
		if o.CostErr != nil {
			errs = append(errs, o.CostErr.Error())
		}
		if o.SavingDefined {
			rec.DirectSaving = money(o.DirectSaving)
			rec.IndirectSaving = money(o.IndirectSaving)
			rec.TotalSaving = money(o.TotalSaving)
		}
		rec.Error = strings.Join(errs, "; ")
		out.HealthOutcomes = append(out.HealthOutcomes, rec)
	}

	for _, f := range r.Costs {
		rec := ports.CostRecord{
			RunID:      r.RunID,
			Geography:  f.Geography,
			Factor:     f.Factor,
			AgeGroup:   f.AgeGroup,
			Gender:     f.Gender,
			Direct:     f.Direct,
			BaseAmount: f.BaseAmount,
		}
		if f.Defined {
			rec.ExchangeRate = finite(f.ExchangeRate)
			rec.InflationFactor = finite(f.InflationFactor)
			rec.AdjustmentFactor = finite(f.AdjustmentFactor)
			rec.AdjustedAmount = money(f.AdjustedAmount)
		}
		out.Costs = append(out.Costs, rec)
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func money(v float64) *float64 {
	d, ok := costs.Money(v)
	if !ok {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
