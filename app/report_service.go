package app

import (
	"context"
	"fmt"

	"goimpact/domain/core"
	"goimpact/internal/errors"
	"goimpact/internal/report"
	"goimpact/ports"

	"github.com/shopspring/decimal"
)

// ReportService rebuilds run summaries from persisted results
type ReportService struct {
	store ports.ResultStore
}

// NewReportService creates a report service
func NewReportService(store ports.ResultStore) *ReportService {
	return &ReportService{store: store}
}

// Summary loads a stored run and aggregates its gender scenarios per market and price.
// Per-row warnings are not persisted, so only the run's warning count is reported.
func (s *ReportService) Summary(ctx context.Context, id core.RunID) (report.Summary, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return report.Summary{}, err
	}
	scenarios, err := s.store.ListScenarios(ctx, id)
	if err != nil {
		return report.Summary{}, errors.Wrap(err, "failed to list scenarios")
	}
	outcomes, err := s.store.ListHealthOutcomes(ctx, id)
	if err != nil {
		return report.Summary{}, errors.Wrap(err, "failed to list health outcomes")
	}

	sum := report.Summary{RunID: run.ID.String()}
	scenarioCount := report.TableCount{Table: "scenarios", Rows: len(scenarios)}
	for _, sc := range scenarios {
		if sc.Error != "" {
			scenarioCount.Failed++
		}
	}
	outcomeCount := report.TableCount{Table: "health", Rows: len(outcomes)}
	byScenario := make(map[string][]ports.HealthOutcomeRecord)
	for _, o := range outcomes {
		if o.Error != "" {
			outcomeCount.Failed++
		}
		byScenario[o.ScenarioID] = append(byScenario[o.ScenarioID], o)
	}
	sum.Counts = []report.TableCount{scenarioCount, outcomeCount, {Table: "costs", Rows: run.CostRows}}

	type key struct{ market, price string }
	totals := make(map[key]*report.MarketTotal)
	var order []key
	for _, sc := range scenarios {
		if sc.Dimension != string(core.DimensionGender) || sc.Error != "" {
			continue
		}
		k := key{sc.Market, sc.Price}
		t, ok := totals[k]
		if !ok {
			t = &report.MarketTotal{Market: sc.Market, Price: sc.Price}
			if m, err := core.ParseMarket(sc.Market); err == nil {
				t.Currency = m.Currency()
			}
			totals[k] = t
			order = append(order, k)
		}
		t.NewCustomers += deref(sc.NewCustomers)
		t.NewlyActive += deref(sc.NewlyActive)
		for _, o := range byScenario[sc.ScenarioID] {
			t.CasesSaved += deref(o.CasesSaved)
			if o.TotalSaving != nil {
				t.Saving = t.Saving.Add(decimal.NewFromFloat(*o.TotalSaving))
			}
		}
	}
	for _, k := range order {
		sum.Markets = append(sum.Markets, *totals[k])
	}
	if run.Warnings > 0 {
		sum.Warnings = []string{pluralWarnings(run.Warnings)}
	}
	return sum, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func pluralWarnings(n int) string {
	if n == 1 {
		return "1 lookup or load warning recorded during the run"
	}
	return fmt.Sprintf("%d lookup or load warnings recorded during the run", n)
}
