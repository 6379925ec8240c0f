package ports

import (
	"context"
	"time"

	"goimpact/domain/core"
)

// RunRecord is the persisted header of one pipeline run.
type RunRecord struct {
	ID           core.RunID `db:"id" json:"id"`
	ReportYear   int        `db:"report_year" json:"report_year"`
	ScenarioRows int        `db:"scenario_rows" json:"scenario_rows"`
	OutcomeRows  int        `db:"outcome_rows" json:"outcome_rows"`
	CostRows     int        `db:"cost_rows" json:"cost_rows"`
	Warnings     int        `db:"warnings" json:"warnings"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	FinishedAt   time.Time  `db:"finished_at" json:"finished_at"`
}

// ScenarioRecord is a flattened projected scenario row.
type ScenarioRecord struct {
	RunID              core.RunID `db:"run_id" json:"-"`
	ScenarioID         string     `db:"scenario_id" json:"scenario_id"`
	Market             string     `db:"market" json:"market"`
	Dimension          string     `db:"dimension" json:"dimension"`
	GroupValue         string     `db:"group_value" json:"group_value"`
	Price              string     `db:"price" json:"price"`
	PctYes             *float64   `db:"pct_yes" json:"pct_yes"`
	PctPriceBarrier    *float64   `db:"pct_price_barrier" json:"pct_price_barrier"`
	PctNonPriceBarrier *float64   `db:"pct_non_price_barrier" json:"pct_non_price_barrier"`
	NewCustomers       *float64   `db:"new_customers" json:"new_customers"`
	NewlyActive        *float64   `db:"newly_active" json:"newly_active"`
	Error              string     `db:"error" json:"error,omitempty"`
}

// HealthOutcomeRecord is a flattened monetized health outcome row.
type HealthOutcomeRecord struct {
	RunID          core.RunID `db:"run_id" json:"-"`
	ScenarioID     string     `db:"scenario_id" json:"scenario_id"`
	Factor         string     `db:"factor" json:"factor"`
	CasesSaved     *float64   `db:"cases_saved" json:"cases_saved"`
	DeathsAvoided  *float64   `db:"deaths_avoided" json:"deaths_avoided"`
	DALYsAvoided   *float64   `db:"dalys_avoided" json:"dalys_avoided"`
	DirectSaving   *float64   `db:"direct_saving" json:"direct_saving"`
	IndirectSaving *float64   `db:"indirect_saving" json:"indirect_saving"`
	TotalSaving    *float64   `db:"total_saving" json:"total_saving"`
	Error          string     `db:"error" json:"error,omitempty"`
}

// CostRecord is a flattened normalized cost figure.
type CostRecord struct {
	RunID            core.RunID `db:"run_id" json:"-"`
	Geography        string     `db:"geography" json:"geography"`
	Factor           string     `db:"factor" json:"factor"`
	AgeGroup         string     `db:"age_group" json:"age_group"`
	Gender           string     `db:"gender" json:"gender"`
	Direct           bool       `db:"direct" json:"direct"`
	BaseAmount       float64    `db:"base_amount" json:"base_amount"`
	ExchangeRate     *float64   `db:"exchange_rate" json:"exchange_rate"`
	InflationFactor  *float64   `db:"inflation_factor" json:"inflation_factor"`
	AdjustmentFactor *float64   `db:"adjustment_factor" json:"adjustment_factor"`
	AdjustedAmount   *float64   `db:"adjusted_amount" json:"adjusted_amount"`
}

// RunResults bundles everything persisted for one run.
type RunResults struct {
	Run            RunRecord
	Scenarios      []ScenarioRecord
	HealthOutcomes []HealthOutcomeRecord
	Costs          []CostRecord
}

// ResultStore persists and serves pipeline results.
type ResultStore interface {
	SaveRun(ctx context.Context, results RunResults) error
	GetRun(ctx context.Context, id core.RunID) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	ListScenarios(ctx context.Context, id core.RunID) ([]ScenarioRecord, error)
	ListHealthOutcomes(ctx context.Context, id core.RunID) ([]HealthOutcomeRecord, error)
}
