package migration

import (
	"context"

	"goimpact/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the result store schema
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"goimpact_runs", createRunsTable},
		{"goimpact_scenarios", createScenariosTable},
		{"goimpact_health_outcomes", createHealthOutcomesTable},
		{"goimpact_cost_figures", createCostFiguresTable},
		{"indexes", createIndexes},
	}

	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.DatabaseError("failed to create "+s.name, err)
		}
	}
	return nil
}

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS goimpact_runs (
		id UUID PRIMARY KEY,
		report_year INTEGER NOT NULL,
		scenario_rows INTEGER NOT NULL DEFAULT 0,
		outcome_rows INTEGER NOT NULL DEFAULT 0,
		cost_rows INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP WITH TIME ZONE NOT NULL,
		finished_at TIMESTAMP WITH TIME ZONE NOT NULL
	)
`

const createScenariosTable = `
	CREATE TABLE IF NOT EXISTS goimpact_scenarios (
		run_id UUID NOT NULL REFERENCES goimpact_runs(id) ON DELETE CASCADE,
		scenario_id VARCHAR(16) NOT NULL,
		market VARCHAR(64) NOT NULL,
		dimension VARCHAR(32) NOT NULL,
		group_value VARCHAR(64) NOT NULL,
		price VARCHAR(16) NOT NULL,
		pct_yes DOUBLE PRECISION,
		pct_price_barrier DOUBLE PRECISION,
		pct_non_price_barrier DOUBLE PRECISION,
		new_customers DOUBLE PRECISION,
		newly_active DOUBLE PRECISION,
		error TEXT NOT NULL DEFAULT ''
	)
`

const createHealthOutcomesTable = `
	CREATE TABLE IF NOT EXISTS goimpact_health_outcomes (
		run_id UUID NOT NULL REFERENCES goimpact_runs(id) ON DELETE CASCADE,
		scenario_id VARCHAR(16) NOT NULL,
		factor VARCHAR(128) NOT NULL,
		cases_saved DOUBLE PRECISION,
		deaths_avoided DOUBLE PRECISION,
		dalys_avoided DOUBLE PRECISION,
		direct_saving NUMERIC(18,2),
		indirect_saving NUMERIC(18,2),
		total_saving NUMERIC(18,2),
		error TEXT NOT NULL DEFAULT ''
	)
`

const createCostFiguresTable = `
	CREATE TABLE IF NOT EXISTS goimpact_cost_figures (
		run_id UUID NOT NULL REFERENCES goimpact_runs(id) ON DELETE CASCADE,
		geography VARCHAR(64) NOT NULL,
		factor VARCHAR(128) NOT NULL,
		age_group VARCHAR(32) NOT NULL,
		gender VARCHAR(16) NOT NULL,
		direct BOOLEAN NOT NULL,
		base_amount DOUBLE PRECISION NOT NULL,
		exchange_rate DOUBLE PRECISION,
		inflation_factor DOUBLE PRECISION,
		adjustment_factor DOUBLE PRECISION,
		adjusted_amount NUMERIC(18,2)
	)
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_goimpact_runs_started_at ON goimpact_runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_goimpact_scenarios_run ON goimpact_scenarios(run_id, scenario_id);
	CREATE INDEX IF NOT EXISTS idx_goimpact_health_outcomes_run ON goimpact_health_outcomes(run_id, scenario_id);
	CREATE INDEX IF NOT EXISTS idx_goimpact_cost_figures_run ON goimpact_cost_figures(run_id, geography)
`
