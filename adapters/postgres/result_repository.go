package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"goimpact/domain/core"
	"goimpact/internal/errors"
	"goimpact/ports"

	"github.com/jmoiron/sqlx"
)

// ResultRepository implements ports.ResultStore for PostgreSQL
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveRun writes the run header and all of its rows in one transaction
func (r *ResultRepository) SaveRun(ctx context.Context, results ports.RunResults) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	run := results.Run
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO goimpact_runs (id, report_year, scenario_rows, outcome_rows, cost_rows, warnings, started_at, finished_at)
		VALUES (:id, :report_year, :scenario_rows, :outcome_rows, :cost_rows, :warnings, :started_at, :finished_at)
	`, run)
	if err != nil {
		return errors.DatabaseError("insert run", err)
	}

	scenarios := withRunID(results.Scenarios, func(s *ports.ScenarioRecord) { s.RunID = run.ID })
	if len(scenarios) > 0 {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO goimpact_scenarios (run_id, scenario_id, market, dimension, group_value, price,
				pct_yes, pct_price_barrier, pct_non_price_barrier, new_customers, newly_active, error)
			VALUES (:run_id, :scenario_id, :market, :dimension, :group_value, :price,
				:pct_yes, :pct_price_barrier, :pct_non_price_barrier, :new_customers, :newly_active, :error)
		`, scenarios)
		if err != nil {
			return errors.DatabaseError("insert scenarios", err)
		}
	}

	outcomes := withRunID(results.HealthOutcomes, func(o *ports.HealthOutcomeRecord) { o.RunID = run.ID })
	if len(outcomes) > 0 {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO goimpact_health_outcomes (run_id, scenario_id, factor, cases_saved, deaths_avoided,
				dalys_avoided, direct_saving, indirect_saving, total_saving, error)
			VALUES (:run_id, :scenario_id, :factor, :cases_saved, :deaths_avoided,
				:dalys_avoided, :direct_saving, :indirect_saving, :total_saving, :error)
		`, outcomes)
		if err != nil {
			return errors.DatabaseError("insert health outcomes", err)
		}
	}

	figures := withRunID(results.Costs, func(c *ports.CostRecord) { c.RunID = run.ID })
	if len(figures) > 0 {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO goimpact_cost_figures (run_id, geography, factor, age_group, gender, direct, base_amount,
				exchange_rate, inflation_factor, adjustment_factor, adjusted_amount)
			VALUES (:run_id, :geography, :factor, :age_group, :gender, :direct, :base_amount,
				:exchange_rate, :inflation_factor, :adjustment_factor, :adjusted_amount)
		`, figures)
		if err != nil {
			return errors.DatabaseError("insert cost figures", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("commit run", err)
	}
	return nil
}

// GetRun retrieves a run header by ID
func (r *ResultRepository) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	var run ports.RunRecord
	err := r.db.GetContext(ctx, &run, `
		SELECT id, report_year, scenario_rows, outcome_rows, cost_rows, warnings, started_at, finished_at
		FROM goimpact_runs
		WHERE id = $1
	`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, errors.DatabaseError("get run", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first, optionally limited
func (r *ResultRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	query := `
		SELECT id, report_year, scenario_rows, outcome_rows, cost_rows, warnings, started_at, finished_at
		FROM goimpact_runs
		ORDER BY started_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	runs := []ports.RunRecord{}
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, errors.DatabaseError("list runs", err)
	}
	return runs, nil
}

// ListScenarios returns the scenario rows of a run
func (r *ResultRepository) ListScenarios(ctx context.Context, id core.RunID) ([]ports.ScenarioRecord, error) {
	if _, err := r.GetRun(ctx, id); err != nil {
		return nil, err
	}
	rows := []ports.ScenarioRecord{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT run_id, scenario_id, market, dimension, group_value, price,
			pct_yes, pct_price_barrier, pct_non_price_barrier, new_customers, newly_active, error
		FROM goimpact_scenarios
		WHERE run_id = $1
		ORDER BY scenario_id, dimension, group_value
	`, id)
	if err != nil {
		return nil, errors.DatabaseError("list scenarios", err)
	}
	return rows, nil
}

// ListHealthOutcomes returns the health outcome rows of a run
func (r *ResultRepository) ListHealthOutcomes(ctx context.Context, id core.RunID) ([]ports.HealthOutcomeRecord, error) {
	if _, err := r.GetRun(ctx, id); err != nil {
		return nil, err
	}
	rows := []ports.HealthOutcomeRecord{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT run_id, scenario_id, factor, cases_saved, deaths_avoided, dalys_avoided,
			direct_saving, indirect_saving, total_saving, error
		FROM goimpact_health_outcomes
		WHERE run_id = $1
		ORDER BY scenario_id, factor
	`, id)
	if err != nil {
		return nil, errors.DatabaseError("list health outcomes", err)
	}
	return rows, nil
}

func withRunID[T any](rows []T, set func(*T)) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	for i := range out {
		set(&out[i])
	}
	return out
}

var _ ports.ResultStore = (*ResultRepository)(nil)
