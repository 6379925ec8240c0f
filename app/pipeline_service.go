package app

import (
	"context"
	"fmt"
	"time"

	"goimpact/domain/activity"
	"goimpact/domain/core"
	"goimpact/domain/costs"
	"goimpact/domain/elasticity"
	"goimpact/domain/health"
	"goimpact/domain/outcomes"
	"goimpact/domain/survey"
	"goimpact/internal/errors"
	"goimpact/internal/metrics"
	"goimpact/ports"

	"github.com/rs/zerolog"
)

// PipelineOptions configure a pipeline run
type PipelineOptions struct {
	ReportYear int
	Tiers      []elasticity.Tier
	Dimensions []core.Dimension
	Costs      costs.Options
	Health     health.Options
}

// DefaultPipelineOptions models gender, age and income cuts with the default tiers
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		ReportYear: costs.DefaultOptions().ReportYear,
		Tiers:      elasticity.DefaultTiers(),
		Dimensions: []core.Dimension{core.DimensionGender, core.DimensionAge, core.DimensionIncome},
		Costs:      costs.DefaultOptions(),
		Health:     health.DefaultOptions(),
	}
}

// Inputs are the loaded tables of one run
type Inputs struct {
	Respondents []survey.Respondent
	// Penetration holds group-level non-customer counts; PenetrationTotals holds market
	// totals that are split across groups by survey weight when no group row exists.
	Penetration       map[core.GroupKey]float64
	PenetrationTotals map[core.Market]float64
	Health            health.Tables
	CostRecords       []costs.Record
	References        costs.References
	USDRates          map[core.Market]float64
	// LoadWarnings carries row-level problems found while reading the inputs.
	LoadWarnings []string
}

// PipelineService runs the attribution pipeline end to end
type PipelineService struct {
	opts    PipelineOptions
	rates   ports.RateProvider
	store   ports.ResultStore
	events  ports.EventPublisher
	metrics *metrics.Recorder
	runner  *StageRunner
	log     zerolog.Logger
}

// NewPipelineService creates a pipeline service. store and events may be nil.
func NewPipelineService(opts PipelineOptions, rates ports.RateProvider, store ports.ResultStore, events ports.EventPublisher, rec *metrics.Recorder, log zerolog.Logger) *PipelineService {
	log = log.With().Str("component", "PipelineService").Logger()
	return &PipelineService{
		opts:    opts,
		rates:   rates,
		store:   store,
		events:  events,
		metrics: rec,
		runner:  NewStageRunner(log, rec),
		log:     log,
	}
}

// Run executes every stage, persists the results and publishes completion. Rows with an
// undefined value are kept with their error; only missing tables, invalid configuration
// and cancellation abort the run.
func (s *PipelineService) Run(ctx context.Context, in Inputs) (*RunResult, error) {
	res := newRunResult(s.opts.ReportYear, in.LoadWarnings)
	err := s.run(ctx, in, res)
	s.metrics.RunFinished(err)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("run_id", res.RunID.String()).
		Int("scenarios", len(res.Scenarios)).
		Int("health_outcomes", len(res.Health)).
		Int("warnings", len(res.Warnings)).
		Dur("elapsed", res.FinishedAt.Sub(res.StartedAt)).
		Msg("run complete")
	return res, nil
}

func (s *PipelineService) run(ctx context.Context, in Inputs, res *RunResult) error {
	if err := validateDemand(in); err != nil {
		return err
	}
	if err := validateSupply(in); err != nil {
		return err
	}

	if err := s.runner.Run(ctx, "demand", func(ctx context.Context) error {
		return s.demand(in, res)
	}); err != nil {
		return err
	}
	if err := s.runner.Run(ctx, "costs", func(ctx context.Context) error {
		figures, err := s.normalizeCosts(ctx, in)
		res.Costs = figures
		return err
	}); err != nil {
		return err
	}
	if err := s.runner.Run(ctx, "health", func(ctx context.Context) error {
		return s.healthOutcomes(ctx, in, res)
	}); err != nil {
		return err
	}

	res.FinishedAt = time.Now().UTC()
	s.recordRows(res)

	return s.runner.Run(ctx, "publish", func(ctx context.Context) error {
		return s.publish(ctx, res)
	})
}

// Scenarios runs only the demand side: activity, elasticity, projection and the business
// and social outcomes.
func (s *PipelineService) Scenarios(ctx context.Context, in Inputs) (*RunResult, error) {
	if err := validateDemand(in); err != nil {
		return nil, err
	}
	res := newRunResult(s.opts.ReportYear, in.LoadWarnings)
	err := s.runner.Run(ctx, "demand", func(ctx context.Context) error {
		return s.demand(in, res)
	})
	if err != nil {
		return nil, err
	}
	res.FinishedAt = time.Now().UTC()
	s.recordRows(res)
	return res, nil
}

// Costs normalizes the cost-per-case table for every surveyed market.
func (s *PipelineService) Costs(ctx context.Context, in Inputs) (*RunResult, error) {
	if len(in.CostRecords) == 0 {
		return nil, errors.MissingInput("cost_per_case")
	}
	res := newRunResult(s.opts.ReportYear, in.LoadWarnings)
	err := s.runner.Run(ctx, "costs", func(ctx context.Context) error {
		figures, err := s.normalizeCosts(ctx, in)
		res.Costs = figures
		return err
	})
	if err != nil {
		return nil, err
	}
	res.FinishedAt = time.Now().UTC()
	s.recordRows(res)
	return res, nil
}

func validateDemand(in Inputs) error {
	switch {
	case len(in.Respondents) == 0:
		return errors.MissingInput("survey")
	case len(in.Penetration) == 0 && len(in.PenetrationTotals) == 0:
		return errors.MissingInput("market_penetration")
	}
	return nil
}

func validateSupply(in Inputs) error {
	switch {
	case len(in.CostRecords) == 0:
		return errors.MissingInput("cost_per_case")
	case len(in.Health.RelativeRisks) == 0:
		return errors.MissingInput("relative_risks")
	case len(in.Health.Cases) == 0:
		return errors.MissingInput("population_risks")
	case len(in.Health.Mortality) == 0:
		return errors.MissingInput("population_mortality_risks")
	case len(in.Health.DALYs) == 0:
		return errors.MissingInput("population_dalys")
	case len(in.Health.ActivityLevels) == 0:
		return errors.MissingInput("activity_levels")
	}
	return nil
}

func (s *PipelineService) demand(in Inputs, res *RunResult) error {
	if len(s.opts.Dimensions) == 0 {
		return errors.ConfigInvalid("no dimensions configured")
	}
	for _, dim := range s.opts.Dimensions {
		summaries := activity.Summarize(in.Respondents, dim)
		res.Activity = append(res.Activity, summaries...)
		res.Spending = append(res.Spending, activity.SummarizeSpending(in.Respondents, dim, in.USDRates)...)
		res.Social = append(res.Social, outcomes.SocialOutcomes(in.Respondents, dim)...)

		rates, err := elasticity.Rates(elasticity.ResponsesFrom(in.Respondents, dim), s.opts.Tiers)
		if err != nil {
			return errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("elasticity rates by %s: %w", dim, err))
		}
		rates = elasticity.KeepModelled(rates)
		res.Rates = append(res.Rates, rates...)

		scenarios := elasticity.Project(rates, s.penetration(in, dim), activity.NewChangeLookup(summaries))
		for _, sc := range scenarios {
			if sc.ChangeFallback {
				res.warn("activity change for %s uses the market mean", sc.Group)
			}
		}
		res.Scenarios = append(res.Scenarios, scenarios...)
	}
	res.Business = outcomes.BusinessOutcomes(res.Scenarios, res.Spending)
	return nil
}

// penetration returns the group populations on dim. Explicit group rows win over the
// weighted split of a market total.
func (s *PipelineService) penetration(in Inputs, dim core.Dimension) map[core.GroupKey]float64 {
	out := elasticity.SplitPenetration(in.PenetrationTotals, in.Respondents, dim)
	for k, v := range in.Penetration {
		if k.Dimension == dim {
			out[k] = v
		}
	}
	return out
}

func (s *PipelineService) normalizeCosts(ctx context.Context, in Inputs) ([]costs.Figure, error) {
	opts := s.opts.Costs
	opts.ReportYear = s.opts.ReportYear
	n := costs.NewNormalizer(s.rates, in.References, opts)
	return n.Normalize(ctx, in.CostRecords, surveyedMarkets(in.Respondents))
}

// healthOutcomes evaluates the gender scenarios: the health tables are cut by gender only.
func (s *PipelineService) healthOutcomes(ctx context.Context, in Inputs, res *RunResult) error {
	tables := in.Health
	tables.Costs = res.Costs
	calc := health.NewCalculator(tables, s.opts.Health)

	var reqs []health.Request
	for _, sc := range res.Scenarios {
		if sc.Group.Dimension != core.DimensionGender {
			continue
		}
		if sc.Err != nil {
			res.warn("scenario %s skipped for health outcomes: %v", sc.ID, sc.Err)
			continue
		}
		reqs = append(reqs, health.Request{
			ScenarioID:  sc.ID.String(),
			Gender:      healthGender(sc.Group.Value),
			Geography:   sc.Group.Market.Geography(),
			NewlyActive: sc.NewlyActive,
		})
	}

	rows, err := calc.Evaluate(ctx, reqs)
	if err != nil {
		return err
	}
	for _, o := range rows {
		for _, w := range o.Warnings {
			s.metrics.Warning(w.Table)
			res.warn("%s %s/%s: %s", o.ScenarioID, w.Table, w.Key, w.Message)
		}
	}
	res.Health = rows
	return nil
}

func (s *PipelineService) recordRows(res *RunResult) {
	for _, t := range res.Tables() {
		c := countRows(t)
		s.metrics.Rows(c.Table, c.Rows, c.Failed)
	}
}

func (s *PipelineService) publish(ctx context.Context, res *RunResult) error {
	if s.store != nil {
		if err := s.store.SaveRun(ctx, res.Records()); err != nil {
			return errors.Wrap(err, "failed to save run")
		}
	}
	if s.events != nil {
		payload := ports.RunCompleted{
			RunID:        res.RunID.String(),
			ScenarioRows: len(res.Scenarios),
			OutcomeRows:  len(res.Health),
			Warnings:     len(res.Warnings),
		}
		if err := s.events.Publish(ctx, ports.SubjectRunCompleted, payload); err != nil {
			// Results are already stored; a lost notification does not fail the run.
			s.log.Warn().Err(err).Str("run_id", res.RunID.String()).Msg("failed to publish run completion")
		}
	}
	return nil
}

// surveyedMarkets lists the markets present in the survey, in market order. Without a
// survey every market is returned.
func surveyedMarkets(rs []survey.Respondent) []core.Market {
	if len(rs) == 0 {
		return core.Markets()
	}
	seen := make(map[core.Market]bool)
	for _, r := range rs {
		seen[r.Market] = true
	}
	var out []core.Market
	for _, m := range core.Markets() {
		if seen[m] {
			out = append(out, m)
		}
	}
	return out
}

func healthGender(label string) string {
	for _, g := range []core.Gender{core.GenderMale, core.GenderFemale} {
		if g.Label() == label {
			return g.HealthKey()
		}
	}
	return core.GenderOther.HealthKey()
}
