package health

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"goimpact/domain/lookup"
	"goimpact/domain/risk"

	"golang.org/x/sync/errgroup"
)

// Options select the reference cells and fan-out.
type Options struct {
	Factors             []string
	AgeGroup            string
	RiskGeography       string // relative risks and activity levels
	PopulationGeography string // population, mortality and DALY rates
	FairlyActive        bool   // model a fairly-active level with the three-way split
	Workers             int
}

func DefaultOptions() Options {
	return Options{
		Factors:             DefaultFactors(),
		AgeGroup:            "adult",
		RiskGeography:       "england",
		PopulationGeography: lookup.GeographyGlobal,
		FairlyActive:        true,
		Workers:             4,
	}
}

// Request asks for the outcomes of one scenario row.
type Request struct {
	ScenarioID        string
	Gender            string // male, female or all
	Geography         string // cost geography of the market
	NewlyActive       float64
	NewlyFairlyActive float64
}

// Outcome is one (scenario, factor) result. Err carries risk failures; CostErr carries
// cost lookups that left the savings undefined.
type Outcome struct {
	ScenarioID  string  `json:"scenario_id"`
	Factor      string  `json:"factor"`
	Gender      string  `json:"gender"`
	Geography   string  `json:"geography"`
	NewlyActive float64 `json:"newly_active_customers"`

	Rates  risk.Rates `json:"rates"`
	Cases  risk.Saved `json:"cases_saved"`
	Deaths risk.Saved `json:"deaths_saved"`
	DALYs  risk.Saved `json:"dalys_saved"`

	DirectCostPerCase   float64 `json:"direct_cost_per_case"`
	IndirectCostPerCase float64 `json:"indirect_cost_per_case"`
	DirectSaving        float64 `json:"direct_cost_saving"`
	IndirectSaving      float64 `json:"indirect_cost_saving"`
	TotalSaving         float64 `json:"total_saving"`
	SavingDefined       bool    `json:"saving_defined"`

	Warnings []lookup.Warning `json:"warnings,omitempty"`
	Err      error            `json:"-"`
	CostErr  error            `json:"-"`
}

// Calculator evaluates health outcomes against fixed reference tables.
type Calculator struct {
	tables Tables
	opts   Options
}

func NewCalculator(tables Tables, opts Options) *Calculator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if len(opts.Factors) == 0 {
		opts.Factors = DefaultFactors()
	}
	return &Calculator{tables: tables, opts: opts}
}

// FindOutcomes computes every configured factor for one request. Factors run concurrently;
// results keep the configured factor order.
func (c *Calculator) FindOutcomes(ctx context.Context, req Request) ([]Outcome, error) {
	out := make([]Outcome, len(c.opts.Factors))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, factor := range c.opts.Factors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = c.outcome(req, factor)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate runs FindOutcomes for each request in order.
func (c *Calculator) Evaluate(ctx context.Context, reqs []Request) ([]Outcome, error) {
	var out []Outcome
	for _, req := range reqs {
		rows, err := c.FindOutcomes(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (c *Calculator) outcome(req Request, factor string) Outcome {
	o := Outcome{
		ScenarioID:  req.ScenarioID,
		Factor:      factor,
		Gender:      req.Gender,
		Geography:   req.Geography,
		NewlyActive: req.NewlyActive,
	}

	inputs, err := c.riskInputs(req, factor, &o.Warnings)
	if err != nil {
		o.Err = err
		return o
	}

	var errs []error
	measure := func(name string, table []PopulationRisk) (risk.Rates, risk.Saved, bool) {
		pop, warns, err := lookup.Resolve(name, table, c.scope(factor, req.Gender, c.opts.PopulationGeography))
		o.Warnings = append(o.Warnings, warns...)
		if err != nil {
			errs = append(errs, err)
			return risk.Rates{}, risk.Saved{}, false
		}
		in := inputs
		in.PopulationRisk = pop.Probability()
		rates, err := risk.Decompose(in)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return risk.Rates{}, risk.Saved{}, false
		}
		return rates, risk.CasesSaved(rates, req.NewlyActive, req.NewlyFairlyActive), true
	}

	rates, cases, casesOK := measure("population_risks", c.tables.Cases)
	o.Rates, o.Cases = rates, cases
	_, o.Deaths, _ = measure("population_mortality_risks", c.tables.Mortality)
	_, o.DALYs, _ = measure("population_dalys", c.tables.DALYs)
	o.Err = errors.Join(errs...)

	if casesOK {
		c.monetize(&o, factor)
	}
	return o
}

func (c *Calculator) riskInputs(req Request, factor string, warnings *[]lookup.Warning) (risk.Inputs, error) {
	var in risk.Inputs

	active, err := c.activityRate(req.Gender, LevelActive, warnings)
	if err != nil {
		return in, err
	}
	rrActive, err := c.relativeRisk(factor, req.Gender, LevelActive, warnings)
	if err != nil {
		return in, err
	}
	in.ActiveShare = active
	in.RelativeRiskActive = rrActive

	if !c.opts.FairlyActive {
		return in, nil
	}
	fairly, errA := c.activityRate(req.Gender, LevelFairlyActive, warnings)
	rrFairly, errR := c.relativeRisk(factor, req.Gender, LevelFairlyActive, warnings)
	if errA != nil || errR != nil {
		*warnings = append(*warnings, lookup.Warning{
			Table:   "relative_risks",
			Key:     factor,
			Message: "no fairly active inputs, using two-way split",
		})
		return in, nil
	}
	in.FairlyActiveShare = fairly
	in.RelativeRiskFairlyActive = rrFairly
	in.ThreeWay = true
	return in, nil
}

func (c *Calculator) activityRate(gender, level string, warnings *[]lookup.Warning) (float64, error) {
	want := c.scope("", gender, c.opts.RiskGeography)
	want.ActivityLevel = level
	row, warns, err := lookup.Resolve("activity_levels", c.tables.ActivityLevels, want)
	*warnings = append(*warnings, warns...)
	if err != nil {
		return 0, err
	}
	return row.Rate, nil
}

func (c *Calculator) relativeRisk(factor, gender, level string, warnings *[]lookup.Warning) (float64, error) {
	want := c.scope(factor, gender, c.opts.RiskGeography)
	want.ActivityLevel = level
	row, warns, err := lookup.Resolve("relative_risks", c.tables.RelativeRisks, want)
	*warnings = append(*warnings, warns...)
	if err != nil {
		return 0, err
	}
	return row.Value, nil
}

// monetize prices active plus fairly-active avoided cases. Costs are looked up for all
// genders in the market's geography.
func (c *Calculator) monetize(o *Outcome, factor string) {
	saved := o.Cases.Total()

	direct, errD := c.cost(o, factor, true)
	indirect, errI := c.cost(o, factor, false)
	if err := errors.Join(errD, errI); err != nil {
		o.CostErr = err
		return
	}
	o.DirectCostPerCase = direct
	o.IndirectCostPerCase = indirect
	o.DirectSaving = saved * direct
	o.IndirectSaving = saved * indirect
	o.TotalSaving = o.DirectSaving + o.IndirectSaving
	o.SavingDefined = !math.IsNaN(o.TotalSaving) && !math.IsInf(o.TotalSaving, 0)
}

func (c *Calculator) cost(o *Outcome, factor string, direct bool) (float64, error) {
	want := c.scope(factor, lookup.GenderAll, o.Geography)
	want.Direct = lookup.Bool(direct)
	fig, warns, err := lookup.Resolve("cost_per_case_adjusted", c.tables.Costs, want)
	o.Warnings = append(o.Warnings, warns...)
	if err != nil {
		return 0, err
	}
	if !fig.Defined {
		kind := "indirect"
		if direct {
			kind = "direct"
		}
		return 0, fmt.Errorf("%s cost for %s in %s undefined: %w", kind, factor, fig.Geography, fig.Err)
	}
	return fig.AdjustedAmount, nil
}

func (c *Calculator) scope(factor, gender, geography string) lookup.Scope {
	return lookup.Scope{
		Factor:    factor,
		AgeGroup:  c.opts.AgeGroup,
		Gender:    strings.ToLower(gender),
		Geography: geography,
	}
}
