package costs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goimpact/domain/core"
	"goimpact/ports"
)

// Options control normalization.
type Options struct {
	ReportYear   int
	BaseCurrency string
	FXMonth      time.Month
	FXDay        int
	AgeGroup     string // only records of this age group are normalized
	Category     string // only records of this category are normalized
}

// DefaultOptions normalize GBP costs to 2024 prices at mid-October rates.
func DefaultOptions() Options {
	return Options{
		ReportYear:   2024,
		BaseCurrency: "GBP",
		FXMonth:      time.October,
		FXDay:        17,
		AgeGroup:     "adult",
		Category:     "health",
	}
}

// Normalizer applies FX, CPI inflation and the income/expenditure factor to cost records.
type Normalizer struct {
	rates ports.RateProvider
	refs  References
	opts  Options
}

func NewNormalizer(rates ports.RateProvider, refs References, opts Options) *Normalizer {
	return &Normalizer{rates: rates, refs: refs, opts: opts}
}

// Normalize produces one Figure per (market, eligible record). Rows whose rate, CPI or
// factor is unavailable are retained with Defined=false. Only context cancellation aborts.
func (n *Normalizer) Normalize(ctx context.Context, records []Record, markets []core.Market) ([]Figure, error) {
	var out []Figure
	for _, m := range markets {
		pair := ports.CurrencyPair{Base: n.opts.BaseCurrency, Quote: m.Currency()}
		for _, rec := range records {
			if !n.eligible(rec) {
				continue
			}
			fig, err := n.normalizeOne(ctx, rec, m, pair)
			if err != nil {
				return nil, err
			}
			out = append(out, fig)
		}
	}
	return out, nil
}

func (n *Normalizer) eligible(rec Record) bool {
	if n.opts.AgeGroup != "" && rec.AgeGroup != n.opts.AgeGroup {
		return false
	}
	if n.opts.Category != "" && rec.Category != n.opts.Category {
		return false
	}
	return true
}

func (n *Normalizer) normalizeOne(ctx context.Context, rec Record, m core.Market, pair ports.CurrencyPair) (Figure, error) {
	geo := m.Geography()
	fig := Figure{Record: rec, Market: m, Geography: geo}

	if rec.BaseYear <= 0 {
		fig.Err = core.NewMissingReferenceError("cost base year", rec.Factor)
		return fig, nil
	}

	rate, err := n.exchangeRate(ctx, pair, rec.BaseYear)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fig, ctxErr
		}
		fig.Err = err
		return fig, nil
	}
	fig.ExchangeRate = rate
	fig.LocalAmount = rec.BaseAmount * rate

	inflation, err := n.inflation(geo, rec.BaseYear)
	if err != nil {
		fig.Err = err
		return fig, nil
	}
	fig.InflationFactor = inflation
	fig.InflatedAmount = fig.LocalAmount * inflation

	factor, err := n.adjustment(rec, geo)
	if err != nil {
		fig.Err = err
		return fig, nil
	}
	fig.AdjustmentFactor = factor
	fig.AdjustedAmount = rec.BaseAmount * rate * inflation * factor
	fig.Defined = true
	return fig, nil
}

func (n *Normalizer) exchangeRate(ctx context.Context, pair ports.CurrencyPair, year int) (float64, error) {
	if pair.Identity() {
		return 1, nil
	}
	date := time.Date(year, n.opts.FXMonth, n.opts.FXDay, 0, 0, 0, 0, time.UTC)
	rate, ok, err := n.rates.Rate(ctx, pair, date)
	if err != nil {
		if errors.Is(err, core.ErrRateUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s on %s: %v", core.ErrRateUnavailable, pair, date.Format("2006-01-02"), err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s on %s", core.ErrRateUnavailable, pair, date.Format("2006-01-02"))
	}
	return rate, nil
}

// inflation is CPI(report year) / CPI(base year) for the geography.
func (n *Normalizer) inflation(geo string, baseYear int) (float64, error) {
	start, ok := n.refs.CPI.Value(geo, baseYear)
	if !ok || start == 0 {
		return 0, fmt.Errorf("%w: %s %d", core.ErrCPIUnavailable, geo, baseYear)
	}
	end, ok := n.refs.CPI.Value(geo, n.opts.ReportYear)
	if !ok {
		return 0, fmt.Errorf("%w: %s %d", core.ErrCPIUnavailable, geo, n.opts.ReportYear)
	}
	return end / start, nil
}

// adjustment is the report-year healthcare expenditure ratio for direct costs and the
// income adjustment factor otherwise.
func (n *Normalizer) adjustment(rec Record, geo string) (float64, error) {
	if rec.Direct {
		v, ok := n.refs.Expenditure.Value(geo, n.opts.ReportYear)
		if !ok {
			return 0, core.NewMissingReferenceError("healthcare expenditure", fmt.Sprintf("%s %d", geo, n.opts.ReportYear))
		}
		return v, nil
	}
	return n.refs.Income.Factor(SourceFor(rec.Factor), geo)
}
