// Package expenditure extrapolates healthcare expenditure ratios per country with a
// (optionally recency-weighted) linear trend.
package expenditure

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"goimpact/domain/costs"

	"gonum.org/v1/gonum/stat"
)

// Mode selects plain or recency-weighted least squares.
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeWeighted Mode = "weighted"
)

// Options configure the fit window and the prediction horizon.
type Options struct {
	FitFrom          int
	FitTo            int // inclusive
	PredictFrom      int
	PredictTo        int // inclusive
	Mode             Mode
	RecentYears      int
	RecentWeight     float64
	ExcludeCountries []string
}

func DefaultOptions() Options {
	return Options{
		FitFrom:          2008,
		FitTo:            2021,
		PredictFrom:      2022,
		PredictTo:        2024,
		Mode:             ModeWeighted,
		RecentYears:      6,
		RecentWeight:     3,
		ExcludeCountries: []string{"United Kingdom"},
	}
}

// Trend is the fitted line for one country.
type Trend struct {
	Country   string
	Intercept float64
	Slope     float64
	Points    int
}

// At evaluates the trend in a year.
func (t Trend) At(year int) float64 { return t.Intercept + t.Slope*float64(year) }

// Predict fits each country's history and returns a table holding the historical values and
// the predicted years. Countries with fewer than two usable points are reported as errors
// alongside the table.
func Predict(history costs.YearTable, opts Options) (costs.YearTable, []Trend, []error) {
	out := costs.YearTable{}
	var trends []Trend
	var errs []error

	countries := make([]string, 0, len(history))
	for c := range history {
		if !excluded(c, opts.ExcludeCountries) {
			countries = append(countries, c)
		}
	}
	sort.Strings(countries)

	for _, country := range countries {
		series := history[country]
		for y, v := range series {
			out.Set(country, y, v)
		}

		trend, err := Fit(country, series, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		trends = append(trends, trend)
		for y := opts.PredictFrom; y <= opts.PredictTo; y++ {
			out.Set(country, y, trend.At(y))
		}
	}
	return out, trends, errs
}

// Fit runs least squares on the fit window. In weighted mode the last RecentYears of the
// window carry RecentWeight, the rest weight 1.
func Fit(country string, series map[int]float64, opts Options) (Trend, error) {
	var xs, ys, ws []float64
	recentFrom := opts.FitTo - opts.RecentYears + 1
	for y := opts.FitFrom; y <= opts.FitTo; y++ {
		v, ok := series[y]
		if !ok || math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(y))
		ys = append(ys, v)
		w := 1.0
		if opts.Mode == ModeWeighted && y >= recentFrom {
			w = opts.RecentWeight
		}
		ws = append(ws, w)
	}
	if len(xs) < 2 {
		return Trend{}, fmt.Errorf("%s: need at least two years of expenditure, have %d", country, len(xs))
	}
	if opts.Mode != ModeWeighted {
		ws = nil
	}

	alpha, beta := stat.LinearRegression(xs, ys, ws, false)
	return Trend{Country: country, Intercept: alpha, Slope: beta, Points: len(xs)}, nil
}

func excluded(country string, list []string) bool {
	for _, c := range list {
		if strings.EqualFold(c, country) {
			return true
		}
	}
	return false
}
