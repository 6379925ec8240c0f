// Package costs converts base-currency cost-per-case figures into each market's local,
// inflation-adjusted and income- or expenditure-scaled cost.
package costs

import (
	"fmt"
	"strings"

	"goimpact/domain/core"
	"goimpact/domain/lookup"
)

// Record is one row of the base cost-per-case table.
type Record struct {
	Factor     string  `json:"factor"`
	AgeGroup   string  `json:"age_group"`
	Gender     string  `json:"gender"`
	Category   string  `json:"category"`
	Direct     bool    `json:"direct"`
	BaseAmount float64 `json:"cost_per_case_unflated"`
	BaseYear   int     `json:"base_year"` // 0 when unknown
}

// Figure is a Record normalized for one market. Intermediate factors are kept for audit;
// Defined is false when any of them was unavailable and the row is then carried with Err.
type Figure struct {
	Record
	Market           core.Market `json:"-"`
	Geography        string      `json:"geography"`
	ExchangeRate     float64     `json:"forex_rate"`
	LocalAmount      float64     `json:"cost_per_case_local"`
	InflationFactor  float64     `json:"inflation_rate"`
	InflatedAmount   float64     `json:"cost_inflated"`
	AdjustmentFactor float64     `json:"adjustment_factor"`
	AdjustedAmount   float64     `json:"cost_per_case_adjusted"`
	Defined          bool        `json:"defined"`
	Err              error       `json:"-"`
}

// LookupScope keys figures for lookup.Resolve.
func (f Figure) LookupScope() lookup.Scope {
	return lookup.Scope{
		Factor:    f.Factor,
		AgeGroup:  f.AgeGroup,
		Direct:    lookup.Bool(f.Direct),
		Gender:    f.Gender,
		Geography: f.Geography,
	}
}

// YearTable holds a yearly series per country, e.g. CPI or healthcare expenditure.
type YearTable map[string]map[int]float64

// Value returns the entry for country and year.
func (t YearTable) Value(country string, year int) (float64, bool) {
	byYear, ok := t[country]
	if !ok {
		for k, v := range t {
			if strings.EqualFold(k, country) {
				byYear, ok = v, true
				break
			}
		}
	}
	if !ok {
		return 0, false
	}
	v, ok := byYear[year]
	return v, ok
}

// Set stores a value, creating the country row if needed.
func (t YearTable) Set(country string, year int, v float64) {
	if t[country] == nil {
		t[country] = make(map[int]float64)
	}
	t[country][year] = v
}

// IncomeSource selects which income-adjustment sheet a factor uses.
type IncomeSource string

const (
	IncomeSourceUK  IncomeSource = "UK"
	IncomeSourceUSA IncomeSource = "USA"
)

// IncomeFactors maps source sheet → country → factor.
type IncomeFactors map[IncomeSource]map[string]float64

// Factor returns the income adjustment for a country from a source sheet.
func (f IncomeFactors) Factor(src IncomeSource, country string) (float64, error) {
	v, ok := f[src][country]
	if !ok {
		return 0, core.NewMissingReferenceError(fmt.Sprintf("income adjustment (%s)", src), country)
	}
	return v, nil
}

// SourceFor returns the income sheet for a health factor. Osteoporosis costs are
// benchmarked against US incomes; everything else against UK incomes.
func SourceFor(factor string) IncomeSource {
	if strings.EqualFold(factor, "osteoporosis") {
		return IncomeSourceUSA
	}
	return IncomeSourceUK
}

// References are the lookup tables the normalizer reads from.
type References struct {
	CPI         YearTable
	Expenditure YearTable
	Income      IncomeFactors
}
