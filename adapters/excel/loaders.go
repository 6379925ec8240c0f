package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"goimpact/domain/core"
	"goimpact/domain/costs"
	"goimpact/domain/health"
)

// LoadRelativeRisks reads factor, age_group, gender, geography, activity_level and relative_risk.
func LoadRelativeRisks(data *ExcelData) ([]health.RelativeRisk, error) {
	if err := data.Require("factor", "age_group", "gender", "geography", "activity_level", "relative_risk"); err != nil {
		return nil, fmt.Errorf("relative risks: %w", err)
	}
	out := make([]health.RelativeRisk, 0, len(data.Rows))
	for i, row := range data.Rows {
		v, ok := row.Float("relative_risk")
		if !ok {
			return nil, cellError("relative risks", i, "relative_risk", row)
		}
		out = append(out, health.RelativeRisk{
			Factor:        row.String("factor"),
			AgeGroup:      row.String("age_group"),
			Gender:        row.String("gender"),
			Geography:     row.String("geography"),
			ActivityLevel: row.String("activity_level"),
			Value:         v,
		})
	}
	return out, nil
}

// LoadPopulationRisks reads a case, mortality or DALY rate table. rate_per is optional and
// defaults to 1 (rate already a probability).
func LoadPopulationRisks(data *ExcelData) ([]health.PopulationRisk, error) {
	if err := data.Require("factor", "age_group", "gender", "geography", "population_rate"); err != nil {
		return nil, fmt.Errorf("population risks: %w", err)
	}
	out := make([]health.PopulationRisk, 0, len(data.Rows))
	for i, row := range data.Rows {
		rate, ok := row.Float("population_rate")
		if !ok {
			return nil, cellError("population risks", i, "population_rate", row)
		}
		per, ok := row.Float("rate_per")
		if !ok {
			per = 1
		}
		out = append(out, health.PopulationRisk{
			Factor:    row.String("factor"),
			AgeGroup:  row.String("age_group"),
			Gender:    row.String("gender"),
			Geography: row.String("geography"),
			Rate:      rate,
			Per:       per,
		})
	}
	return out, nil
}

// LoadActivityLevels reads age_group, gender, geography, activity_level and activity_rate.
func LoadActivityLevels(data *ExcelData) ([]health.ActivityLevel, error) {
	if err := data.Require("age_group", "gender", "geography", "activity_level", "activity_rate"); err != nil {
		return nil, fmt.Errorf("activity levels: %w", err)
	}
	out := make([]health.ActivityLevel, 0, len(data.Rows))
	for i, row := range data.Rows {
		v, ok := row.Float("activity_rate")
		if !ok {
			return nil, cellError("activity levels", i, "activity_rate", row)
		}
		out = append(out, health.ActivityLevel{
			AgeGroup:      row.String("age_group"),
			Gender:        row.String("gender"),
			Geography:     row.String("geography"),
			ActivityLevel: row.String("activity_level"),
			Rate:          v,
		})
	}
	return out, nil
}

// LoadCostRecords reads the base cost-per-case table. A missing base_year is kept as 0 and
// surfaces later as an undefined figure.
func LoadCostRecords(data *ExcelData) ([]costs.Record, error) {
	if err := data.Require("factor", "age_group", "gender", "category", "direct", "cost_per_case_unflated"); err != nil {
		return nil, fmt.Errorf("cost per case: %w", err)
	}
	out := make([]costs.Record, 0, len(data.Rows))
	for i, row := range data.Rows {
		amount, ok := row.Float("cost_per_case_unflated")
		if !ok {
			return nil, cellError("cost per case", i, "cost_per_case_unflated", row)
		}
		direct, ok := row.Bool("direct")
		if !ok {
			return nil, cellError("cost per case", i, "direct", row)
		}
		year, _ := row.Int("base_year")
		out = append(out, costs.Record{
			Factor:     row.String("factor"),
			AgeGroup:   row.String("age_group"),
			Gender:     row.String("gender"),
			Category:   row.String("category"),
			Direct:     direct,
			BaseAmount: amount,
			BaseYear:   year,
		})
	}
	return out, nil
}

// LoadYearTable reads a wide table: one key column and one column per year. Empty cells
// are skipped.
func LoadYearTable(data *ExcelData, keyColumn string) (costs.YearTable, error) {
	if err := data.Require(keyColumn); err != nil {
		return nil, err
	}
	years := make(map[string]int)
	for _, h := range data.Headers {
		if y, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(h), ".0")); err == nil {
			years[h] = y
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no year columns besides %q", keyColumn)
	}
	table := make(costs.YearTable)
	for _, row := range data.Rows {
		key := row.String(keyColumn)
		if key == "" {
			continue
		}
		for col, year := range years {
			if v, ok := row.Float(col); ok {
				table.Set(key, year, v)
			}
		}
	}
	return table, nil
}

// LoadCPI reads consumer price indices keyed by "country".
func LoadCPI(data *ExcelData) (costs.YearTable, error) {
	t, err := LoadYearTable(data, "country")
	if err != nil {
		return nil, fmt.Errorf("cpi: %w", err)
	}
	return t, nil
}

// LoadExpenditure reads healthcare expenditure keyed by "Country Name".
func LoadExpenditure(data *ExcelData) (costs.YearTable, error) {
	t, err := LoadYearTable(data, "Country Name")
	if err != nil {
		return nil, fmt.Errorf("expenditure: %w", err)
	}
	return t, nil
}

// LoadIncomeFactors reads one income-adjustment sheet ("Country Name", "factor").
func LoadIncomeFactors(data *ExcelData) (map[string]float64, error) {
	if err := data.Require("Country Name", "factor"); err != nil {
		return nil, fmt.Errorf("income factors: %w", err)
	}
	out := make(map[string]float64, len(data.Rows))
	for i, row := range data.Rows {
		v, ok := row.Float("factor")
		if !ok {
			return nil, cellError("income factors", i, "factor", row)
		}
		out[row.String("Country Name")] = v
	}
	return out, nil
}

// Penetration is the market-size table: group-level rows plus market totals (rows with an
// empty dimension) that still need splitting.
type Penetration struct {
	Groups map[core.GroupKey]float64
	Totals map[core.Market]float64
}

// LoadPenetration reads market, dimension, value and non_customers.
func LoadPenetration(data *ExcelData) (Penetration, error) {
	p := Penetration{Groups: make(map[core.GroupKey]float64), Totals: make(map[core.Market]float64)}
	if err := data.Require("market", "non_customers"); err != nil {
		return p, fmt.Errorf("penetration: %w", err)
	}
	for i, row := range data.Rows {
		m, err := core.ParseMarket(row.String("market"))
		if err != nil {
			return p, fmt.Errorf("penetration row %d: %w", i+2, err)
		}
		n, ok := row.Float("non_customers")
		if !ok {
			return p, cellError("penetration", i, "non_customers", row)
		}
		dim := core.Dimension(strings.ToLower(row.String("dimension")))
		if dim == "" {
			p.Totals[m] += n
			continue
		}
		p.Groups[core.GroupKey{Market: m, Dimension: dim, Value: row.String("value")}] = n
	}
	return p, nil
}

// FXQuote is one row of an offline exchange-rate table.
type FXQuote struct {
	Pair string
	Date time.Time
	Rate float64
}

// LoadFXTable reads pair, date (YYYY-MM-DD) and rate.
func LoadFXTable(data *ExcelData) ([]FXQuote, error) {
	if err := data.Require("pair", "date", "rate"); err != nil {
		return nil, fmt.Errorf("fx table: %w", err)
	}
	out := make([]FXQuote, 0, len(data.Rows))
	for i, row := range data.Rows {
		d, err := time.Parse("2006-01-02", row.String("date"))
		if err != nil {
			return nil, fmt.Errorf("fx table row %d: %w", i+2, err)
		}
		rate, ok := row.Float("rate")
		if !ok {
			return nil, cellError("fx table", i, "rate", row)
		}
		out = append(out, FXQuote{Pair: row.String("pair"), Date: d, Rate: rate})
	}
	return out, nil
}

func cellError(table string, i int, col string, row RawRowData) error {
	return fmt.Errorf("%s row %d: column %s: invalid value %q", table, i+2, col, row.String(col))
}
