package main

import (
	"fmt"

	"goimpact/adapters/excel"
	"goimpact/adapters/fxrates"
	"goimpact/app"
	"goimpact/domain/costs"
	"goimpact/domain/elasticity"
	"goimpact/domain/health"
	"goimpact/internal/config"
	"goimpact/internal/errors"

	"github.com/rs/zerolog"
)

// inputLoader reads the configured input files through the spreadsheet adapter.
type inputLoader struct {
	cfg *config.Config
	log zerolog.Logger
}

// read loads one sheet of an input file. table names the input in errors.
func (l inputLoader) read(table, path, sheet string) (*excel.ExcelData, error) {
	if path == "" {
		return nil, errors.MissingInput(table)
	}
	data, err := excel.NewDataReader(path, l.log).ReadSheet(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeMissingInput, errors.Wrapf(err, "input table %s", table))
	}
	return data, nil
}

// demand loads the survey, penetration and USD rates.
func (l inputLoader) demand(in *app.Inputs) error {
	data, err := l.read("survey", l.cfg.Inputs.Survey, l.cfg.Inputs.SurveySheet)
	if err != nil {
		return err
	}
	respondents, skipped := excel.LoadRespondents(data, excel.DefaultSurveyColumns(tierColumns(l.cfg.Pipeline.Tiers)))
	for _, err := range skipped {
		in.LoadWarnings = append(in.LoadWarnings, err.Error())
	}
	for _, r := range respondents {
		for _, err := range r.MappingErrors {
			in.LoadWarnings = append(in.LoadWarnings, fmt.Sprintf("respondent %s: %v", r.ID, err))
		}
	}
	in.Respondents = respondents
	l.log.Info().Int("respondents", len(respondents)).Int("skipped", len(skipped)).Msg("survey loaded")

	data, err = l.read("penetration", l.cfg.Inputs.Penetration, excel.DefaultSheet)
	if err != nil {
		return err
	}
	pen, err := excel.LoadPenetration(data)
	if err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}
	in.Penetration, in.PenetrationTotals = pen.Groups, pen.Totals

	in.USDRates, err = l.cfg.USDRates()
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// costs loads the cost-per-case table and its CPI, expenditure and income references.
func (l inputLoader) costs(in *app.Inputs) error {
	data, err := l.read("cost_per_case", l.cfg.Inputs.CostPerCase, excel.DefaultSheet)
	if err != nil {
		return err
	}
	if in.CostRecords, err = excel.LoadCostRecords(data); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}

	if data, err = l.read("cpi", l.cfg.Inputs.CPI, excel.DefaultSheet); err != nil {
		return err
	}
	if in.References.CPI, err = excel.LoadCPI(data); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}

	if data, err = l.read("expenditure", l.cfg.Inputs.Expenditure, excel.DefaultSheet); err != nil {
		return err
	}
	if in.References.Expenditure, err = excel.LoadExpenditure(data); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}

	in.References.Income = costs.IncomeFactors{}
	for _, src := range []costs.IncomeSource{costs.IncomeSourceUK, costs.IncomeSourceUSA} {
		data, err := l.read("income_factors", l.cfg.Inputs.IncomeFactors, string(src))
		if err != nil {
			return err
		}
		factors, err := excel.LoadIncomeFactors(data)
		if err != nil {
			return errors.WithCode(errors.CodeInvalidInput, err)
		}
		in.References.Income[src] = factors
	}
	return nil
}

// health loads the risk and activity-level reference tables.
func (l inputLoader) health(in *app.Inputs) error {
	data, err := l.read("relative_risks", l.cfg.Inputs.RelativeRisks, excel.DefaultSheet)
	if err != nil {
		return err
	}
	if in.Health.RelativeRisks, err = excel.LoadRelativeRisks(data); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}

	populations := []struct {
		name string
		path string
		dst  *[]health.PopulationRisk
	}{
		{"population_risks", l.cfg.Inputs.PopulationRisks, &in.Health.Cases},
		{"mortality_risks", l.cfg.Inputs.MortalityRisks, &in.Health.Mortality},
		{"dalys", l.cfg.Inputs.DALYs, &in.Health.DALYs},
	}
	for _, p := range populations {
		data, err := l.read(p.name, p.path, excel.DefaultSheet)
		if err != nil {
			return err
		}
		if *p.dst, err = excel.LoadPopulationRisks(data); err != nil {
			return errors.WithCode(errors.CodeInvalidInput, err)
		}
	}

	if data, err = l.read("activity_levels", l.cfg.Inputs.ActivityLevels, excel.DefaultSheet); err != nil {
		return err
	}
	if in.Health.ActivityLevels, err = excel.LoadActivityLevels(data); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}
	return nil
}

// fxTable loads the optional offline exchange-rate table.
func (l inputLoader) fxTable() (*fxrates.TableProvider, error) {
	data, err := l.read("fx_table", l.cfg.Inputs.FXTable, excel.DefaultSheet)
	if err != nil {
		return nil, err
	}
	quotes, err := excel.LoadFXTable(data)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	table := fxrates.NewTableProvider()
	for _, q := range quotes {
		pair, err := fxrates.ParsePair(q.Pair)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		table.Set(pair, q.Date, q.Rate)
	}
	l.log.Info().Int("quotes", table.Len()).Msg("fx table loaded")
	return table, nil
}

func tierColumns(tiers []elasticity.Tier) []string {
	out := make([]string, len(tiers))
	for i, t := range tiers {
		out[i] = t.Column
	}
	return out
}
