package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"goimpact/domain/core"
	"goimpact/domain/elasticity"
	"goimpact/domain/health"
	"goimpact/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config is the complete pipeline and service configuration.
type Config struct {
	Inputs   InputConfig    `yaml:"inputs"`
	Outputs  OutputConfig   `yaml:"outputs"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Markets  MarketsConfig  `yaml:"markets"`
	FX       FXConfig       `yaml:"fx"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig holds file paths of every input table.
type InputConfig struct {
	Survey             string `yaml:"survey"`
	SurveySheet        string `yaml:"survey_sheet"`
	Penetration        string `yaml:"penetration"`
	RelativeRisks      string `yaml:"relative_risks"`
	PopulationRisks    string `yaml:"population_risks"`
	MortalityRisks     string `yaml:"mortality_risks"`
	DALYs              string `yaml:"dalys"`
	ActivityLevels     string `yaml:"activity_levels"`
	CostPerCase        string `yaml:"cost_per_case"`
	CPI                string `yaml:"cpi"`
	Expenditure        string `yaml:"expenditure"`
	ExpenditureHistory string `yaml:"expenditure_history"`
	IncomeFactors      string `yaml:"income_factors"`
	FXTable            string `yaml:"fx_table"` // optional offline rate table
}

type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Workbook string `yaml:"workbook"`
	Report   string `yaml:"report"`
}

// PipelineConfig holds the modelling parameters.
type PipelineConfig struct {
	ReportYear    int               `yaml:"report_year"`
	BaseCurrency  string            `yaml:"base_currency"`
	FXMonth       int               `yaml:"fx_month"`
	FXDay         int               `yaml:"fx_day"`
	FXMaxAttempts int               `yaml:"fx_max_attempts"`
	Workers       int               `yaml:"workers"`
	Tiers         []elasticity.Tier `yaml:"tiers"`
	HealthFactors []string          `yaml:"health_factors"`
	FairlyActive  bool              `yaml:"fairly_active"`
	Dimensions    []string          `yaml:"dimensions"`
}

// MarketsConfig holds per-market constants keyed by market label or geography.
type MarketsConfig struct {
	USDRates map[string]float64 `yaml:"usd_rates"`
}

type FXConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FXTimeout is the per-request timeout of the HTTP rate provider.
func (c *Config) FXTimeout() time.Duration {
	return time.Duration(c.FX.TimeoutMs) * time.Millisecond
}

// Defaults returns the configuration used when no file or environment is given.
func Defaults() *Config {
	return &Config{
		Inputs: InputConfig{
			Survey:             "data/survey_data/Elasticity_Questionnaire_v3.xlsx",
			SurveySheet:        "Data",
			Penetration:        "data/inputs/market_penetration.csv",
			RelativeRisks:      "data/health_data/relative_risks.csv",
			PopulationRisks:    "data/health_data/population_risks.csv",
			MortalityRisks:     "data/health_data/population_mortality_risks.csv",
			DALYs:              "data/health_data/population_dalys.csv",
			ActivityLevels:     "data/health_data/activity_levels.csv",
			CostPerCase:        "data/inputs/cost_per_case.csv",
			CPI:                "data/inputs/cpi.csv",
			Expenditure:        "data/inputs/predicted_healthcare_expenditure.xlsx",
			ExpenditureHistory: "data/health_data/input/healthcare_expenditure.xlsx",
			IncomeFactors:      "data/inputs/income_adjustment_factor.xlsx",
		},
		Outputs: OutputConfig{
			Dir:      "data/outputs",
			Workbook: "impact.xlsx",
			Report:   "report.html",
		},
		Pipeline: PipelineConfig{
			ReportYear:    2024,
			BaseCurrency:  "GBP",
			FXMonth:       int(time.October),
			FXDay:         17,
			FXMaxAttempts: 4,
			Workers:       4,
			Tiers:         elasticity.DefaultTiers(),
			HealthFactors: health.DefaultFactors(),
			FairlyActive:  true,
			Dimensions:    []string{string(core.DimensionGender), string(core.DimensionAge), string(core.DimensionIncome)},
		},
		Markets: MarketsConfig{
			USDRates: map[string]float64{
				"Australia":   0.64,
				"Canada":      0.73,
				"Germany":     1.05,
				"Ireland":     1.05,
				"Japan":       0.0067,
				"KSA":         0.27,
				"New Zealand": 0.59,
				"Singapore":   0.73,
				"Spain":       1.05,
				"USA":         1,
			},
		},
		FX: FXConfig{
			BaseURL:   "https://api.frankfurter.app",
			TimeoutMs: 10000,
		},
		Events: EventsConfig{},
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load applies defaults, then the optional YAML file at path, then environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read config: %w", err))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse config %s: %w", path, err))
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Inputs.Survey = getEnvOrDefault("GOIMPACT_SURVEY_FILE", cfg.Inputs.Survey)
	cfg.Outputs.Dir = getEnvOrDefault("GOIMPACT_OUTPUT_DIR", cfg.Outputs.Dir)
	cfg.Pipeline.ReportYear = getEnvIntOrDefault("GOIMPACT_REPORT_YEAR", cfg.Pipeline.ReportYear)
	cfg.Pipeline.Workers = getEnvIntOrDefault("GOIMPACT_WORKERS", cfg.Pipeline.Workers)
	cfg.Pipeline.FXMaxAttempts = getEnvIntOrDefault("GOIMPACT_FX_MAX_ATTEMPTS", cfg.Pipeline.FXMaxAttempts)
	cfg.Pipeline.FairlyActive = getEnvBoolOrDefault("GOIMPACT_FAIRLY_ACTIVE", cfg.Pipeline.FairlyActive)
	cfg.Inputs.FXTable = getEnvOrDefault("GOIMPACT_FX_TABLE", cfg.Inputs.FXTable)
	cfg.FX.BaseURL = getEnvOrDefault("FX_BASE_URL", cfg.FX.BaseURL)
	cfg.FX.TimeoutMs = getEnvIntOrDefault("FX_TIMEOUT_MS", cfg.FX.TimeoutMs)
	cfg.Database.URL = getEnvOrDefault("DATABASE_URL", cfg.Database.URL)
	cfg.Events.NATSURL = getEnvOrDefault("NATS_URL", cfg.Events.NATSURL)
	cfg.Server.Port = getEnvIntOrDefault("PORT", cfg.Server.Port)
	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvOrDefault("LOG_FORMAT", cfg.Logging.Format)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if err := elasticity.ValidateTiers(c.Pipeline.Tiers); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if c.Pipeline.ReportYear <= 0 {
		return errors.ConfigInvalid("report year must be positive")
	}
	if c.Pipeline.Workers < 1 {
		return errors.ConfigInvalid("workers must be at least 1")
	}
	if c.Pipeline.FXMaxAttempts < 1 {
		return errors.ConfigInvalid("fx max attempts must be at least 1")
	}
	if c.Pipeline.FXMonth < 1 || c.Pipeline.FXMonth > 12 || c.Pipeline.FXDay < 1 || c.Pipeline.FXDay > 31 {
		return errors.ConfigInvalid(fmt.Sprintf("invalid fx date %02d-%02d", c.Pipeline.FXMonth, c.Pipeline.FXDay))
	}
	if strings.TrimSpace(c.Pipeline.BaseCurrency) == "" {
		return errors.ConfigInvalid("base currency is required")
	}
	if _, err := c.DimensionList(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

// DimensionList parses the configured scenario dimensions.
func (c *Config) DimensionList() ([]core.Dimension, error) {
	out := make([]core.Dimension, 0, len(c.Pipeline.Dimensions))
	for _, d := range c.Pipeline.Dimensions {
		dim := core.Dimension(strings.TrimSpace(d))
		if len(core.ModelledValues(dim)) == 0 {
			return nil, fmt.Errorf("unknown scenario dimension %q", d)
		}
		out = append(out, dim)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one scenario dimension is required")
	}
	return out, nil
}

// USDRates resolves the configured USD conversion rates to markets. Unknown keys are
// reported so a typo does not silently drop a market.
func (c *Config) USDRates() (map[core.Market]float64, error) {
	out := make(map[core.Market]float64, len(c.Markets.USDRates))
	for name, rate := range c.Markets.USDRates {
		m, err := core.ParseMarket(name)
		if err != nil {
			return nil, err
		}
		out[m] = rate
	}
	return out, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
