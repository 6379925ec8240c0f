package config

import (
	"os"
	"path/filepath"
	"testing"

	"goimpact/domain/core"
	"goimpact/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2024, cfg.Pipeline.ReportYear)
	assert.Equal(t, "GBP", cfg.Pipeline.BaseCurrency)
	assert.Equal(t, 4, cfg.Pipeline.FXMaxAttempts)
	assert.Len(t, cfg.Pipeline.Tiers, 5)
	assert.Equal(t, "Data", cfg.Inputs.SurveySheet)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "goimpact.yaml")
	yaml := `
pipeline:
  report_year: 2023
  workers: 8
  tiers:
    - {column: Q14a, discount: 0.1, label: "10%"}
    - {column: Q14b, discount: 0.5, label: "50%"}
outputs:
  dir: /tmp/out
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("GOIMPACT_WORKERS", "2")
	t.Setenv("DATABASE_URL", "postgres://localhost/goimpact")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2023, cfg.Pipeline.ReportYear)
	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Len(t, cfg.Pipeline.Tiers, 2)
	assert.Equal(t, "/tmp/out", cfg.Outputs.Dir)
	assert.Equal(t, "postgres://localhost/goimpact", cfg.Database.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no tiers", func(c *Config) { c.Pipeline.Tiers = nil }},
		{"report year", func(c *Config) { c.Pipeline.ReportYear = 0 }},
		{"workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"fx date", func(c *Config) { c.Pipeline.FXMonth = 13 }},
		{"dimension", func(c *Config) { c.Pipeline.Dimensions = []string{"shoe_size"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestUSDRates(t *testing.T) {
	rates, err := Defaults().USDRates()
	require.NoError(t, err)
	assert.Len(t, rates, 10)
	assert.Equal(t, 1.0, rates[core.MarketUSA])
	assert.Equal(t, 0.0067, rates[core.MarketJapan])
}
