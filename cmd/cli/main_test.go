package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"goimpact/app"
	"goimpact/internal/config"
	"goimpact/internal/errors"
	"goimpact/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) *env {
	t.Helper()
	return &env{cfg: config.Defaults(), log: zerolog.Nop()}
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	e := testEnv(t)
	e.cfg.Pipeline.ReportYear = 2023
	e.cfg.Pipeline.FXMonth = 3
	e.cfg.Pipeline.Workers = 2
	e.cfg.Pipeline.Dimensions = []string{"gender"}

	opts, err := e.pipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, 2023, opts.ReportYear)
	assert.Equal(t, 2023, opts.Costs.ReportYear)
	assert.Equal(t, time.March, opts.Costs.FXMonth)
	assert.Equal(t, 2, opts.Health.Workers)
	assert.Len(t, opts.Dimensions, 1)
	assert.Len(t, opts.Tiers, 5)
}

func TestInputLoaderMissingPath(t *testing.T) {
	e := testEnv(t)
	e.cfg.Inputs.CostPerCase = ""

	err := e.loader().costs(&app.Inputs{})
	assert.Equal(t, errors.CodeMissingInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "cost_per_case")
}

func TestInputLoaderMissingFile(t *testing.T) {
	e := testEnv(t)
	e.cfg.Inputs.RelativeRisks = filepath.Join(t.TempDir(), "absent.csv")

	err := e.loader().health(&app.Inputs{})
	assert.Equal(t, errors.CodeMissingInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "relative_risks")
}

func TestRatesFromTableShiftForward(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.csv")
	require.NoError(t, os.WriteFile(path, []byte("pair,date,rate\nGBP/AUD,2019-10-21,1.9\n"), 0o644))

	e := testEnv(t)
	e.cfg.Inputs.FXTable = path
	rates, err := e.rates()
	require.NoError(t, err)

	// Saturday: the quote two days later is used
	sat := time.Date(2019, time.October, 19, 0, 0, 0, 0, time.UTC)
	rate, ok, err := rates.Rate(context.Background(), ports.CurrencyPair{Base: "GBP", Quote: "AUD"}, sat)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.9, rate)

	_, _, err = rates.Rate(context.Background(), ports.CurrencyPair{Base: "GBP", Quote: "JPY"}, sat)
	assert.Error(t, err)
}
