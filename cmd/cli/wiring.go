package main

import (
	"context"
	"time"

	"goimpact/adapters/fxrates"
	"goimpact/adapters/postgres"
	"goimpact/app"
	"goimpact/internal/config"
	"goimpact/internal/events"
	"goimpact/internal/metrics"
	"goimpact/ports"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// env is the state shared by every subcommand once the root command has run.
type env struct {
	cfg *config.Config
	log zerolog.Logger
	rec *metrics.Recorder
}

func (e *env) loader() inputLoader {
	return inputLoader{cfg: e.cfg, log: e.log.With().Str("component", "inputs").Logger()}
}

func (e *env) pipelineOptions() (app.PipelineOptions, error) {
	dims, err := e.cfg.DimensionList()
	if err != nil {
		return app.PipelineOptions{}, err
	}
	p := e.cfg.Pipeline
	opts := app.DefaultPipelineOptions()
	opts.ReportYear = p.ReportYear
	opts.Tiers = p.Tiers
	opts.Dimensions = dims
	opts.Costs.ReportYear = p.ReportYear
	opts.Costs.BaseCurrency = p.BaseCurrency
	opts.Costs.FXMonth = time.Month(p.FXMonth)
	opts.Costs.FXDay = p.FXDay
	opts.Health.Factors = p.HealthFactors
	opts.Health.FairlyActive = p.FairlyActive
	opts.Health.Workers = p.Workers
	return opts, nil
}

// rates builds the exchange-rate chain: source, weekend shifting, then a memoizing cache.
func (e *env) rates() (ports.RateProvider, error) {
	var source ports.RateProvider
	if e.cfg.Inputs.FXTable != "" {
		table, err := e.loader().fxTable()
		if err != nil {
			return nil, err
		}
		source = table
	} else {
		source = fxrates.NewHTTPProvider(e.cfg.FX.BaseURL, e.cfg.FXTimeout())
	}
	shifting := fxrates.NewShiftingProvider(source, e.cfg.Pipeline.FXMaxAttempts)
	return fxrates.NewCache(shifting, e.rec.FXLookup), nil
}

// store connects to postgres when a database URL is configured.
func (e *env) store(ctx context.Context) (*postgres.ResultRepository, *sqlx.DB, error) {
	if e.cfg.Database.URL == "" {
		return nil, nil, nil
	}
	db, err := postgres.Connect(ctx, e.cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewResultRepository(db), db, nil
}

func (e *env) publisher() ports.EventPublisher {
	if e.cfg.Events.NATSURL == "" {
		return events.Noop{}
	}
	p, err := events.NewNATSPublisher(e.cfg.Events.NATSURL, e.log)
	if err != nil {
		e.log.Warn().Err(err).Msg("events disabled")
		return events.Noop{}
	}
	return p
}

// pipeline wires a PipelineService. The returned cleanup closes the database and broker.
func (e *env) pipeline(ctx context.Context, persist bool) (*app.PipelineService, func(), error) {
	opts, err := e.pipelineOptions()
	if err != nil {
		return nil, nil, err
	}
	rates, err := e.rates()
	if err != nil {
		return nil, nil, err
	}

	var store ports.ResultStore
	var db *sqlx.DB
	pub := ports.EventPublisher(events.Noop{})
	if persist {
		repo, conn, err := e.store(ctx)
		if err != nil {
			return nil, nil, err
		}
		if repo != nil {
			store, db = repo, conn
		}
		pub = e.publisher()
	}

	svc := app.NewPipelineService(opts, rates, store, pub, e.rec, e.log)
	cleanup := func() {
		pub.Close()
		if db != nil {
			db.Close()
		}
	}
	return svc, cleanup, nil
}

func newRecorder() *metrics.Recorder {
	return metrics.NewRecorder(prometheus.NewRegistry())
}
