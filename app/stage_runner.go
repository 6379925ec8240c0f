package app

import (
	"context"
	"time"

	"goimpact/internal/metrics"

	"github.com/rs/zerolog"
)

// StageRunner executes pipeline stages in order, timing and logging each one
type StageRunner struct {
	log     zerolog.Logger
	metrics *metrics.Recorder
}

// NewStageRunner creates a new stage runner
func NewStageRunner(log zerolog.Logger, rec *metrics.Recorder) *StageRunner {
	return &StageRunner{log: log, metrics: rec}
}

// Run executes fn as the named stage. Cancellation is checked before the stage starts.
func (r *StageRunner) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := r.metrics.Stage(name)
	start := time.Now()
	err := fn(ctx)
	done()

	ev := r.log.Debug()
	if err != nil {
		ev = r.log.Error().Err(err)
	}
	ev.Str("stage", name).Dur("elapsed", time.Since(start)).Msg("stage finished")
	return err
}
