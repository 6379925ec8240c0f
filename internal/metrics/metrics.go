// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the pipeline collectors.
type Recorder struct {
	runs          *prometheus.CounterVec
	rows          *prometheus.CounterVec
	rowErrors     *prometheus.CounterVec
	warnings      *prometheus.CounterVec
	fxLookups     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// NewRecorder registers the collectors with reg. Pass prometheus.DefaultRegisterer to
// serve them from promhttp.Handler().
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goimpact",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goimpact",
			Name:      "rows_total",
			Help:      "Rows produced per output table.",
		}, []string{"table"}),
		rowErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goimpact",
			Name:      "row_errors_total",
			Help:      "Rows retained with an undefined value per output table.",
		}, []string{"table"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goimpact",
			Name:      "lookup_warnings_total",
			Help:      "Reference lookups resolved through a fallback.",
		}, []string{"table"}),
		fxLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goimpact",
			Name:      "fx_lookups_total",
			Help:      "Exchange-rate lookups by result.",
		}, []string{"result"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "goimpact",
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
	}
	reg.MustRegister(r.runs, r.rows, r.rowErrors, r.warnings, r.fxLookups, r.stageDuration)
	return r
}

func (r *Recorder) RunFinished(err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	r.runs.WithLabelValues(status).Inc()
}

// Rows counts produced rows and those carrying an error.
func (r *Recorder) Rows(table string, total, failed int) {
	if r == nil {
		return
	}
	r.rows.WithLabelValues(table).Add(float64(total))
	r.rowErrors.WithLabelValues(table).Add(float64(failed))
}

func (r *Recorder) Warning(table string) {
	if r == nil {
		return
	}
	r.warnings.WithLabelValues(table).Inc()
}

// FXLookup records hit, miss, fetched or unavailable.
func (r *Recorder) FXLookup(result string) {
	if r == nil {
		return
	}
	r.fxLookups.WithLabelValues(result).Inc()
}

// Stage returns a func that observes the elapsed time of a stage when called.
func (r *Recorder) Stage(name string) func() {
	start := time.Now()
	return func() {
		if r == nil {
			return
		}
		r.stageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}
