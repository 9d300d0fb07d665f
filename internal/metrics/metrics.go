// Package metrics records the outcome of update runs as Prometheus metrics.
// A Recorder owns its registry; operators scrape it through the node
// exporter textfile collector via WriteTextfile.
package metrics

import (
	"time"

	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a run.
const (
	OutcomePublished = "published"
	OutcomeRejected  = "rejected"
	OutcomeDryRun    = "dry_run"
	OutcomeFailed    = "failed"
)

// Run summarizes one update run.
type Run struct {
	Outcome          string
	Duration         time.Duration
	Collected        map[string]int
	FailedSources    []string
	Warnings         int
	Conflicts        int
	ValidationErrors int
	Published        int
	Ledger           map[string]int
}

// Recorder holds the run metrics.
type Recorder struct {
	registry *prometheus.Registry

	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	eventsCollected  *prometheus.CounterVec
	sourceFailures   *prometheus.CounterVec
	warnings         prometheus.Counter
	conflicts        prometheus.Counter
	validationErrors prometheus.Counter
	feedEvents       prometheus.Gauge
	ledgerItems      *prometheus.GaugeVec
	lastSuccess      prometheus.Gauge
}

// New creates a Recorder with a private registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "congressmap_runs_total",
			Help: "Total number of update runs, labelled by outcome.",
		}, []string{"outcome"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "congressmap_run_duration_seconds",
			Help:    "Wall time of an update run.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		eventsCollected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "congressmap_events_collected_total",
			Help: "Raw events returned by collaborators, labelled by source.",
		}, []string{"source"}),
		sourceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "congressmap_source_failures_total",
			Help: "Collaborator calls that failed, timed out or panicked.",
		}, []string{"source"}),
		warnings: f.NewCounter(prometheus.CounterOpts{
			Name: "congressmap_warnings_total",
			Help: "Warnings accumulated across runs.",
		}),
		conflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "congressmap_conflicts_total",
			Help: "Conflicting values recorded on published events.",
		}),
		validationErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "congressmap_validation_errors_total",
			Help: "Feed validation errors across runs.",
		}),
		feedEvents: f.NewGauge(prometheus.GaugeOpts{
			Name: "congressmap_feed_events",
			Help: "Events in the last published feed.",
		}),
		ledgerItems: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "congressmap_ledger_items",
			Help: "Ledger items by status after the last run.",
		}, []string{"status"}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "congressmap_last_success_timestamp_seconds",
			Help: "Unix time of the last published feed.",
		}),
	}
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Record adds a finished run.
func (r *Recorder) Record(run Run, at time.Time) {
	outcome := run.Outcome
	if outcome == "" {
		outcome = OutcomeFailed
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(run.Duration.Seconds())
	for source, n := range run.Collected {
		r.eventsCollected.WithLabelValues(source).Add(float64(n))
	}
	for _, source := range run.FailedSources {
		r.sourceFailures.WithLabelValues(source).Inc()
	}
	r.warnings.Add(float64(run.Warnings))
	r.conflicts.Add(float64(run.Conflicts))
	r.validationErrors.Add(float64(run.ValidationErrors))

	if outcome != OutcomePublished {
		return
	}
	r.feedEvents.Set(float64(run.Published))
	r.ledgerItems.Reset()
	for status, n := range run.Ledger {
		r.ledgerItems.WithLabelValues(status).Set(float64(n))
	}
	r.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes the current metrics in the text exposition format,
// replacing path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
