// Package metrics records per-run Prometheus metrics for ffpool.
//
// A run is short-lived, so nothing is served over HTTP. The Recorder collects
// into its own registry and the result is written once, at the end of the run,
// in the text exposition format understood by node_exporter's textfile collector.
// All metrics are prefixed with "ffpool_".
//
// # Job Metrics
//
//   - JobsTotal: Counter of finished jobs by outcome
//   - JobDuration: Histogram of time spent per attempted job
//   - WorkersBusy: Gauge of workers currently running the tool
//
// # Run Metrics
//
//   - RunInputs, RunSucceeded, RunFailed, RunSkipped: Gauges with the final accounting
//   - RunDuration: Gauge with the wall time of the whole run
//   - RunLastTimestamp: Gauge with the time the run finished
package metrics

import (
	"fmt"
	"time"

	"github.com/lepinkainen/ffpool/processor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements processor.Notifier on top of a private registry
type Recorder struct {
	registry *prometheus.Registry

	JobsTotal   *prometheus.CounterVec
	JobDuration prometheus.Histogram
	WorkersBusy prometheus.Gauge

	RunInputs        prometheus.Gauge
	RunSucceeded     prometheus.Gauge
	RunFailed        prometheus.Gauge
	RunSkipped       prometheus.Gauge
	RunDuration      prometheus.Gauge
	RunLastTimestamp prometheus.Gauge
}

// NewRecorder creates a recorder with every outcome label pre-initialized to zero
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Recorder{
		registry: reg,

		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ffpool_jobs_total",
				Help: "Total number of finished jobs",
			},
			[]string{"outcome"},
		),

		JobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ffpool_job_duration_seconds",
				Help:    "Time spent on each attempted job in seconds",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600, 7200},
			},
		),

		WorkersBusy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ffpool_workers_busy",
				Help: "Number of workers currently running the transcoding tool",
			},
		),

		RunInputs: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ffpool_run_inputs",
				Help: "Number of input paths handed to the run",
			},
		),

		RunSucceeded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ffpool_run_succeeded",
				Help: "Number of inputs transcoded successfully",
			},
		),

		RunFailed: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ffpool_run_failed",
				Help: "Number of inputs in the failure list",
			},
		),

		RunSkipped: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ffpool_run_skipped",
				Help: "Number of inputs that were not regular files",
			},
		),

		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ffpool_run_duration_seconds",
				Help: "Wall time of the run in seconds",
			},
		),

		RunLastTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ffpool_run_last_timestamp_seconds",
				Help: "Unix time the run finished",
			},
		),
	}

	for _, o := range processor.Outcomes() {
		r.JobsTotal.WithLabelValues(o.String())
	}
	return r
}

// JobStarted implements processor.Notifier
func (r *Recorder) JobStarted(worker int, input string) {
	r.WorkersBusy.Inc()
}

// JobFinished implements processor.Notifier
func (r *Recorder) JobFinished(job processor.Job) {
	r.JobsTotal.WithLabelValues(job.Outcome.String()).Inc()
	if job.Outcome == processor.Skipped {
		// skips never reach JobStarted
		return
	}
	r.WorkersBusy.Dec()
	r.JobDuration.Observe(job.Duration.Seconds())
}

// ProgressChanged implements processor.Notifier
func (r *Recorder) ProgressChanged(done, total int) {
	r.RunSucceeded.Set(float64(done))
	r.RunInputs.Set(float64(total))
}

// ObserveRun stores the final accounting of a run
func (r *Recorder) ObserveRun(s processor.Summary, elapsed time.Duration, finished time.Time) {
	r.RunInputs.Set(float64(s.Total))
	r.RunSucceeded.Set(float64(s.Succeeded))
	r.RunFailed.Set(float64(s.Failed))
	r.RunSkipped.Set(float64(s.Skipped))
	r.RunDuration.Set(elapsed.Seconds())
	r.RunLastTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile writes every metric to path. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
