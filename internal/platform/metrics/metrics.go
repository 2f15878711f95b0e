// Package metrics exports notification pipeline measurements to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phrazzld/todo-api/internal/notify"
)

const namespace = "todo"

// Sweep statuses.
const (
	SweepStatusOK        = "ok"
	SweepStatusError     = "error"
	SweepStatusContended = "contended"
)

// Recorder implements notify.Recorder.
type Recorder struct {
	notifications *prometheus.CounterVec
	sweeps        *prometheus.CounterVec
	duration      prometheus.Histogram
	lastSelected  prometheus.Gauge
	inFlight      prometheus.Gauge
}

var _ notify.Recorder = (*Recorder)(nil)

// NewRecorder registers the pipeline collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Due-task notifications processed, by outcome.",
		}, []string{"outcome"}),
		sweeps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Due-task sweeps run, by status.",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of one due-task sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
		lastSelected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_last_selected_tasks",
			Help:      "Tasks selected by the most recent sweep.",
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_last_in_flight_tasks",
			Help:      "Tasks still being processed when the most recent sweep returned.",
		}),
	}
}

// ObserveOutcome counts one processed task.
func (r *Recorder) ObserveOutcome(outcome notify.Outcome) {
	r.notifications.WithLabelValues(string(outcome)).Inc()
}

// ObserveSweep records one sweep.
func (r *Recorder) ObserveSweep(result notify.SweepResult, err error) {
	status := SweepStatusOK
	switch {
	case err != nil:
		status = SweepStatusError
	case result.LeaseContended:
		status = SweepStatusContended
	}
	r.sweeps.WithLabelValues(status).Inc()
	r.duration.Observe(result.Duration.Seconds())

	if err == nil && !result.LeaseContended {
		r.lastSelected.Set(float64(result.Selected))
		r.inFlight.Set(float64(result.InFlight))
	}
}
