// Package metrics exposes workflow and notification delivery counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "procurement"

// Recorder implements port.MetricsRecorder
type Recorder struct {
	transitionsTotal   *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec
	deliveriesTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_operations_total",
				Help:      "Workflow operations by entity kind, trigger and outcome",
			},
			[]string{"kind", "trigger", "outcome"},
		),
		transitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_operation_duration_seconds",
				Help:      "Time spent applying a workflow operation, including its transaction",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"kind", "trigger"},
		),
		deliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_deliveries_total",
				Help:      "Notification delivery attempts by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
	}

	reg.MustRegister(r.transitionsTotal, r.transitionDuration, r.deliveriesTotal)
	return r
}

// ObserveTransition records one workflow operation
func (r *Recorder) ObserveTransition(kind, trigger, outcome string, duration time.Duration) {
	r.transitionsTotal.WithLabelValues(kind, trigger, outcome).Inc()
	r.transitionDuration.WithLabelValues(kind, trigger).Observe(duration.Seconds())
}

// ObserveDelivery records one delivery attempt on one channel
func (r *Recorder) ObserveDelivery(channel, outcome string) {
	r.deliveriesTotal.WithLabelValues(channel, outcome).Inc()
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
