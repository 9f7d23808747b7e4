package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's prometheus collectors
type Metrics struct {
	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	locksUnlocked   prometheus.Counter
	lockVisits      prometheus.Histogram
	storeRetries    prometheus.Counter
	queueViolations prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediaq",
			Name:      "commands_total",
			Help:      "Engine commands by name and outcome.",
		}, []string{"command", "outcome"}),
		commandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mediaq",
			Name:      "command_duration_seconds",
			Help:      "Engine command latency including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		locksUnlocked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mediaq",
			Name:      "locks_unlocked_total",
			Help:      "Locks that transitioned to completed.",
		}),
		lockVisits: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mediaq",
			Name:      "propagation_lock_visits",
			Help:      "Locks visited by one propagation pass.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		}),
		storeRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mediaq",
			Name:      "store_retries_total",
			Help:      "Command attempts retried after transient store contention.",
		}),
		queueViolations: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "mediaq",
			Name:      "queue_density_violations",
			Help:      "Owners whose queue numbers were not dense at the last audit.",
		}),
	}
}

func (m *Metrics) observeCommand(command, outcome string, seconds float64) {
	m.commands.WithLabelValues(command, outcome).Inc()
	m.commandDuration.WithLabelValues(command).Observe(seconds)
}

func (m *Metrics) observePropagation(result *PropagationResult) {
	if result == nil {
		return
	}
	m.lockVisits.Observe(float64(result.Visits))
	m.locksUnlocked.Add(float64(len(result.Affected)))
}
