package state

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ prometheus.Collector = (*Metrics)(nil)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDemo    = "demo"
)

type Metrics struct {
	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	ActiveGenerations  prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lyrebird",
			Subsystem: "core",
			Name:      "generations_total",
			Help:      "Total number of generations by provider and outcome",
		}, []string{"provider", "outcome"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lyrebird",
			Subsystem: "core",
			Name:      "generation_duration_seconds",
			Help:      "Duration of provider calls",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"provider"}),
		ActiveGenerations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lyrebird",
			Subsystem: "core",
			Name:      "active_generations",
			Help:      "Number of currently outstanding generations",
		}),
	}
}

// ObserveGeneration records the outcome of a finished generation.
func (m *Metrics) ObserveGeneration(provider string, outcome string, duration time.Duration) {
	m.Generations.WithLabelValues(provider, outcome).Inc()
	m.GenerationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(c chan<- prometheus.Metric) {
	m.Generations.Collect(c)
	m.GenerationDuration.Collect(c)
	m.ActiveGenerations.Collect(c)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(d chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(m, d)
}
