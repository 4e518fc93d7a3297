// Package telemetry records what searches do: Prometheus metrics, written to a textfile
// for the node exporter, and OpenTelemetry spans around each solve.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crillab/gophergap/gap"
)

const namespace = "gophergap"

// SearchMetrics aggregates the statistics of all searches run by a process.
type SearchMetrics struct {
	Expanded   prometheus.Counter
	Generated  prometheus.Counter
	Duplicates prometheus.Counter
	Solves     *prometheus.CounterVec // By status
	Duration   prometheus.Histogram
	Solutions  prometheus.Gauge // Number of optimal assignments of the last search
	gatherer   prometheus.Gatherer
}

// NewSearchMetrics registers search metrics on a new registry.
func NewSearchMetrics() *SearchMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &SearchMetrics{
		Expanded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "expanded_total",
			Help:      "Assignments expanded by the solver",
		}),
		Generated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "generated_total",
			Help:      "New assignments pushed to the open set",
		}),
		Duplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duplicates_total",
			Help:      "Successors dropped because their shape was already known",
		}),
		Solves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "solves_total",
			Help:      "Searches run, by final status",
		}, []string{"status"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Time spent searching",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Solutions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "solutions",
			Help:      "Optimal assignments found by the last search",
		}),
		gatherer: reg,
	}
}

// Record adds the statistics of a finished search.
// It is safe for concurrent use.
func (m *SearchMetrics) Record(stats gap.Stats, status gap.Status, solutions int) {
	m.Expanded.Add(float64(stats.NbExpanded))
	m.Generated.Add(float64(stats.NbGenerated))
	m.Duplicates.Add(float64(stats.NbDuplicates))
	m.Solves.WithLabelValues(status.String()).Inc()
	m.Duration.Observe(stats.Duration.Seconds())
	m.Solutions.Set(float64(solutions))
}

// RecordFailure counts a search that could not even start.
func (m *SearchMetrics) RecordFailure(elapsed time.Duration) {
	m.Solves.WithLabelValues("ERROR").Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// WriteTextfile writes all metrics, in the Prometheus text format, to path.
// The file is replaced atomically.
func (m *SearchMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}
