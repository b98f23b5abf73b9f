// Package metrics owns the prometheus registry for query instrumentation.
//
// The CLI is short-lived, so metrics are not scraped. They are written to a
// node_exporter textfile when the process exits.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lineage"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the query collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	// QueriesTotal counts queries by operation and outcome.
	QueriesTotal *prometheus.CounterVec

	// QueryDuration measures query latency by operation.
	QueryDuration *prometheus.HistogramVec

	// QueryResults observes the result size of successful queries.
	QueryResults *prometheus.HistogramVec
}

// New creates the collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total report queries by operation and outcome",
		}, []string{"operation", "outcome"}),
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Report query duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}, []string{"operation"}),
		QueryResults: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of results returned by report queries",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"operation"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one query. Result size is only observed on success.
func (m *Metrics) Observe(operation string, start time.Time, results int, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.QueriesTotal.WithLabelValues(operation, outcome).Inc()
	m.QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil {
		m.QueryResults.WithLabelValues(operation).Observe(float64(results))
	}
}

// WriteTextfile writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
