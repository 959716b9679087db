package metrics

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes used as label values
const (
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	OutcomeMissingField = "missing_field"
)

// Metrics holds the counters of a single command invocation.
// Every instance owns its registry so tests and commands never share state.
type Metrics struct {
	registry *prometheus.Registry
	command  string

	RecordsTotal   *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
}

// New creates and registers the metrics for command
func New(command string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		command:  command,
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splunk_lookup_records_total",
				Help: "Records processed by a lookup command, by outcome",
			},
			[]string{"command", "outcome"},
		),
		LookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splunk_lookup_duration_seconds",
				Help:    "Time spent in a single network lookup",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"command"},
		),
	}
}

// ObserveRecord counts one processed record
func (m *Metrics) ObserveRecord(outcome string) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(m.command, outcome).Inc()
}

// ObserveLookup records the duration of one network lookup
func (m *Metrics) ObserveLookup(d time.Duration) {
	if m == nil {
		return
	}
	m.LookupDuration.WithLabelValues(m.command).Observe(d.Seconds())
}

// Registry exposes the underlying registry as a gatherer
func (m *Metrics) Registry() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile flushes the current values in the node_exporter textfile
// format. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: writing textfile %s: %w", path, err)
	}
	return nil
}
