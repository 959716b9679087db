package enricher

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/metrics"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Log messages
const (
	logStart       = "enricher: Stream - starting stream command. URL field: %s"
	logProcessing  = "enricher: Stream - processing record %d"
	logMissing     = "enricher: EnrichRecord - field '%s' not found or empty in record %d"
	logFinished    = "enricher: Stream - finished streaming %d records"
	logInterrupted = "enricher: Stream - interrupted after %d records: %v"
	logRecovered   = "enricher: EnrichRecord - recovered from panic in lookup for '%s': %v"
	logLimiter     = "enricher: EnrichRecord - rate limiter: %v"
)

// errGeneral mirrors the catch-all message of the adapters
const errGeneral = "General error: %v"

// Lookup performs one network lookup for the value of the source field and
// returns the namespaced result fields. Implementations never fail; errors
// are reported inside the returned record.
type Lookup interface {
	Lookup(ctx context.Context, raw string) *types.Record
}

// LookupFunc adapts a plain function to Lookup
type LookupFunc func(ctx context.Context, raw string) *types.Record

func (f LookupFunc) Lookup(ctx context.Context, raw string) *types.Record {
	return f(ctx, raw)
}

// Enricher merges lookup results into a stream of records, one at a time
type Enricher struct {
	command string
	field   string
	ns      types.Namespace
	lookup  Lookup

	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *logrus.Entry

	processed int
}

// Option configures an Enricher
type Option func(*Enricher)

// WithRateLimit spaces lookups to at most perSecond calls per second.
// Zero or a negative value means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(e *Enricher) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMetrics counts records and times lookups on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Enricher) {
		e.metrics = m
	}
}

// WithLogger replaces the default logger entry
func WithLogger(logger *logrus.Entry) Option {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}
