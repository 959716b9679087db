package enricher

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/metrics"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// NewEnricher creates an Enricher for command that reads field from every
// record and merges the result of lookup under ns.
func NewEnricher(command, field string, ns types.Namespace, lookup Lookup, opts ...Option) *Enricher {
	e := &Enricher{
		command: command,
		field:   field,
		ns:      ns,
		lookup:  lookup,
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  logrus.WithField("command", command),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Processed returns the number of records seen so far
func (e *Enricher) Processed() int {
	return e.processed
}

// Stream enriches records in arrival order and yields each one exactly once.
// Cancelling ctx stops the stream between two records.
func (e *Enricher) Stream(ctx context.Context, records iter.Seq[*types.Record]) iter.Seq[*types.Record] {
	return func(yield func(*types.Record) bool) {
		e.logger.Infof(logStart, e.field)
		for record := range records {
			if err := ctx.Err(); err != nil {
				e.logger.Warnf(logInterrupted, e.processed, err)
				return
			}
			e.EnrichRecord(ctx, record)
			if !yield(record) {
				return
			}
		}
		e.logger.Infof(logFinished, e.processed)
	}
}

// EnrichAll enriches a slice of records in place
func (e *Enricher) EnrichAll(ctx context.Context, records []*types.Record) []*types.Record {
	out := make([]*types.Record, 0, len(records))
	for record := range e.Stream(ctx, func(yield func(*types.Record) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}) {
		out = append(out, record)
	}
	return out
}

// EnrichRecord merges the lookup result for a single record into it
func (e *Enricher) EnrichRecord(ctx context.Context, record *types.Record) {
	e.processed++
	e.logger.Debugf(logProcessing, e.processed)

	raw := record.Value(e.field)
	if raw == "" {
		e.logger.Warnf(logMissing, e.field, e.processed)
		record.Merge(e.ns.MissingField())
		e.metrics.ObserveRecord(metrics.OutcomeMissingField)
		return
	}

	result := e.call(ctx, raw)
	record.Merge(result)

	if e.ns.Succeeded(result) {
		e.metrics.ObserveRecord(metrics.OutcomeSuccess)
	} else {
		e.metrics.ObserveRecord(metrics.OutcomeFailure)
	}
}

func (e *Enricher) call(ctx context.Context, raw string) (result *types.Record) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf(logRecovered, raw, r)
			result = e.ns.Failure(fmt.Sprintf(errGeneral, r))
		}
	}()

	if err := e.limiter.Wait(ctx); err != nil {
		e.logger.Warnf(logLimiter, err)
		return e.ns.Failure(fmt.Sprintf(errGeneral, err))
	}

	start := time.Now()
	result = e.lookup.Lookup(ctx, raw)
	e.metrics.ObserveLookup(time.Since(start))

	if result == nil {
		return e.ns.Failure(fmt.Sprintf(errGeneral, "lookup returned no result"))
	}
	return result
}
