package whois

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"fmt"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/extract"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/normalize"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"

	"github.com/sirupsen/logrus"
)

// Field names below the whois_ namespace
const (
	FieldDomain  = "domain"
	FieldRawDump = "raw_object_dump"
)

// Querier performs a single WHOIS query. *Client satisfies it.
type Querier interface {
	Query(ctx context.Context, domain string) (*Entry, error)
}

// Adapter turns a URL field into whois_ prefixed registration fields
type Adapter struct {
	querier Querier
	initErr error
	ns      types.Namespace
}

// NewAdapter creates an adapter from the result of Init. When initErr is
// non-nil, or querier is nil, every lookup reports the client as unavailable
// without querying.
func NewAdapter(querier Querier, initErr error) *Adapter {
	if initErr == nil && querier == nil {
		initErr = ErrUnavailable
	}
	return &Adapter{
		querier: querier,
		initErr: initErr,
		ns:      types.WhoisNamespace,
	}
}

// Available reports whether lookups will reach the network
func (a *Adapter) Available() bool {
	return a.initErr == nil
}

// Lookup derives the domain from raw, queries it and flattens the answer.
// It never panics; every failure is reported through whois_error.
func (a *Adapter) Lookup(ctx context.Context, raw string) (result *types.Record) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("whois: Lookup - recovered from panic for '%s': %v", raw, r)
			result = a.ns.Failure(lookupError(fmt.Errorf("%v", r)))
		}
	}()

	if a.initErr != nil {
		logrus.Errorf("whois: Lookup - client unavailable: %v", a.initErr)
		return a.ns.Failure(ErrMsgUnavailable)
	}

	logrus.Debugf("whois: Lookup - attempting to parse URL: %s", raw)
	domain, err := extract.Domain(raw)
	if err != nil {
		logrus.Warnf("whois: Lookup - could not extract domain from URL: '%s'", raw)
		return a.ns.Failure(ErrMsgInvalidDomain)
	}

	logrus.Infof("whois: Lookup - performing WHOIS lookup for domain: %s", domain)
	entry, err := a.querier.Query(ctx, domain)
	if err != nil {
		kind := KindOf(err)
		if kind == KindNoData {
			logrus.Warnf("whois: Lookup - no data for %s: %v", domain, err)
			return a.ns.Failure(ErrMsgNoData)
		}
		logrus.WithField("kind", kind.String()).Errorf("whois: Lookup - error for '%s': %v", raw, err)
		return a.ns.Failure(lookupError(err))
	}
	if entry == nil {
		logrus.Warnf("whois: Lookup - no data for %s", domain)
		return a.ns.Failure(ErrMsgNoData)
	}

	logrus.Infof("whois: Lookup - WHOIS lookup successful for %s", domain)
	return a.flatten(domain, entry)
}

func (a *Adapter) flatten(domain string, entry *Entry) *types.Record {
	result := types.NewRecord(
		a.ns.Key(types.FieldLookupSuccess), types.ValueTrue,
		a.ns.Key(FieldDomain), domain,
	)

	for _, attr := range Attributes {
		value := normalize.Value(attr.Rule, attr.Get(&entry.Info))
		if value == "" {
			continue
		}
		result.Set(a.ns.Key(attr.Key), value)
	}

	result.Set(a.ns.Key(FieldRawDump), entry.Dump())
	return result
}
