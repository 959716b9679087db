package commands

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"iter"
	"time"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/config"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/enricher"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/extract"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/httpcall"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/ipinfo"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/ripestat"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/searchcommand"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"
)

// CurlName is the search command name of the HTTP lookup
const CurlName = "mycurl"

// Search options of mycurl besides url_field
const (
	OptionTimeout  = "timeout"
	OptionInsecure = "insecure"
)

// Curl performs an HTTP GET for the URL in url_field of every record
type Curl struct {
	env      *Env
	enricher *enricher.Enricher
}

// NewCurl is the Factory of mycurl
func NewCurl(env *Env) searchcommand.Command {
	return &Curl{env: env}
}

func (c *Curl) Name() string { return CurlName }

func (c *Curl) Options() []searchcommand.Option {
	return []searchcommand.Option{
		urlFieldOption(),
		{Name: OptionTimeout, Validate: searchcommand.Integer(1, 3600)},
		{Name: OptionInsecure, Validate: searchcommand.Boolean},
	}
}

func (c *Curl) Configure(values searchcommand.Values, info *searchcommand.SearchInfo) error {
	cfg := c.env.Config.HTTP
	httpCfg := httpcall.Config{
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		UserAgent:          cfg.UserAgent,
		MaxRedirects:       cfg.MaxRedirects,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	}
	if values.Has(OptionTimeout) {
		httpCfg.Timeout = time.Duration(values.Int(OptionTimeout)) * time.Second
	}
	if values.Has(OptionInsecure) {
		httpCfg.InsecureSkipVerify = values.Bool(OptionInsecure)
	}

	var opts []httpcall.Option
	switch c.env.Config.PeerSource() {
	case config.PeerLookupIPInfo:
		opts = append(opts, httpcall.WithPeerDescriber(ipinfo.NewIpInfoClient(c.env.Config.IPInfo.Token, c.env.Config.IPInfo.Timeout)))
	case config.PeerLookupRipeStat:
		opts = append(opts, httpcall.WithPeerDescriber(ripestat.NewRipeStatClient(ripestat.DefaultSourceApp, c.env.Config.IPInfo.Timeout)))
	}

	adapter := httpcall.NewAdapter(httpCfg, opts...)
	lookup := enricher.LookupFunc(func(ctx context.Context, raw string) *types.Record {
		return adapter.Lookup(ctx, extract.TargetURL(raw))
	})

	if info != nil {
		c.env.Logger = c.env.Logger.WithField("sid", info.SID)
	}
	c.enricher = newEnricher(c.env, CurlName, values.String(OptionURLField), types.HTTPNamespace, lookup)
	return nil
}

func (c *Curl) Stream(ctx context.Context, records iter.Seq[*types.Record]) iter.Seq[*types.Record] {
	return c.enricher.Stream(ctx, records)
}

func newEnricher(env *Env, name, field string, ns types.Namespace, lookup enricher.Lookup) *enricher.Enricher {
	return enricher.NewEnricher(name, field, ns, lookup,
		enricher.WithRateLimit(env.Config.RateLimit),
		enricher.WithMetrics(env.Metrics),
		enricher.WithLogger(env.Logger),
	)
}
