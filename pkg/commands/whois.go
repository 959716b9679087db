package commands

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"iter"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/enricher"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/searchcommand"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/whois"
)

// WhoisName is the search command name of the WHOIS lookup
const WhoisName = "mywhoiscommand"

// Whois looks up registration data for the domain of url_field in every record
type Whois struct {
	env      *Env
	enricher *enricher.Enricher
	querier  whois.Querier
}

// NewWhois is the Factory of mywhoiscommand
func NewWhois(env *Env) searchcommand.Command {
	return &Whois{env: env}
}

func (w *Whois) Name() string { return WhoisName }

func (w *Whois) Options() []searchcommand.Option {
	return []searchcommand.Option{urlFieldOption()}
}

func (w *Whois) Configure(values searchcommand.Values, info *searchcommand.SearchInfo) error {
	querier, initErr := w.querier, error(nil)
	if querier == nil {
		cfg := w.env.Config.Whois
		client, err := whois.Init(whois.Config{
			Enabled:         cfg.Enabled,
			Timeout:         cfg.Timeout,
			Server:          cfg.Server,
			Proxy:           cfg.Proxy,
			DisableReferral: cfg.DisableReferral,
		})
		if err != nil {
			w.env.Logger.Errorf("commands: Whois.Configure - %v", err)
			initErr = err
		} else {
			querier = client
		}
	}

	if info != nil {
		w.env.Logger = w.env.Logger.WithField("sid", info.SID)
	}
	adapter := whois.NewAdapter(querier, initErr)
	w.enricher = newEnricher(w.env, WhoisName, values.String(OptionURLField), types.WhoisNamespace, adapter)
	return nil
}

func (w *Whois) Stream(ctx context.Context, records iter.Seq[*types.Record]) iter.Seq[*types.Record] {
	return w.enricher.Stream(ctx, records)
}
