package whois

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	whoisclient "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
)

// Config holds the WHOIS client settings
type Config struct {
	// Enabled false makes every lookup report the client as unavailable
	Enabled bool
	// Timeout overrides the library timeout when non-zero
	Timeout time.Duration
	// Server queries a fixed WHOIS server instead of following IANA referrals
	Server string
	// Proxy is a proxy URL understood by golang.org/x/net/proxy, e.g. socks5://127.0.0.1:1080
	Proxy string
	// DisableReferral stops at the registry answer for thin registries
	DisableReferral bool
}

// Fetcher returns the raw WHOIS answer for a domain.
// *whoisclient.Client satisfies it.
type Fetcher interface {
	Whois(domain string, servers ...string) (string, error)
}

// Entry is a parsed WHOIS answer
type Entry struct {
	Domain string
	Info   whoisparser.WhoisInfo
	Raw    string
}

// Dump renders the parsed object as JSON for forensic use
func (e *Entry) Dump() string {
	data, err := json.Marshal(e.Info)
	if err != nil {
		return fmt.Sprintf("%+v", e.Info)
	}
	return string(data)
}

// Client queries and parses WHOIS data
type Client struct {
	fetcher Fetcher
	servers []string
	parse   func(string) (whoisparser.WhoisInfo, error)
}

// Init builds the WHOIS client once at startup. A non-nil error wraps
// ErrUnavailable and is meant to be handed to NewAdapter so every lookup of the
// process short-circuits.
func Init(cfg Config) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: disabled in configuration", ErrUnavailable)
	}

	client := whoisclient.NewClient()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.DisableReferral {
		client.SetDisableReferral(true)
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid proxy %q: %v", ErrUnavailable, cfg.Proxy, err)
		}
		dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		client.SetDialer(dialer)
		logrus.Debugf("whois: Init - dialing through proxy %s", proxyURL.Redacted())
	}

	var servers []string
	if cfg.Server != "" {
		servers = append(servers, cfg.Server)
	}
	return NewClient(client, servers...), nil
}

// NewClient wraps a fetcher. Servers, when given, are passed on every query.
func NewClient(fetcher Fetcher, servers ...string) *Client {
	return &Client{
		fetcher: fetcher,
		servers: servers,
		parse:   whoisparser.Parse,
	}
}

// Query fetches and parses the WHOIS data of domain.
// The returned error is always an *Error.
func (c *Client) Query(ctx context.Context, domain string) (*Entry, error) {
	if domain == "" {
		return nil, newError(KindExtraction, whoisclient.ErrDomainEmpty)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindUnknown, err)
	}

	raw, err := c.fetcher.Whois(domain, c.servers...)
	if err != nil {
		return nil, newError(classifyFetch(err), err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, newError(KindNoData, ErrEmptyResponse)
	}

	info, err := c.parse(raw)
	if err != nil {
		return nil, newError(classifyParse(err), err)
	}

	return &Entry{Domain: domain, Info: info, Raw: raw}, nil
}

func classifyFetch(err error) Kind {
	var (
		opErr  *net.OpError
		netErr net.Error
	)
	switch {
	case errors.Is(err, whoisclient.ErrDomainEmpty):
		return KindExtraction
	case errors.Is(err, whoisclient.ErrWhoisServerNotFound):
		return KindProtocol
	case errors.As(err, &opErr), errors.As(err, &netErr):
		return KindTransport
	case errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	}
	return KindUnknown
}

func classifyParse(err error) Kind {
	switch {
	case errors.Is(err, whoisparser.ErrNotFoundDomain):
		return KindNoData
	case errors.Is(err, whoisparser.ErrReservedDomain),
		errors.Is(err, whoisparser.ErrPremiumDomain),
		errors.Is(err, whoisparser.ErrBlockedDomain),
		errors.Is(err, whoisparser.ErrDomainDataInvalid),
		errors.Is(err, whoisparser.ErrDomainLimitExceed):
		return KindProtocol
	}
	return KindUnknown
}
