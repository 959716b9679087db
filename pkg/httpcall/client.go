package httpcall

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// Config holds the transport settings of the HTTP adapter
type Config struct {
	// Timeout bounds the whole request, redirects and body included
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification. Off unless
	// explicitly requested.
	InsecureSkipVerify bool
	// UserAgent is sent as the User-Agent header
	UserAgent string
	// MaxRedirects is the number of redirects followed before giving up
	MaxRedirects int
	// MaxBodyBytes truncates the captured body, 0 keeps everything
	MaxBodyBytes int64
}

// PeerDescriber looks up ownership details for the IP address a request connected to
type PeerDescriber interface {
	Describe(ipAddr string) (*types.Peer, error)
}

// Adapter performs one GET per lookup and flattens the response into
// http_ prefixed fields
type Adapter struct {
	client *http.Client
	cfg    Config
	peers  PeerDescriber
	ns     types.Namespace
}

// Option configures an Adapter
type Option func(*Adapter)

// WithPeerDescriber enriches results with ownership details of the connected peer
func WithPeerDescriber(p PeerDescriber) Option {
	return func(a *Adapter) {
		a.peers = p
	}
}

// WithTransport replaces the transport, mostly for tests
func WithTransport(rt http.RoundTripper) Option {
	return func(a *Adapter) {
		a.client.Transport = rt
	}
}

// NewAdapter creates an HTTP adapter. Zero config values fall back to the defaults.
func NewAdapter(cfg Config, opts ...Option) *Adapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		logrus.Warn("httpcall: NewAdapter - TLS certificate verification is disabled")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	a := &Adapter{
		cfg: cfg,
		ns:  types.HTTPNamespace,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
	a.client.CheckRedirect = a.checkRedirect

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) >= a.cfg.MaxRedirects {
		return fmt.Errorf("%w: "+ErrTooManyHops, errTooManyRedirects, len(via))
	}
	return nil
}

// Lookup performs a GET against target and returns the flattened response.
// It never panics; every failure is reported through http_error.
func (a *Adapter) Lookup(ctx context.Context, target string) (result *types.Record) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("httpcall: Lookup - recovered from panic for '%s': %v", target, r)
			result = a.ns.Failure(fmt.Sprintf(ErrGeneral, r))
		}
	}()

	logrus.Infof("httpcall: Lookup - performing HTTP GET request for URL: %s", target)

	var remoteAddr string
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Conn != nil {
				remoteAddr = info.Conn.RemoteAddr().String()
			}
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, target, nil)
	if err != nil {
		return a.failure(target, err)
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return a.failure(target, err)
	}
	elapsed := time.Since(start)
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	body, err := a.readBody(resp)
	if err != nil {
		return a.failure(target, err)
	}

	reason := reasonPhrase(resp)
	result = types.NewRecord()
	result.Set(a.ns.Key(types.FieldLookupSuccess), types.ValueTrue)
	result.Set(a.ns.Key(FieldURL), resp.Request.URL.String())
	result.Set(a.ns.Key(FieldStatusCode), strconv.Itoa(resp.StatusCode))
	result.Set(a.ns.Key(FieldReason), reason)
	result.Set(a.ns.Key(FieldElapsed), strconv.FormatFloat(elapsed.Seconds(), 'f', 6, 64))
	result.Set(a.ns.Key(FieldRequestHeaders), FlattenHeaders(resp.Request.Header))
	result.Set(a.ns.Key(FieldResponseHeaders), FlattenHeaders(resp.Header))
	result.Set(a.ns.Key(FieldBody), body)
	a.describePeer(result, remoteAddr)

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < 600 {
		logrus.Errorf("httpcall: Lookup - HTTP error for '%s': %d %s", target, resp.StatusCode, reason)
		a.ns.MarkFailed(result, fmt.Sprintf(ErrHTTPStatus, resp.StatusCode, reason))
		return result
	}

	logrus.Infof("httpcall: Lookup - HTTP request successful for %s (Status: %d)", target, resp.StatusCode)
	return result
}

// readBody reads the whole body, then converts it to UTF-8 using the charset
// announced in Content-Type, or sniffed from the content. A transfer cut
// short is an error wrapping errBodyRead.
func (a *Adapter) readBody(resp *http.Response) (string, error) {
	var reader io.Reader = resp.Body
	if a.cfg.MaxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, a.cfg.MaxBodyBytes)
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errBodyRead, err)
	}

	enc, name, _ := charset.DetermineEncoding(raw, resp.Header.Get("Content-Type"))
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		logrus.Debugf("httpcall: readBody - could not decode %s body, keeping raw bytes: %v", name, err)
		return string(raw), nil
	}
	return string(decoded), nil
}

func (a *Adapter) describePeer(result *types.Record, remoteAddr string) {
	if remoteAddr == "" {
		return
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	result.Set(a.ns.Key(FieldRemoteIP), host)

	if a.peers == nil {
		return
	}
	peer, err := a.peers.Describe(host)
	if err != nil {
		logrus.Warnf("httpcall: describePeer - could not describe %s: %v", host, err)
		return
	}

	for _, field := range [][2]string{
		{FieldRemoteASN, peer.ASN},
		{FieldRemoteOrg, peer.Org},
		{FieldRemoteCountry, peer.Country},
		{FieldRemoteCity, peer.City},
	} {
		if field[1] != "" {
			result.Set(a.ns.Key(field[0]), field[1])
		}
	}
}

func (a *Adapter) failure(target string, err error) *types.Record {
	message := Classify(err)
	logrus.Errorf("httpcall: Lookup - request failed for '%s': %s", target, message)
	return a.ns.Failure(message)
}

// FlattenHeaders renders headers as newline separated "Name: Value" lines,
// sorted by name, one line per value
func FlattenHeaders(h http.Header) string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		for _, value := range h[name] {
			lines = append(lines, name+": "+value)
		}
	}
	return strings.Join(lines, "\n")
}

func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBodyRead         = errors.New("reading response body")
)
