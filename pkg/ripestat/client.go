package ripestat

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client represents a RIPE Stat API client
type Client struct {
	// BaseURL is the base URL of the RIPE Stat API
	BaseURL string
	// HTTPClient is the HTTP client used for API requests
	HTTPClient *http.Client
	// SourceApp is the name of the application to identify to RIPE
	SourceApp string
	limiter   *rate.Limiter
}

// NewRipeStatClient creates a new RIPE Stat API client with the given source application name.
// If sourceApp is empty, DefaultSourceApp will be used.
func NewRipeStatClient(sourceApp string, timeout time.Duration) *Client {
	if sourceApp == "" {
		sourceApp = DefaultSourceApp
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		SourceApp:  sourceApp,
		limiter:    rate.NewLimiter(DefaultRateLimit, DefaultBurst),
	}
}

// Describe resolves the announcing AS and its holder for ipAddr and, when
// available, the geolocation. Only the network-info call is mandatory.
func (c *Client) Describe(ipAddr string) (*types.Peer, error) {
	if net.ParseIP(ipAddr) == nil {
		return nil, fmt.Errorf(ErrInvalidIP, ipAddr)
	}
	ctx := context.Background()

	netInfo, err := c.GetNetworkInfo(ctx, ipAddr)
	if err != nil {
		return nil, err
	}

	peer := &types.Peer{IP: ipAddr}
	if len(netInfo.ASNs) > 0 {
		asn := netInfo.ASNs[0]
		peer.ASN = asn.String()

		overview, err := c.GetASOverview(ctx, asn)
		if err != nil {
			logrus.Warnf("ripestat: Describe - holder of %s: %v", peer.ASN, err)
		} else {
			peer.Org = overview.Holder
		}
	}

	location, err := c.GetGeolocation(ctx, ipAddr)
	if err != nil {
		logrus.Debugf("ripestat: Describe - geolocation of %s: %v", ipAddr, err)
	} else if location != nil {
		peer.Country = location.Country
		peer.City = location.City
	}

	logrus.Debugf("ripestat: Describe - found info for %s: %+v", ipAddr, peer)
	return peer, nil
}

// GetNetworkInfo retrieves the announced prefix and origin ASNs of ip
func (c *Client) GetNetworkInfo(ctx context.Context, ip string) (*NetworkInfo, error) {
	var resp response[NetworkInfo]
	if err := c.send(ctx, "network-info", ip, &resp); err != nil {
		return nil, fmt.Errorf(ErrFailedGetNetInfo, ip, err)
	}
	return &resp.Data, nil
}

// GetASOverview retrieves the holder of asn
func (c *Client) GetASOverview(ctx context.Context, asn ASN) (*ASOverview, error) {
	var resp response[ASOverview]
	if err := c.send(ctx, "as-overview", asn.String(), &resp); err != nil {
		return nil, fmt.Errorf(ErrFailedGetASInfo, asn.Int(), err)
	}
	return &resp.Data, nil
}

// GetGeolocation retrieves the first MaxMind GeoLite location of ip, nil when unknown
func (c *Client) GetGeolocation(ctx context.Context, ip string) (*Location, error) {
	var resp response[geoLite]
	if err := c.send(ctx, "maxmind-geo-lite", ip, &resp); err != nil {
		return nil, fmt.Errorf(ErrFailedGeoData, ip, err)
	}
	for _, located := range resp.Data.LocatedResources {
		if len(located.Locations) > 0 {
			return &located.Locations[0], nil
		}
	}
	return nil, nil
}

// send performs a single rate limited request and decodes the envelope into out
func (c *Client) send(ctx context.Context, endpoint, resource string, out interface{ status() string }) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf(ErrRateLimit, err)
	}

	params := url.Values{}
	params.Set("resource", resource)
	params.Set("sourceapp", c.SourceApp)
	requestURL := fmt.Sprintf("%s/%s/data.json?%s", c.BaseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf(ErrCreateRequest, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf(ErrRequestFailed, err)
	}
	defer func() {
		// Drain and close the body to ensure connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf(ErrHTTPStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf(ErrReadResponse, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf(ErrParseResponse, err)
	}
	if status := out.status(); status != "ok" {
		return fmt.Errorf(ErrNonOkStatus, status)
	}
	return nil
}
