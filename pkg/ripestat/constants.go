package ripestat

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import "time"

const (
	// DefaultBaseURL is the default base URL for the RIPE Stat API
	DefaultBaseURL = "https://stat.ripe.net/data"
	// DefaultSourceApp is the name of this application to identify to RIPE
	DefaultSourceApp = "splunk-lookup-commands"
	// DefaultTimeout bounds a single API request
	DefaultTimeout = 10 * time.Second
	// DefaultRateLimit defines the number of requests per second
	DefaultRateLimit = 10
	// DefaultBurst defines the maximum burst size for rate limiting
	DefaultBurst = 1

	// Error messages
	ErrInvalidIP        = "ripestat: invalid IP address %q"
	ErrFailedGetNetInfo = "failed to get network info for %s: %w"
	ErrFailedGetASInfo  = "failed to get AS overview for AS%d: %w"
	ErrFailedGeoData    = "failed to get geolocation data for %s: %w"
	ErrRateLimit        = "rate limit error: %w"
	ErrCreateRequest    = "failed to create request: %w"
	ErrRequestFailed    = "request failed: %w"
	ErrHTTPStatusCode   = "HTTP request failed with status code %d"
	ErrReadResponse     = "error reading response body: %w"
	ErrParseResponse    = "failed to parse API response: %w"
	ErrNonOkStatus      = "received non-ok status %q from RIPE Stat API"
	ErrBadASN           = "cannot parse ASN %s"
)
