package httpcall

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import "time"

const (
	// DefaultTimeout bounds a single GET including redirects and the body
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects matches the net/http default policy
	DefaultMaxRedirects = 10
	// DefaultUserAgent is sent with every request unless configured otherwise
	DefaultUserAgent = "splunk-lookup-commands/1.0"

	// Field names below the http_ namespace
	FieldURL             = "url"
	FieldStatusCode      = "status_code"
	FieldReason          = "reason"
	FieldElapsed         = "elapsed_time_seconds"
	FieldRequestHeaders  = "request_headers"
	FieldResponseHeaders = "response_headers"
	FieldBody            = "body_content"
	FieldRemoteIP        = "remote_ip"
	FieldRemoteASN       = "remote_asn"
	FieldRemoteOrg       = "remote_org"
	FieldRemoteCountry   = "remote_country"
	FieldRemoteCity      = "remote_city"

	// Error messages written to http_error
	ErrTimeout     = "Request timed out: %v"
	ErrConnection  = "Connection error: %v"
	ErrHTTPStatus  = "HTTP error: %d %s"
	ErrRequest     = "Unexpected requests error: %v"
	ErrGeneral     = "General error: %v"
	ErrTooManyHops = "stopped after %d redirects"
)
