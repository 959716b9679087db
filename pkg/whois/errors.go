package whois

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"errors"
	"fmt"
)

// Kind classifies a failed WHOIS query
type Kind int

const (
	// KindUnknown is the catch-all for failures nothing else explains
	KindUnknown Kind = iota
	// KindExtraction means no queryable domain was given
	KindExtraction
	// KindTransport covers connection, timeout and proxy failures
	KindTransport
	// KindProtocol covers unknown servers and unparseable responses
	KindProtocol
	// KindNoData means the registry answered without registration data
	KindNoData
)

func (k Kind) String() string {
	switch k {
	case KindExtraction:
		return "extraction"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindNoData:
		return "no-data"
	default:
		return "unknown"
	}
}

// Error is returned by Client.Query. Its message is the message of the
// underlying error so diagnostics keep the original text.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, KindUnknown when err is not an *Error
func KindOf(err error) Kind {
	var whoisErr *Error
	if errors.As(err, &whoisErr) {
		return whoisErr.Kind
	}
	return KindUnknown
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

var (
	// ErrUnavailable is the sticky initialization failure of the WHOIS client
	ErrUnavailable = errors.New("whois: client not available")
	// ErrEmptyResponse is returned when the server answers with nothing
	ErrEmptyResponse = errors.New("whois: empty response")
)

// Messages written to whois_error
const (
	ErrMsgUnavailable   = "whois client library not installed or failed to initialize."
	ErrMsgInvalidDomain = "Invalid URL or domain format"
	ErrMsgNoData        = "No WHOIS data found for domain."
	ErrMsgLookup        = "WHOIS lookup error: %v"
)

func lookupError(err error) string {
	return fmt.Sprintf(ErrMsgLookup, err)
}
