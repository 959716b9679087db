package extract

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNoDomain is returned when no domain can be derived from the input
var ErrNoDomain = errors.New("extract: could not derive a domain")

// TargetURL returns the request target for an HTTP lookup.
// The field value is used verbatim.
func TargetURL(raw string) string {
	return raw
}

// Domain derives the WHOIS query target from a URL or bare domain.
// The host component of the parsed URI wins (port included); values without a
// scheme fall back to the text before the first '/' and then the first ':'.
// No case folding, punycode conversion or trailing dot removal is done.
func Domain(raw string) (string, error) {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host, nil
	}

	domain, _, _ := strings.Cut(raw, "/")
	domain, _, _ = strings.Cut(domain, ":")

	if domain == "" {
		return "", ErrNoDomain
	}
	return domain, nil
}
