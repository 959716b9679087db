package httpcall

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"syscall"
)

// Classify maps a request error to the message written into http_error.
// Timeouts are checked first. Redirect loops and truncated bodies are request
// errors, then come connection level failures and other client errors.
// Anything left is a general error.
func Classify(err error) string {
	switch {
	case isTimeout(err):
		return fmt.Sprintf(ErrTimeout, err)
	case errors.Is(err, errTooManyRedirects), errors.Is(err, errBodyRead):
		return fmt.Sprintf(ErrRequest, err)
	case isConnection(err):
		return fmt.Sprintf(ErrConnection, err)
	case isRequest(err):
		return fmt.Sprintf(ErrRequest, err)
	default:
		return fmt.Sprintf(ErrGeneral, err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnection(err error) bool {
	var (
		dnsErr       *net.DNSError
		opErr        *net.OpError
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)

	switch {
	case errors.As(err, &dnsErr), errors.As(err, &opErr):
		return true
	case errors.As(err, &verifyErr), errors.As(err, &recordErr):
		return true
	case errors.As(err, &authorityErr), errors.As(err, &hostnameErr), errors.As(err, &invalidErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	return false
}

func isRequest(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
