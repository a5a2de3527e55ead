package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRemoteRequest indicates the API answered with a non-success status
	// or could not be reached after all re-authentication attempts.
	ErrRemoteRequest = errors.New("remote request failed")

	// ErrReconnectLimit indicates the re-authentication budget is exhausted.
	ErrReconnectLimit = errors.New("reconnect limit reached")

	// ErrNoCredentials indicates a token is needed but no user/password is configured.
	ErrNoCredentials = errors.New("no credentials configured")
)

// RemoteRequestError describes a failed API call.
type RemoteRequestError struct {
	Method string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *RemoteRequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: http status %d: %s", e.Method, e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RemoteRequestError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRemoteRequest, e.Err}
	}
	return []error{ErrRemoteRequest}
}

// sessionExpired reports whether err is worth a re-authentication.
func sessionExpired(err error) bool {
	if isCertificateError(err) {
		return false
	}
	var re *RemoteRequestError
	if !errors.As(err, &re) {
		return false
	}
	if re.Status == 0 {
		// network level failure
		return true
	}
	return re.Status == http.StatusUnauthorized
}

func isCertificateError(err error) bool {
	var (
		verr  *tls.CertificateVerificationError
		uaerr x509.UnknownAuthorityError
		cierr x509.CertificateInvalidError
		hnerr x509.HostnameError
	)
	return errors.As(err, &verr) ||
		errors.As(err, &uaerr) ||
		errors.As(err, &cierr) ||
		errors.As(err, &hnerr)
}
