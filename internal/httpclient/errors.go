package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/aleister1102/scriptscan/internal/models"
)

var (
	// ErrUnexpectedStatus marks a response whose status is outside 2xx/3xx.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrTooManyRedirects is returned when a redirect chain exceeds MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// FetchError is a classified failure of a GET against one URL.
type FetchError struct {
	URL        string
	Kind       models.FailureKind
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == models.FailureHTTPStatus {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %s after %d attempt(s): %v", e.URL, e.Kind, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Failure converts the error into the record kept for diagnostics.
func (e *FetchError) Failure(scheme models.Scheme) models.SchemeFailure {
	cause := ""
	if e.Kind == models.FailureHTTPStatus {
		cause = fmt.Sprintf("HTTP %d", e.StatusCode)
	} else if e.Err != nil {
		cause = e.Err.Error()
	}
	return models.SchemeFailure{
		Scheme:     scheme,
		URL:        e.URL,
		Kind:       e.Kind,
		StatusCode: e.StatusCode,
		Attempts:   e.Attempts,
		Cause:      cause,
	}
}

// AsFetchError extracts a FetchError from an error chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr, true
	}
	return nil, false
}

// classifyError maps a transport error to a failure kind. ctx is the caller's context,
// so a cancelled run is not mistaken for a slow server.
func classifyError(ctx context.Context, err error) models.FailureKind {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return models.FailureCanceled
	}
	var reqErr *invalidRequestError
	if errors.As(err, &reqErr) || errors.Is(err, ErrTooManyRedirects) {
		return models.FailureRequest
	}
	if isTLSError(err) {
		return models.FailureTLS
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.FailureTimeout
	}
	return models.FailureConnection
}

// invalidRequestError marks a URL that could not be turned into a request.
type invalidRequestError struct {
	err error
}

func (e *invalidRequestError) Error() string {
	return "invalid request: " + e.err.Error()
}

func (e *invalidRequestError) Unwrap() error {
	return e.err
}

func isTLSError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		alertErr     tls.AlertError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
		systemRoots  x509.SystemRootsError
		constraintEr x509.ConstraintViolationError
	)
	return errors.Is(err, http.ErrSchemeMismatch) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &systemRoots) ||
		errors.As(err, &constraintEr)
}
