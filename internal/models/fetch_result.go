package models

import "net/url"

// FailureKind classifies why a fetch attempt against a target failed.
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailureConnection FailureKind = "connection"
	FailureTLS        FailureKind = "tls"
	FailureHTTPStatus FailureKind = "http_status"
	FailureCanceled   FailureKind = "canceled"
	FailureRequest    FailureKind = "invalid_request"
	FailureInternal   FailureKind = "internal"
)

// Retriable reports whether failures of this kind may succeed on a later attempt.
func (k FailureKind) Retriable() bool {
	return k == FailureTimeout || k == FailureConnection
}

// FetchResult is a successful page fetch. It is consumed by extraction and then dropped.
type FetchResult struct {
	Target       ScanTarget
	RequestedURL string
	// FinalURL is the URL after redirects; it is the base for reference resolution.
	FinalURL    *url.URL
	StatusCode  int
	ContentType string
	Body        []byte
	Attempts    int
}

// SchemeFailure records one failed scheme attempt for a host.
type SchemeFailure struct {
	Scheme     Scheme
	URL        string
	Kind       FailureKind
	StatusCode int
	Attempts   int
	Cause      string
}
