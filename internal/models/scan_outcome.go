package models

import (
	"net/url"
	"time"
)

// ScanOutcome is the per-host record produced by a host scan task.
type ScanOutcome struct {
	Host    Host
	Scheme  Scheme
	BaseURL *url.URL
	// Found holds the resolved script URLs for this host, unique and in document order.
	Found []string
	// SkippedReferences counts script sources that could not be resolved.
	SkippedReferences int
	Failures          []SchemeFailure
	Err               error
	Duration          time.Duration
}

// Succeeded reports whether the host's page was fetched.
func (o ScanOutcome) Succeeded() bool {
	return o.Err == nil
}

// BaseURLString returns the base URL or an empty string for failed hosts.
func (o ScanOutcome) BaseURLString() string {
	if o.BaseURL == nil {
		return ""
	}
	return o.BaseURL.String()
}
