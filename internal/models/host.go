package models

import "strings"

// Host identifies a network location to scan: a domain or IP, optionally with a port.
// Entries are opaque; a value carrying a scheme or path is not interpreted and simply
// fails its own fetch attempts.
type Host string

// NewHost trims surrounding whitespace from a raw input line.
func NewHost(raw string) Host {
	return Host(strings.TrimSpace(raw))
}

// String returns the host as a plain string.
func (h Host) String() string {
	return string(h)
}

// IsEmpty reports whether the host carries no characters.
func (h Host) IsEmpty() bool {
	return h == ""
}

// Scheme is the protocol tried against a host.
type Scheme string

const (
	SchemeHTTPS Scheme = "https"
	SchemeHTTP  Scheme = "http"
)

// DefaultSchemeOrder is the preference order for scan targets: https before http.
var DefaultSchemeOrder = []Scheme{SchemeHTTPS, SchemeHTTP}

// ScanTarget pairs a host with the scheme under trial.
type ScanTarget struct {
	Host   Host
	Scheme Scheme
}

// URL returns the candidate base URL for the target's front page.
func (t ScanTarget) URL() string {
	return string(t.Scheme) + "://" + string(t.Host) + "/"
}

// NewScanTargets builds the ordered targets for a host.
func NewScanTargets(host Host, order []Scheme) []ScanTarget {
	if len(order) == 0 {
		order = DefaultSchemeOrder
	}
	targets := make([]ScanTarget, 0, len(order))
	for _, scheme := range order {
		targets = append(targets, ScanTarget{Host: host, Scheme: scheme})
	}
	return targets
}
