package models

import "time"

// ScanStatus defines the possible states of a scan run.
type ScanStatus string

const (
	ScanStatusStarted     ScanStatus = "STARTED"
	ScanStatusCompleted   ScanStatus = "COMPLETED"
	ScanStatusInterrupted ScanStatus = "INTERRUPTED"
	ScanStatusNoTargets   ScanStatus = "NO_TARGETS"
)

// ScanSummary aggregates the counters of one scan run.
type ScanSummary struct {
	SessionID   string
	TotalHosts  int
	Dispatched  int
	Succeeded   int
	Failed      int
	UniqueURLs  int
	Interrupted bool
	StartedAt   time.Time
	Duration    time.Duration
}

// Status derives the run status from the counters.
func (s ScanSummary) Status() ScanStatus {
	switch {
	case s.Interrupted:
		return ScanStatusInterrupted
	case s.TotalHosts == 0:
		return ScanStatusNoTargets
	default:
		return ScanStatusCompleted
	}
}

// Completed returns the number of hosts whose outcome has been folded in.
func (s ScanSummary) Completed() int {
	return s.Succeeded + s.Failed
}
