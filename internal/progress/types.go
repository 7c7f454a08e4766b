package progress

import "time"

// ProgressStatus defines the state of a progress indicator
type ProgressStatus string

const (
	ProgressStatusIdle        ProgressStatus = "IDLE"
	ProgressStatusRunning     ProgressStatus = "RUNNING"
	ProgressStatusComplete    ProgressStatus = "COMPLETE"
	ProgressStatusInterrupted ProgressStatus = "INTERRUPTED"
)

// HostStats counts host outcomes folded in so far
type HostStats struct {
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`
	ScriptsFound int `json:"scripts_found"`
}

// ProgressInfo is a snapshot of a scan's progress
type ProgressInfo struct {
	Status         ProgressStatus `json:"status"`
	Current        int64          `json:"current"`
	Total          int64          `json:"total"`
	Message        string         `json:"message"`
	StartTime      time.Time      `json:"start_time"`
	LastUpdateTime time.Time      `json:"last_update_time"`
	EstimatedETA   time.Duration  `json:"estimated_eta"`
	Stats          HostStats      `json:"stats"`
}

// UpdateETA estimates the remaining time from the observed completion rate
func (pi *ProgressInfo) UpdateETA() {
	if pi.Total <= 0 || pi.Current <= 0 || pi.Status != ProgressStatusRunning {
		pi.EstimatedETA = 0
		return
	}

	elapsed := time.Since(pi.StartTime)
	if elapsed <= 0 {
		pi.EstimatedETA = 0
		return
	}

	rate := float64(pi.Current) / elapsed.Seconds()
	remaining := float64(pi.Total - pi.Current)
	if rate <= 0 || remaining <= 0 {
		pi.EstimatedETA = 0
		return
	}

	pi.EstimatedETA = time.Duration(remaining / rate * float64(time.Second))
}

// GetPercentage returns the completion percentage
func (pi *ProgressInfo) GetPercentage() float64 {
	if pi.Total <= 0 {
		return 0.0
	}
	percentage := float64(pi.Current) * 100 / float64(pi.Total)
	if percentage > 100 {
		return 100.0
	}
	return percentage
}
