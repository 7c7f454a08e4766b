package progress

import (
	"sync"
	"time"
)

// Progress tracks how many hosts of a scan have completed.
type Progress struct {
	mu   sync.RWMutex
	info ProgressInfo
}

// NewProgress creates a new Progress indicator.
func NewProgress() *Progress {
	return &Progress{
		info: ProgressInfo{Status: ProgressStatusIdle},
	}
}

// Info returns a copy of the ProgressInfo.
func (p *Progress) Info() ProgressInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.info
}

// Begin resets the indicator for a scan of total hosts.
func (p *Progress) Begin(total int64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.info = ProgressInfo{
		Status:         ProgressStatusRunning,
		Total:          total,
		Message:        message,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Record folds one host outcome into the counters.
func (p *Progress) Record(succeeded bool, scripts int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.info.Status == ProgressStatusIdle {
		p.info.Status = ProgressStatusRunning
		p.info.StartTime = time.Now()
	}

	p.info.Current++
	if succeeded {
		p.info.Stats.Succeeded++
		p.info.Stats.ScriptsFound += scripts
	} else {
		p.info.Stats.Failed++
	}
	p.info.LastUpdateTime = time.Now()
	p.info.UpdateETA()
}

// SetStatus sets the progress status.
func (p *Progress) SetStatus(status ProgressStatus, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info.Status = status
	p.info.Message = message
	p.info.LastUpdateTime = time.Now()
	if status != ProgressStatusRunning {
		p.info.EstimatedETA = 0
	}
}
