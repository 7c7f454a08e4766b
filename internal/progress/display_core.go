package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
)

// ProgressDisplayConfig holds the display settings
type ProgressDisplayConfig struct {
	DisplayInterval   time.Duration
	EnableProgress    bool
	ShowETAEstimation bool
}

// ProgressDisplayManager periodically logs scan progress. It observes host outcomes
// from the scan coordinator.
type ProgressDisplayManager struct {
	scanProgress   *Progress
	mutex          sync.RWMutex
	logger         zerolog.Logger
	displayTicker  *time.Ticker
	isRunning      bool
	stopChan       chan struct{}
	ctx            context.Context
	cancel         context.CancelFunc
	lastDisplayed  string
	config         *ProgressDisplayConfig
	triggerDisplay chan struct{}
	done           chan struct{}
}

// NewProgressDisplayManager creates a new progress display manager
func NewProgressDisplayManager(logger zerolog.Logger, config *ProgressDisplayConfig) *ProgressDisplayManager {
	ctx, cancel := context.WithCancel(context.Background())

	if config == nil {
		config = &ProgressDisplayConfig{
			DisplayInterval:   3 * time.Second,
			EnableProgress:    true,
			ShowETAEstimation: true,
		}
	}

	return &ProgressDisplayManager{
		scanProgress:   NewProgress(),
		logger:         logger.With().Str("component", "ProgressDisplay").Logger(),
		stopChan:       make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
		config:         config,
		triggerDisplay: make(chan struct{}, 1),
		done:           make(chan struct{}),
	}
}

// Start begins the periodic display
func (pdm *ProgressDisplayManager) Start() {
	pdm.mutex.Lock()
	defer pdm.mutex.Unlock()

	if pdm.isRunning {
		return
	}

	if !pdm.config.EnableProgress {
		pdm.logger.Debug().Msg("Progress display disabled in configuration")
		return
	}

	pdm.isRunning = true
	pdm.displayTicker = time.NewTicker(pdm.config.DisplayInterval)

	go pdm.displayLoop()
}

// Stop ends the periodic display after printing the final state
func (pdm *ProgressDisplayManager) Stop() {
	pdm.mutex.Lock()
	if !pdm.isRunning {
		pdm.mutex.Unlock()
		return
	}

	pdm.isRunning = false
	pdm.cancel()
	if pdm.displayTicker != nil {
		pdm.displayTicker.Stop()
	}
	close(pdm.stopChan)
	pdm.mutex.Unlock()

	<-pdm.done
	pdm.displayProgress()
}

// GetScanProgress returns a copy of the current scan progress
func (pdm *ProgressDisplayManager) GetScanProgress() ProgressInfo {
	return pdm.scanProgress.Info()
}

// BeginScan starts tracking a scan of total hosts
func (pdm *ProgressDisplayManager) BeginScan(total int) {
	pdm.scanProgress.Begin(int64(total), "")
	pdm.triggerImmediateDisplay()
}

// OnOutcome records a host outcome
func (pdm *ProgressDisplayManager) OnOutcome(outcome models.ScanOutcome) {
	pdm.scanProgress.Record(outcome.Succeeded(), len(outcome.Found))
	pdm.triggerImmediateDisplay()
}

// FinishScan marks the scan complete or interrupted
func (pdm *ProgressDisplayManager) FinishScan(summary models.ScanSummary) {
	status := ProgressStatusComplete
	if summary.Interrupted {
		status = ProgressStatusInterrupted
	}
	pdm.scanProgress.SetStatus(status, fmt.Sprintf("%d unique URLs", summary.UniqueURLs))
	pdm.triggerImmediateDisplay()
}

func (pdm *ProgressDisplayManager) triggerImmediateDisplay() {
	select {
	case pdm.triggerDisplay <- struct{}{}:
	default:
	}
}
