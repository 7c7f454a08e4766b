// Package scanner fans hosts out to a bounded worker pool and folds their outcomes into
// one deduplicated result set.
package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
)

// DefaultThreads is the worker count used when none is configured.
const DefaultThreads = 10

// HostTask scans one host and never fails as a whole.
type HostTask interface {
	ScanHost(ctx context.Context, host models.Host) models.ScanOutcome
}

// CoordinatorConfig controls a scan run.
type CoordinatorConfig struct {
	SessionID string
	Threads   int
	// Verbose emits one info line per successful host.
	Verbose bool
}

// Coordinator distributes hosts to workers and aggregates their outcomes.
type Coordinator struct {
	task     HostTask
	config   CoordinatorConfig
	observer OutcomeObserver
	logger   zerolog.Logger
}

// NewCoordinator creates a new Coordinator. observer may be nil.
func NewCoordinator(task HostTask, config CoordinatorConfig, observer OutcomeObserver, logger zerolog.Logger) *Coordinator {
	if config.Threads < 1 {
		config.Threads = DefaultThreads
	}
	return &Coordinator{
		task:     task,
		config:   config,
		observer: observer,
		logger:   logger.With().Str("component", "Coordinator").Logger(),
	}
}

// Scan runs every host through the worker pool and returns the accumulated set.
// Host failures never abort the run. When ctx is cancelled no further hosts are
// dispatched; tasks already running finish under a context detached from ctx and their
// results are kept, and the summary is marked interrupted.
func (c *Coordinator) Scan(ctx context.Context, hosts []models.Host) (*ResultSet, models.ScanSummary) {
	results := NewResultSet()
	summary := models.ScanSummary{
		SessionID:  c.config.SessionID,
		TotalHosts: len(hosts),
		StartedAt:  time.Now(),
	}

	if len(hosts) == 0 {
		c.logger.Info().Msg("No hosts to scan")
		summary.Duration = time.Since(summary.StartedAt)
		return results, summary
	}

	threads := min(c.config.Threads, len(hosts))
	c.logger.Info().
		Int("hosts", len(hosts)).
		Int("threads", threads).
		Str("session_id", c.config.SessionID).
		Msg("Starting scan")

	jobs := make(chan models.Host)
	outcomes := make(chan models.ScanOutcome, threads)
	taskCtx := context.WithoutCancel(ctx)

	var dispatched atomic.Int64
	go func() {
		defer close(jobs)
		for _, host := range hosts {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- host:
				dispatched.Add(1)
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range jobs {
				outcomes <- c.task.ScanHost(taskCtx, host)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		c.aggregate(outcome, results, &summary)
	}

	summary.Dispatched = int(dispatched.Load())
	summary.UniqueURLs = results.Len()
	summary.Interrupted = ctx.Err() != nil && summary.Dispatched < summary.TotalHosts
	summary.Duration = time.Since(summary.StartedAt)

	event := c.logger.Info()
	if summary.Interrupted {
		event = c.logger.Warn()
	}
	event.
		Int("total_hosts", summary.TotalHosts).
		Int("dispatched", summary.Dispatched).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("unique_urls", summary.UniqueURLs).
		Bool("interrupted", summary.Interrupted).
		Dur("duration", summary.Duration).
		Msg("Scan finished")

	return results, summary
}

// aggregate runs on the single consumer goroutine only.
func (c *Coordinator) aggregate(outcome models.ScanOutcome, results *ResultSet, summary *models.ScanSummary) {
	if outcome.Succeeded() {
		summary.Succeeded++
		added := results.AddAll(outcome.Found)

		event := c.logger.Debug()
		if c.config.Verbose {
			event = c.logger.Info()
		}
		event.
			Str("host", outcome.Host.String()).
			Str("base_url", outcome.BaseURLString()).
			Int("scripts", len(outcome.Found)).
			Int("new_urls", added).
			Int("skipped_references", outcome.SkippedReferences).
			Dur("duration", outcome.Duration).
			Msg("Host scanned")
	} else {
		summary.Failed++
		c.logFailure(outcome)
	}

	if c.observer != nil {
		c.observer.OnOutcome(outcome)
	}
}

func (c *Coordinator) logFailure(outcome models.ScanOutcome) {
	schemes := make([]string, 0, len(outcome.Failures))
	kinds := make([]string, 0, len(outcome.Failures))
	causes := make([]string, 0, len(outcome.Failures))
	for _, failure := range outcome.Failures {
		schemes = append(schemes, string(failure.Scheme))
		kinds = append(kinds, string(failure.Kind))
		causes = append(causes, failure.Cause)
	}

	c.logger.Warn().
		Str("host", outcome.Host.String()).
		Strs("schemes", schemes).
		Strs("kinds", kinds).
		Strs("causes", causes).
		Err(outcome.Err).
		Msg("Host scan failed")
}
