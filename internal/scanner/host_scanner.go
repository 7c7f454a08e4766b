package scanner

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime/debug"
	"time"

	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/aleister1102/scriptscan/internal/urlhandler"
	"github.com/rs/zerolog"
)

// ErrTaskPanic marks a host whose scan task panicked.
var ErrTaskPanic = errors.New("host scan task panicked")

// PageFetcher retrieves a host's front page.
type PageFetcher interface {
	Fetch(ctx context.Context, host models.Host) (*models.FetchResult, []models.SchemeFailure, error)
}

// ScriptExtractor yields raw script src values of a document.
type ScriptExtractor interface {
	Extract(document []byte, contentType string) iter.Seq[string]
}

// HostScanner runs fetch, extract and resolve for a single host.
type HostScanner struct {
	fetcher   PageFetcher
	extractor ScriptExtractor
	logger    zerolog.Logger
}

// NewHostScanner creates a new HostScanner
func NewHostScanner(fetcher PageFetcher, extractor ScriptExtractor, logger zerolog.Logger) *HostScanner {
	return &HostScanner{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logger.With().Str("component", "HostScanner").Logger(),
	}
}

// ScanHost always returns a completed outcome. Fetch failures and panics are recorded
// in outcome.Err; unresolvable references are skipped and counted.
func (hs *HostScanner) ScanHost(ctx context.Context, host models.Host) (outcome models.ScanOutcome) {
	start := time.Now()
	outcome.Host = host

	defer func() {
		if r := recover(); r != nil {
			hs.logger.Error().
				Str("host", host.String()).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic while scanning host")
			outcome.Err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
			outcome.Found = nil
		}
		outcome.Duration = time.Since(start)
	}()

	result, failures, err := hs.fetcher.Fetch(ctx, host)
	outcome.Failures = failures
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Scheme = result.Target.Scheme
	outcome.BaseURL = result.FinalURL

	found, resolveErrs := urlhandler.ResolveAll(result.FinalURL, hs.extractor.Extract(result.Body, result.ContentType))
	for _, resolveErr := range resolveErrs {
		hs.logger.Debug().Str("host", host.String()).Err(resolveErr).Msg("Skipping script reference")
	}

	outcome.Found = found
	outcome.SkippedReferences = len(resolveErrs)
	return outcome
}
