// Package fetcher retrieves a host's front page, preferring https and falling back to http.
package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/aleister1102/scriptscan/internal/httpclient"
	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
)

// ErrAllSchemesFailed is returned when no scheme produced a page.
var ErrAllSchemesFailed = errors.New("all schemes failed")

// PageGetter is the transport used by PageFetcher.
type PageGetter interface {
	Get(ctx context.Context, rawURL string, policy httpclient.RetryPolicy) (*httpclient.Response, error)
}

// PageFetcher fetches https://host/ and, if that fails for any reason, http://host/.
type PageFetcher struct {
	client  PageGetter
	policy  httpclient.RetryPolicy
	schemes []models.Scheme
	logger  zerolog.Logger
}

// NewPageFetcher creates a new PageFetcher
func NewPageFetcher(client PageGetter, policy httpclient.RetryPolicy, logger zerolog.Logger) *PageFetcher {
	return &PageFetcher{
		client:  client,
		policy:  policy,
		schemes: models.DefaultSchemeOrder,
		logger:  logger.With().Str("component", "PageFetcher").Logger(),
	}
}

// Fetch tries each scheme in order and returns the first page retrieved. Failures of
// earlier schemes are returned alongside the result. When every scheme fails the error
// wraps ErrAllSchemesFailed and the last *httpclient.FetchError. Cancellation stops the
// fallback.
func (f *PageFetcher) Fetch(ctx context.Context, host models.Host) (*models.FetchResult, []models.SchemeFailure, error) {
	var (
		failures []models.SchemeFailure
		lastErr  error
	)

	for _, target := range models.NewScanTargets(host, f.schemes) {
		if ctx.Err() != nil {
			break
		}

		rawURL := target.URL()
		resp, err := f.client.Get(ctx, rawURL, f.policy)
		if err == nil {
			f.logger.Debug().
				Str("host", host.String()).
				Str("scheme", string(target.Scheme)).
				Str("final_url", resp.FinalURL.String()).
				Int("status_code", resp.StatusCode).
				Int("attempts", resp.Attempts).
				Msg("Fetched front page")

			return &models.FetchResult{
				Target:       target,
				RequestedURL: rawURL,
				FinalURL:     resp.FinalURL,
				StatusCode:   resp.StatusCode,
				ContentType:  resp.ContentType,
				Body:         resp.Body,
				Attempts:     resp.Attempts,
			}, failures, nil
		}

		lastErr = err
		failure := schemeFailure(target, err)
		failures = append(failures, failure)

		f.logger.Debug().
			Str("host", host.String()).
			Str("scheme", string(target.Scheme)).
			Str("kind", string(failure.Kind)).
			Str("cause", failure.Cause).
			Msg("Scheme attempt failed")

		if failure.Kind == models.FailureCanceled {
			break
		}
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return nil, failures, fmt.Errorf("%w for %s: %w", ErrAllSchemesFailed, host, lastErr)
}

func schemeFailure(target models.ScanTarget, err error) models.SchemeFailure {
	if fetchErr, ok := httpclient.AsFetchError(err); ok {
		return fetchErr.Failure(target.Scheme)
	}
	return models.SchemeFailure{
		Scheme: target.Scheme,
		URL:    target.URL(),
		Kind:   models.FailureConnection,
		Cause:  err.Error(),
	}
}
