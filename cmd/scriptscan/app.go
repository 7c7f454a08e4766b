package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aleister1102/scriptscan/internal/config"
	"github.com/aleister1102/scriptscan/internal/datastore"
	"github.com/aleister1102/scriptscan/internal/extractor"
	"github.com/aleister1102/scriptscan/internal/fetcher"
	"github.com/aleister1102/scriptscan/internal/httpclient"
	"github.com/aleister1102/scriptscan/internal/logger"
	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/aleister1102/scriptscan/internal/progress"
	"github.com/aleister1102/scriptscan/internal/scanner"
	"github.com/aleister1102/scriptscan/internal/urlhandler"
	"github.com/rs/zerolog"
)

const (
	exitOK    = 0
	exitError = 1
	// exitInterrupted is used when a second signal aborts the run without flushing
	exitInterrupted = 130
)

const sessionIDLayout = "20060102-150405"

// run executes one scan and returns the process exit code. Resolved URLs are printed to
// stdout only when the output file cannot be written.
func run(ctx context.Context, flags AppFlags, stdout, stderr io.Writer) int {
	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	gCfg, err := config.LoadGlobalConfig(flags.ConfigFile, bootLogger)
	if err != nil {
		bootLogger.Error().Err(err).Str("path", flags.ConfigFile).Msg("Could not load configuration")
		return exitError
	}
	flags.ApplyTo(gCfg)

	if err := config.ValidateConfig(gCfg); err != nil {
		bootLogger.Error().Err(err).Msg("Configuration validation failed")
		return exitError
	}

	appLogger, err := logger.NewLoggerBuilder().
		WithConfig(gCfg.LogConfig).
		WithConsoleOutput(stderr).
		Build()
	if err != nil {
		bootLogger.Error().Err(err).Msg("Could not initialize logger")
		return exitError
	}
	zLogger := *appLogger.GetZerolog()

	hosts, err := urlhandler.ReadHostsFromFile(gCfg.InputConfig.InputFile, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Could not read hosts")
		return exitError
	}

	client, err := httpclient.NewHTTPClient(newHTTPClientConfig(gCfg.HTTPClientConfig), zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Could not create HTTP client")
		return exitError
	}

	startedAt := time.Now()
	sessionID := startedAt.Format(sessionIDLayout)
	sessionLogger := zLogger.With().Str("session_id", sessionID).Logger()

	pageFetcher := fetcher.NewPageFetcher(client, newRetryPolicy(gCfg.RetryConfig), sessionLogger)
	hostScanner := scanner.NewHostScanner(pageFetcher, extractor.NewScriptExtractor(sessionLogger), sessionLogger)

	sinks := openSinks(gCfg, sessionID, len(hosts), startedAt, sessionLogger)
	defer sinks.close()

	coordinator := scanner.NewCoordinator(hostScanner, scanner.CoordinatorConfig{
		SessionID: sessionID,
		Threads:   gCfg.ScanConfig.Threads,
		Verbose:   gCfg.ScanConfig.Verbose,
	}, sinks.observer(), sessionLogger)

	sinks.begin(len(hosts))
	results, summary := coordinator.Scan(ctx, hosts)
	sinks.finish(summary)

	urls := results.Sorted()
	if err := urlhandler.WriteURLsToFile(gCfg.InputConfig.OutputFile, urls, sessionLogger); err != nil {
		sessionLogger.Error().Err(err).Int("urls", len(urls)).Msg("Could not write output file, printing URLs to stdout")
		for _, u := range urls {
			fmt.Fprintln(stdout, u)
		}
		return exitError
	}

	sessionLogger.Info().
		Str("status", string(summary.Status())).
		Int("hosts", summary.TotalHosts).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("unique_urls", summary.UniqueURLs).
		Dur("duration", summary.Duration).
		Str("output", gCfg.InputConfig.OutputFile).
		Msg("Results written")
	return exitOK
}

// newHTTPClientConfig maps the file/flag settings onto the transport defaults
func newHTTPClientConfig(cfg config.HTTPClientConfig) httpclient.HTTPClientConfig {
	clientCfg := httpclient.DefaultHTTPClientConfig()
	clientCfg.Timeout = cfg.Timeout.Std()
	clientCfg.InsecureSkipVerify = cfg.InsecureSkipVerify
	clientCfg.FollowRedirects = cfg.FollowRedirects
	clientCfg.MaxRedirects = cfg.MaxRedirects
	if cfg.UserAgent != "" {
		clientCfg.UserAgent = cfg.UserAgent
	}
	if len(cfg.CustomHeaders) > 0 {
		clientCfg.CustomHeaders = cfg.CustomHeaders
	}
	if cfg.MaxIdleConns > 0 {
		clientCfg.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost > 0 {
		clientCfg.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}
	clientCfg.EnableHTTP2 = cfg.EnableHTTP2
	clientCfg.Proxy = cfg.Proxy
	clientCfg.MaxContentSize = cfg.MaxContentSizeMB * 1024 * 1024
	clientCfg.RequestsPerSecond = cfg.RequestsPerSecond
	if cfg.Burst > 0 {
		clientCfg.Burst = cfg.Burst
	}
	return clientCfg
}

func newRetryPolicy(cfg config.RetryConfig) httpclient.RetryPolicy {
	policy := httpclient.RetryPolicy{
		MaxRetries:       cfg.MaxRetries,
		BackoffFactor:    cfg.BackoffFactor.Std(),
		MaxDelay:         cfg.MaxDelay.Std(),
		RetryStatusCodes: cfg.RetryStatusCodes,
	}
	if len(policy.RetryStatusCodes) == 0 {
		policy.RetryStatusCodes = httpclient.DefaultRetryStatusCodes
	}
	return policy
}

// runSinks are the optional consumers of host outcomes: progress display, run history
// and the Parquet findings export. Each one failing to open is logged and skipped.
type runSinks struct {
	logger   zerolog.Logger
	progress *progress.ProgressDisplayManager
	history  *datastore.HistoryStore
	runID    int64
	recorder *datastore.HistoryRecorder
	findings *datastore.FindingsWriter
}

func openSinks(gCfg *config.GlobalConfig, sessionID string, totalHosts int, startedAt time.Time, logger zerolog.Logger) *runSinks {
	sinks := &runSinks{logger: logger}

	if gCfg.ScanConfig.Verbose {
		sinks.progress = progress.NewProgressDisplayManager(logger, &progress.ProgressDisplayConfig{
			DisplayInterval:   gCfg.ProgressConfig.GetDisplayIntervalDuration(),
			EnableProgress:    true,
			ShowETAEstimation: gCfg.ProgressConfig.ShowETAEstimation,
		})
	}

	if path := gCfg.StorageConfig.HistoryDBPath; path != "" {
		store, err := datastore.NewHistoryStore(path, logger)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("History database unavailable, run will not be recorded")
		} else {
			runID, err := store.RecordRunStart(sessionID, gCfg.InputConfig.InputFile, totalHosts, startedAt)
			if err != nil {
				logger.Warn().Err(err).Msg("Could not record run start, run will not be recorded")
				_ = store.Close()
			} else {
				sinks.history = store
				sinks.runID = runID
				sinks.recorder = datastore.NewHistoryRecorder(store, sessionID, logger)
			}
		}
	}

	if path := gCfg.StorageConfig.ParquetPath; path != "" {
		writer, err := datastore.NewFindingsWriter(datastore.FindingsWriterConfig{
			FilePath:         path,
			CompressionCodec: gCfg.StorageConfig.CompressionCodec,
			SessionID:        sessionID,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Findings export disabled")
		} else {
			sinks.findings = writer
		}
	}

	return sinks
}

func (s *runSinks) observer() scanner.OutcomeObserver {
	var observers scanner.MultiObserver
	if s.progress != nil {
		observers = append(observers, s.progress)
	}
	if s.recorder != nil {
		observers = append(observers, s.recorder)
	}
	if s.findings != nil {
		observers = append(observers, s.findings)
	}
	if len(observers) == 0 {
		return nil
	}
	return observers
}

func (s *runSinks) begin(totalHosts int) {
	if s.progress != nil {
		s.progress.BeginScan(totalHosts)
		s.progress.Start()
	}
}

func (s *runSinks) finish(summary models.ScanSummary) {
	if s.progress != nil {
		s.progress.FinishScan(summary)
		s.progress.Stop()
	}
	if s.history != nil {
		if err := s.history.UpdateRunCompletion(s.runID, summary, time.Now()); err != nil {
			s.logger.Warn().Err(err).Msg("Could not record run completion")
		}
	}
	if s.findings != nil {
		if err := s.findings.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Could not write findings export")
		}
	}
}

func (s *runSinks) close() {
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Error closing history database")
		}
	}
}
