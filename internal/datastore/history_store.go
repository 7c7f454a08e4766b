package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// HistoryStore keeps an SQLite record of scan runs and the hosts that failed in them.
type HistoryStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// ScanRunEntry represents a record in the scan_runs table.
type ScanRunEntry struct {
	ID         int64
	SessionID  string
	StartedAt  time.Time
	EndedAt    sql.NullTime
	Status     string
	InputPath  string
	TotalHosts int
	Succeeded  int
	Failed     int
	UniqueURLs int
}

// HostFailureEntry represents a record in the host_failures table.
type HostFailureEntry struct {
	SessionID  string
	Host       string
	Scheme     string
	URL        string
	Kind       string
	StatusCode int
	Attempts   int
	Cause      string
	RecordedAt time.Time
}

// NewHistoryStore opens (creating if needed) the database and ensures the schema.
func NewHistoryStore(dataSourceName string, logger zerolog.Logger) (*HistoryStore, error) {
	logger = logger.With().Str("component", "HistoryStore").Logger()
	logger.Debug().Str("db_path", dataSourceName).Msg("Initializing history database connection")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create history database directory")
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	dbInstance.SetMaxOpenConns(1)

	store := &HistoryStore{
		db:     dbInstance,
		logger: logger,
	}

	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Info().Str("path", dataSourceName).Msg("History database ready")
	return store, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the scan_runs and host_failures tables if they don't already exist.
func (s *HistoryStore) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS scan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT UNIQUE NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		status TEXT NOT NULL,
		input_path TEXT NOT NULL,
		total_hosts INTEGER DEFAULT 0,
		succeeded INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		unique_urls INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS host_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		host TEXT NOT NULL,
		scheme TEXT NOT NULL,
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		status_code INTEGER,
		attempts INTEGER,
		cause TEXT,
		recorded_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_host_failures_session ON host_failures (session_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	s.logger.Debug().Msg("Schema initialized (scan_runs, host_failures)")
	return nil
}

// RecordRunStart inserts a run with status STARTED and returns its row ID.
func (s *HistoryStore) RecordRunStart(sessionID, inputPath string, totalHosts int, startTime time.Time) (int64, error) {
	query := `INSERT INTO scan_runs (session_id, input_path, total_hosts, started_at, status) VALUES (?, ?, ?, ?, ?)`
	result, err := s.db.Exec(query, sessionID, inputPath, totalHosts, startTime, string(models.ScanStatusStarted))
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to record run start")
		return 0, fmt.Errorf("failed to insert run start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	s.logger.Debug().Int64("db_id", id).Str("session_id", sessionID).Msg("Recorded run start")
	return id, nil
}

// UpdateRunCompletion stores the final counters and status of a run.
func (s *HistoryStore) UpdateRunCompletion(runID int64, summary models.ScanSummary, endTime time.Time) error {
	query := `UPDATE scan_runs SET ended_at = ?, status = ?, succeeded = ?, failed = ?, unique_urls = ? WHERE id = ?`
	result, err := s.db.Exec(query, endTime, string(summary.Status()), summary.Succeeded, summary.Failed, summary.UniqueURLs, runID)
	if err != nil {
		s.logger.Error().Err(err).Int64("db_id", runID).Msg("Failed to update run completion")
		return fmt.Errorf("failed to update run completion for ID %d: %w", runID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("%w: id %d", ErrRunNotFound, runID)
	}
	s.logger.Debug().Int64("db_id", runID).Str("status", string(summary.Status())).Msg("Updated run completion")
	return nil
}

// RecordHostFailures stores one row per failed scheme attempt of a host.
func (s *HistoryStore) RecordHostFailures(sessionID string, host models.Host, failures []models.SchemeFailure, recordedAt time.Time) error {
	if len(failures) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO host_failures (session_id, host, scheme, url, kind, status_code, attempts, cause, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare failure insert: %w", err)
	}
	defer stmt.Close()

	for _, failure := range failures {
		if _, err := stmt.Exec(sessionID, host.String(), string(failure.Scheme), failure.URL, string(failure.Kind), failure.StatusCode, failure.Attempts, failure.Cause, recordedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert failure for host %s: %w", host, err)
		}
	}

	return tx.Commit()
}

// GetRun returns a run by session ID.
func (s *HistoryStore) GetRun(sessionID string) (*ScanRunEntry, error) {
	query := `SELECT id, session_id, started_at, ended_at, status, input_path, total_hosts, succeeded, failed, unique_urls FROM scan_runs WHERE session_id = ?`
	var entry ScanRunEntry
	err := s.db.QueryRow(query, sessionID).Scan(
		&entry.ID, &entry.SessionID, &entry.StartedAt, &entry.EndedAt, &entry.Status,
		&entry.InputPath, &entry.TotalHosts, &entry.Succeeded, &entry.Failed, &entry.UniqueURLs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to query run %s: %w", sessionID, err)
	}
	return &entry, nil
}

// GetHostFailures returns the failures recorded for a run in insertion order.
func (s *HistoryStore) GetHostFailures(sessionID string) ([]HostFailureEntry, error) {
	query := `SELECT session_id, host, scheme, url, kind, status_code, attempts, cause, recorded_at FROM host_failures WHERE session_id = ? ORDER BY id`
	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var entries []HostFailureEntry
	for rows.Next() {
		var entry HostFailureEntry
		var cause sql.NullString
		if err := rows.Scan(&entry.SessionID, &entry.Host, &entry.Scheme, &entry.URL, &entry.Kind, &entry.StatusCode, &entry.Attempts, &cause, &entry.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan failure row: %w", err)
		}
		entry.Cause = cause.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// HistoryRecorder writes the failures of a single run as outcomes arrive.
type HistoryRecorder struct {
	store     *HistoryStore
	sessionID string
	logger    zerolog.Logger
}

// NewHistoryRecorder creates a new HistoryRecorder
func NewHistoryRecorder(store *HistoryStore, sessionID string, logger zerolog.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		store:     store,
		sessionID: sessionID,
		logger:    logger.With().Str("component", "HistoryRecorder").Logger(),
	}
}

// OnOutcome records the scheme failures of a failed host. Storage errors are logged.
func (r *HistoryRecorder) OnOutcome(outcome models.ScanOutcome) {
	if outcome.Succeeded() {
		return
	}

	failures := outcome.Failures
	if len(failures) == 0 && outcome.Err != nil {
		failures = []models.SchemeFailure{{Kind: models.FailureInternal, Cause: outcome.Err.Error()}}
	}
	if err := r.store.RecordHostFailures(r.sessionID, outcome.Host, failures, time.Now()); err != nil {
		r.logger.Error().Err(err).Str("host", outcome.Host.String()).Msg("Failed to record host failure")
	}
}
