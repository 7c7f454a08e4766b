package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/scriptscan/internal/common"
	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// FindingsWriterConfig holds configuration for FindingsWriter
type FindingsWriterConfig struct {
	FilePath         string
	CompressionCodec string
	SessionID        string
}

// FindingsWriter buffers host to script URL rows and writes them to a Parquet file.
type FindingsWriter struct {
	config  FindingsWriterConfig
	logger  zerolog.Logger
	mu      sync.Mutex
	records []ScriptFindingRecord
	closed  bool
}

// NewFindingsWriter creates a new FindingsWriter
func NewFindingsWriter(cfg FindingsWriterConfig, logger zerolog.Logger) (*FindingsWriter, error) {
	if strings.TrimSpace(cfg.FilePath) == "" {
		return nil, common.NewValidationError("parquet_path", cfg.FilePath, "findings file path cannot be empty")
	}
	return &FindingsWriter{
		config: cfg,
		logger: logger.With().Str("component", "FindingsWriter").Logger(),
	}, nil
}

// OnOutcome buffers one row per script URL of a successful host.
func (fw *FindingsWriter) OnOutcome(outcome models.ScanOutcome) {
	if !outcome.Succeeded() || len(outcome.Found) == 0 {
		return
	}

	scanTime := time.Now().UnixMilli()
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return
	}
	for _, scriptURL := range outcome.Found {
		fw.records = append(fw.records, ScriptFindingRecord{
			SessionID:     fw.config.SessionID,
			Host:          outcome.Host.String(),
			Scheme:        string(outcome.Scheme),
			BaseURL:       outcome.BaseURLString(),
			ScriptURL:     scriptURL,
			ScanTimestamp: scanTime,
		})
	}
}

// Len returns the number of buffered rows.
func (fw *FindingsWriter) Len() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return len(fw.records)
}

// Close writes the buffered rows and releases them. Further outcomes are ignored.
func (fw *FindingsWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return ErrStoreClosed
	}
	fw.closed = true

	if err := fw.writeToParquetFile(fw.records); err != nil {
		return err
	}
	fw.logger.Info().
		Str("file_path", fw.config.FilePath).
		Int("records_written", len(fw.records)).
		Msg("Wrote script findings to Parquet file")
	fw.records = nil
	return nil
}

func (fw *FindingsWriter) writeToParquetFile(records []ScriptFindingRecord) error {
	dir := filepath.Dir(fw.config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return common.WrapError(err, "failed to create findings directory: "+dir)
	}

	file, err := os.Create(fw.config.FilePath)
	if err != nil {
		return common.WrapError(err, "failed to create/truncate parquet file: "+fw.config.FilePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[ScriptFindingRecord](file, fw.getCompressionOption())
	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return common.WrapError(err, "failed to write script findings to parquet file")
	}
	if err := writer.Close(); err != nil {
		return common.WrapError(err, "failed to finalize parquet file")
	}
	return nil
}

func (fw *FindingsWriter) getCompressionOption() parquet.WriterOption {
	switch strings.ToLower(fw.config.CompressionCodec) {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "none", "uncompressed":
		return parquet.Compression(&parquet.Uncompressed)
	case "zstd", "":
		return parquet.Compression(&parquet.Zstd)
	default:
		fw.logger.Warn().Str("codec", fw.config.CompressionCodec).Msg("Unsupported compression codec, defaulting to zstd")
		return parquet.Compression(&parquet.Zstd)
	}
}

// ReadFindings loads every row of a findings file.
func ReadFindings(filePath string) ([]ScriptFindingRecord, error) {
	records, err := parquet.ReadFile[ScriptFindingRecord](filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings file %s: %w", filePath, err)
	}
	return records, nil
}
