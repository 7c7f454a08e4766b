package urlhandler

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadHostsFromFile reads a newline-delimited host list. Lines are trimmed and blank
// lines skipped; host syntax is not validated. Duplicate entries are kept.
// An empty file yields an empty list without error.
func ReadHostsFromFile(filePath string, logger zerolog.Logger) ([]models.Host, error) {
	fileLogger := logger.With().Str("file_path", filePath).Logger()

	info, err := os.Stat(filePath)
	if err != nil {
		fileLogger.Error().Err(err).Msg("Input file not accessible")
		return nil, fmt.Errorf("%w: %s: %v", ErrInputFile, filePath, err)
	}
	if info.IsDir() {
		fileLogger.Error().Msg("Input path is a directory, not a file")
		return nil, fmt.Errorf("%w: %s is a directory", ErrInputFile, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		fileLogger.Error().Err(err).Msg("Error opening input file")
		return nil, fmt.Errorf("%w: %s: %v", ErrInputFile, filePath, err)
	}
	defer file.Close()

	var hosts []models.Host
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	blankLines := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Bytes()
		if lineNumber == 1 {
			line = bytes.TrimPrefix(line, utf8BOM)
		}

		host := models.NewHost(string(line))
		if host.IsEmpty() {
			blankLines++
			continue
		}
		hosts = append(hosts, host)
	}

	if err := scanner.Err(); err != nil {
		fileLogger.Error().Err(err).Int("line_number", lineNumber).Msg("Error while reading input file")
		return nil, fmt.Errorf("%w: %s: %v", ErrInputFile, filePath, err)
	}

	if len(hosts) == 0 {
		fileLogger.Warn().Int("lines_read", lineNumber).Msg("Input file contains no hosts")
	}

	fileLogger.Info().
		Int("lines_read", lineNumber).
		Int("hosts", len(hosts)).
		Int("blank_lines", blankLines).
		Msg("Loaded hosts from input file")

	return hosts, nil
}

// WriteURLsToFile writes one URL per line. The file is replaced atomically: data is
// written to a temporary file in the same directory which is then renamed over the target.
func WriteURLsToFile(filePath string, urls []string, logger zerolog.Logger) error {
	fileLogger := logger.With().Str("file_path", filePath).Logger()

	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		fileLogger.Error().Err(err).Msg("Failed to create temporary output file")
		return fmt.Errorf("%w: %s: %v", ErrOutputFile, filePath, err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	writer := bufio.NewWriter(tmp)
	for _, u := range urls {
		if _, err := writer.WriteString(strings.TrimSpace(u) + "\n"); err != nil {
			cleanup()
			return fmt.Errorf("%w: %s: %v", ErrOutputFile, filePath, err)
		}
	}
	if err := writer.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %v", ErrOutputFile, filePath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", ErrOutputFile, filePath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		fileLogger.Debug().Err(err).Msg("Could not set output file permissions")
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		fileLogger.Error().Err(err).Msg("Failed to move output file into place")
		return fmt.Errorf("%w: %s: %v", ErrOutputFile, filePath, err)
	}

	fileLogger.Info().Int("urls", len(urls)).Msg("Wrote resolved script URLs")
	return nil
}
