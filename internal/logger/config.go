package logger

import (
	"github.com/aleister1102/scriptscan/internal/config"
	"github.com/rs/zerolog"
)

// failureLevel is the level host failures are logged at. Configured levels above it
// are lowered so failures always reach the console and the log file.
const failureLevel = zerolog.WarnLevel

// LoggerConfig is the resolved logger setup of a scan run
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	// EnableFile writes a rotating copy of the log, the audit trail of failed hosts
	EnableFile bool
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
}

// LogFormat selects how log lines are rendered
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText
)

func (lf LogFormat) String() string {
	switch lf {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "console"
	}
}

// DefaultLoggerConfig logs info and above to stderr and to scriptscan.log
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        FormatConsole,
		EnableConsole: true,
		EnableFile:    true,
		FilePath:      config.DefaultLogFile,
		MaxSizeMB:     config.DefaultMaxLogSizeMB,
		MaxBackups:    config.DefaultMaxLogBackups,
	}
}

// clampLevel keeps host failure diagnostics visible whatever level is configured
func clampLevel(level zerolog.Level) zerolog.Level {
	if level > failureLevel && level != zerolog.Disabled && level != zerolog.NoLevel {
		return failureLevel
	}
	return level
}
