package main

import (
	"errors"
	"flag"
	"io"
	"time"

	"github.com/aleister1102/scriptscan/internal/config"
)

// AppFlags holds the command-line options of a run
type AppFlags struct {
	InputFile   string
	OutputFile  string
	ConfigFile  string
	LogFile     string
	HistoryDB   string
	ParquetPath string
	Verbose     bool
	NoVerify    bool
	Timeout     time.Duration
	Threads     int
	Retries     int
	Backoff     time.Duration

	// explicit holds the canonical names of the flags present on the command line
	explicit map[string]bool
}

// flagAliases maps short flags to the long name they stand for
var flagAliases = map[string]string{
	"f": "file",
	"o": "output",
	"c": "config",
	"v": "verbose",
	"t": "threads",
}

// ParseFlags parses args (without the program name). Usage errors go to output.
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("scriptscan", flag.ContinueOnError)
	fs.SetOutput(output)

	flags := AppFlags{}
	fs.StringVar(&flags.InputFile, "file", "", "Path to a text file with one host per line (required)")
	fs.StringVar(&flags.InputFile, "f", "", "Alias for -file")
	fs.StringVar(&flags.OutputFile, "output", "", "Path of the file receiving the resolved script URLs (required)")
	fs.StringVar(&flags.OutputFile, "o", "", "Alias for -output")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to a YAML/JSON configuration file. If not set, searches default locations.")
	fs.StringVar(&flags.ConfigFile, "c", "", "Alias for -config")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Report progress and log every successful host")
	fs.BoolVar(&flags.Verbose, "v", false, "Alias for -verbose")
	fs.IntVar(&flags.Threads, "threads", config.DefaultScanThreads, "Number of hosts scanned concurrently")
	fs.IntVar(&flags.Threads, "t", config.DefaultScanThreads, "Alias for -threads")
	fs.DurationVar(&flags.Timeout, "timeout", config.MustParseDuration(config.DefaultHTTPTimeout).Std(), "Timeout of a single request")
	fs.BoolVar(&flags.NoVerify, "no-verify", false, "Disable TLS certificate verification")
	fs.IntVar(&flags.Retries, "retries", config.DefaultRetryMaxRetries, "Retries per URL after the first attempt")
	fs.DurationVar(&flags.Backoff, "backoff", config.MustParseDuration(config.DefaultRetryBackoffFactor).Std(), "Backoff factor; retry n waits factor * 2^(n-1)")
	fs.StringVar(&flags.LogFile, "log-file", "", "Log file path (overrides config)")
	fs.StringVar(&flags.HistoryDB, "history-db", "", "SQLite database recording runs and failed hosts")
	fs.StringVar(&flags.ParquetPath, "parquet", "", "Parquet file receiving host to script URL rows")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}
	if fs.NArg() > 0 {
		return AppFlags{}, errors.New("unexpected arguments: " + fs.Arg(0))
	}

	flags.explicit = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := flagAliases[name]; ok {
			name = long
		}
		flags.explicit[name] = true
	})

	return flags, nil
}

// IsSet reports whether the named flag (or its alias) was given on the command line.
func (f AppFlags) IsSet(name string) bool {
	return f.explicit[name]
}

// ApplyTo overrides config values with the flags given explicitly. Flags left at their
// defaults do not mask values from the config file.
func (f AppFlags) ApplyTo(cfg *config.GlobalConfig) {
	if f.InputFile != "" {
		cfg.InputConfig.InputFile = f.InputFile
	}
	if f.OutputFile != "" {
		cfg.InputConfig.OutputFile = f.OutputFile
	}
	if f.IsSet("verbose") {
		cfg.ScanConfig.Verbose = f.Verbose
	}
	if f.IsSet("threads") {
		cfg.ScanConfig.Threads = f.Threads
	}
	if f.IsSet("timeout") {
		cfg.HTTPClientConfig.Timeout = config.Duration(f.Timeout)
	}
	if f.IsSet("no-verify") {
		cfg.HTTPClientConfig.InsecureSkipVerify = f.NoVerify
	}
	if f.IsSet("retries") {
		cfg.RetryConfig.MaxRetries = f.Retries
	}
	if f.IsSet("backoff") {
		cfg.RetryConfig.BackoffFactor = config.Duration(f.Backoff)
	}
	if f.LogFile != "" {
		cfg.LogConfig.LogFile = f.LogFile
	}
	if f.HistoryDB != "" {
		cfg.StorageConfig.HistoryDBPath = f.HistoryDB
	}
	if f.ParquetPath != "" {
		cfg.StorageConfig.ParquetPath = f.ParquetPath
	}
}
