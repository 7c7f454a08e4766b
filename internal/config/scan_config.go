package config

// ScanConfig controls the worker pool
type ScanConfig struct {
	Threads int  `json:"threads,omitempty" yaml:"threads,omitempty" validate:"min=1,max=1000"`
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// NewDefaultScanConfig creates default scan configuration
func NewDefaultScanConfig() ScanConfig {
	return ScanConfig{
		Threads: DefaultScanThreads,
		Verbose: false,
	}
}
