package config

const (
	// Input Defaults
	DefaultConfigEnvVar = "SCRIPTSCAN_CONFIG"

	// Scan Defaults
	DefaultScanThreads = 10

	// HTTP Client Defaults
	DefaultHTTPTimeout        = "10s"
	DefaultHTTPMaxRedirects   = 10
	DefaultHTTPUserAgent      = "Mozilla/5.0 (compatible; scriptscan/1.0)"
	DefaultHTTPMaxContentMB   = 10
	DefaultHTTPMaxIdleConns   = 100
	DefaultHTTPIdlePerHost    = 4
	DefaultHTTPRequestsPerSec = 0

	// Retry Defaults
	DefaultRetryMaxRetries    = 3
	DefaultRetryBackoffFactor = "500ms"
	DefaultRetryMaxDelay      = "30s"

	// Storage Defaults
	DefaultStorageCompressionCodec = "zstd"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = "scriptscan.log"
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Progress Defaults
	DefaultProgressDisplayInterval = 3
)

// DefaultRetryStatusCodes are the statuses retried when none are configured.
var DefaultRetryStatusCodes = []int{429, 500, 502, 503, 504}
