package config

// HTTPClientConfig defines the transport used to fetch front pages
type HTTPClientConfig struct {
	Timeout             Duration          `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gt=0"`
	InsecureSkipVerify  bool              `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	FollowRedirects     bool              `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects        int               `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"min=0,max=50"`
	UserAgent           string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	CustomHeaders       map[string]string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`
	MaxIdleConns        int               `json:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty" validate:"min=0"`
	MaxIdleConnsPerHost int               `json:"max_idle_conns_per_host,omitempty" yaml:"max_idle_conns_per_host,omitempty" validate:"min=0"`
	EnableHTTP2         bool              `json:"enable_http2" yaml:"enable_http2"`
	Proxy               string            `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	MaxContentSizeMB    int               `json:"max_content_size_mb,omitempty" yaml:"max_content_size_mb,omitempty" validate:"min=0"`
	RequestsPerSecond   float64           `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"min=0"`
	Burst               int               `json:"burst,omitempty" yaml:"burst,omitempty" validate:"min=0"`
}

// NewDefaultHTTPClientConfig creates default HTTP client configuration
func NewDefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             MustParseDuration(DefaultHTTPTimeout),
		InsecureSkipVerify:  false,
		FollowRedirects:     true,
		MaxRedirects:        DefaultHTTPMaxRedirects,
		UserAgent:           DefaultHTTPUserAgent,
		CustomHeaders:       map[string]string{},
		MaxIdleConns:        DefaultHTTPMaxIdleConns,
		MaxIdleConnsPerHost: DefaultHTTPIdlePerHost,
		EnableHTTP2:         true,
		MaxContentSizeMB:    DefaultHTTPMaxContentMB,
		RequestsPerSecond:   DefaultHTTPRequestsPerSec,
		Burst:               1,
	}
}
