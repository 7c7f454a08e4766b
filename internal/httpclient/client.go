package httpclient

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/aleister1102/scriptscan/internal/common"
	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"
)

// Response is a completed GET whose status was accepted.
type Response struct {
	RequestedURL string
	// FinalURL is the URL after following redirects.
	FinalURL    *url.URL
	StatusCode  int
	ContentType string
	Headers     http.Header
	Body        []byte
	Attempts    int
	Truncated   bool
}

// HTTPClient is a retrying GET client. It is safe for concurrent use and is shared
// read-only by all scan workers.
type HTTPClient struct {
	client     *http.Client
	config     HTTPClientConfig
	logger     zerolog.Logger
	limiter    *rate.Limiter
	bufferPool *common.BufferPool
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		} else {
			logger.Debug().Msg("HTTP/2 support enabled")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, common.WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		maxRedirects := config.MaxRedirects
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return common.WrapErrorf(ErrTooManyRedirects, "stopped after %d", maxRedirects)
			}
			return nil
		}
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_redirects", config.MaxRedirects).
		Bool("http2_enabled", config.EnableHTTP2).
		Float64("requests_per_second", config.RequestsPerSecond).
		Msg("HTTP client created")

	return &HTTPClient{
		client:     client,
		config:     config,
		logger:     logger,
		limiter:    limiter,
		bufferPool: common.NewBufferPool(32*1024, 4*1024*1024),
	}, nil
}

// Config returns a copy of the client configuration.
func (c *HTTPClient) Config() HTTPClientConfig {
	return c.config
}

// Get fetches rawURL, retrying transient failures according to policy. Timeouts,
// connection errors and retriable statuses are retried with exponential backoff;
// TLS failures, other statuses and cancellation end the loop at once. Any status in
// 2xx or 3xx is accepted. Failures are returned as *FetchError.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, policy RetryPolicy) (*Response, error) {
	maxAttempts := policy.MaxAttempts()
	var lastErr *FetchError

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := policy.Delay(attempt - 1)
			c.logger.Debug().
				Str("url", rawURL).
				Int("attempt", attempt).
				Int("max_attempts", maxAttempts).
				Dur("delay", delay).
				Str("last_failure", string(lastErr.Kind)).
				Msg("Retrying request after backoff")

			if err := waitForRetry(ctx, delay); err != nil {
				return nil, &FetchError{URL: rawURL, Kind: models.FailureCanceled, Attempts: attempt - 1, Err: err}
			}
		}

		resp, err := c.do(ctx, rawURL)
		if err != nil {
			kind := classifyError(ctx, err)
			lastErr = &FetchError{URL: rawURL, Kind: kind, Attempts: attempt, Err: err}
			if !kind.Retriable() {
				return nil, lastErr
			}
			continue
		}

		resp.Attempts = attempt
		if IsSuccessStatus(resp.StatusCode) {
			return resp, nil
		}

		lastErr = &FetchError{
			URL:        rawURL,
			Kind:       models.FailureHTTPStatus,
			StatusCode: resp.StatusCode,
			Attempts:   attempt,
			Err:        ErrUnexpectedStatus,
		}
		if !policy.ShouldRetryStatus(resp.StatusCode) {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// IsSuccessStatus reports whether a final status counts as a fetched page.
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 400
}

// do performs a single GET and reads the body.
func (c *HTTPClient) do(ctx context.Context, rawURL string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, common.WrapError(err, "request pacing interrupted")
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &invalidRequestError{err: err}
	}

	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.config.MaxContentSize > 0 {
		reader = io.LimitReader(resp.Body, int64(c.config.MaxContentSize)+1)
	}

	buf := c.bufferPool.Get()
	defer c.bufferPool.Put(buf)

	if _, err := io.Copy(buf, reader); err != nil {
		return nil, common.WrapError(err, "failed to read response body")
	}

	truncated := false
	if c.config.MaxContentSize > 0 && buf.Len() > c.config.MaxContentSize {
		buf.Truncate(c.config.MaxContentSize)
		truncated = true
		c.logger.Warn().
			Str("url", rawURL).
			Int("max_content_size", c.config.MaxContentSize).
			Msg("Content size exceeds limit, truncating")
	}

	body := make([]byte, buf.Len())
	copy(body, buf.Bytes())

	return &Response{
		RequestedURL: rawURL,
		FinalURL:     resp.Request.URL,
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		Headers:      resp.Header,
		Body:         body,
		Truncated:    truncated,
	}, nil
}
