package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/scriptscan/internal/httpclient"
	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGetter struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]*httpclient.Response
	errs      map[string]error
}

func (s *stubGetter) Get(ctx context.Context, rawURL string, policy httpclient.RetryPolicy) (*httpclient.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, rawURL)
	s.mu.Unlock()

	if err, ok := s.errs[rawURL]; ok {
		return nil, err
	}
	if resp, ok := s.responses[rawURL]; ok {
		return resp, nil
	}
	return nil, &httpclient.FetchError{URL: rawURL, Kind: models.FailureConnection, Attempts: 1, Err: errors.New("no route")}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestPageFetcher_HTTPSFirst(t *testing.T) {
	getter := &stubGetter{responses: map[string]*httpclient.Response{
		"https://example.com/": {FinalURL: mustParse(t, "https://example.com/"), StatusCode: 200, Body: []byte("page"), Attempts: 1},
	}}
	fetcher := NewPageFetcher(getter, httpclient.DefaultRetryPolicy(), zerolog.Nop())

	result, failures, err := fetcher.Fetch(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, models.SchemeHTTPS, result.Target.Scheme)
	assert.Equal(t, "https://example.com/", result.FinalURL.String())
	assert.Equal(t, []string{"https://example.com/"}, getter.calls)
}

func TestPageFetcher_FallsBackToHTTP(t *testing.T) {
	getter := &stubGetter{
		errs: map[string]error{
			"https://example.com/": &httpclient.FetchError{URL: "https://example.com/", Kind: models.FailureHTTPStatus, StatusCode: 503, Attempts: 4, Err: httpclient.ErrUnexpectedStatus},
		},
		responses: map[string]*httpclient.Response{
			"http://example.com/": {FinalURL: mustParse(t, "http://example.com/"), StatusCode: 200, Attempts: 1},
		},
	}
	fetcher := NewPageFetcher(getter, httpclient.DefaultRetryPolicy(), zerolog.Nop())

	result, failures, err := fetcher.Fetch(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, models.SchemeHTTP, result.Target.Scheme)
	require.Len(t, failures, 1)
	assert.Equal(t, models.SchemeHTTPS, failures[0].Scheme)
	assert.Equal(t, models.FailureHTTPStatus, failures[0].Kind)
	assert.Equal(t, 503, failures[0].StatusCode)
	assert.Equal(t, []string{"https://example.com/", "http://example.com/"}, getter.calls)
}

func TestPageFetcher_BothSchemesFail(t *testing.T) {
	getter := &stubGetter{}
	fetcher := NewPageFetcher(getter, httpclient.DefaultRetryPolicy(), zerolog.Nop())

	result, failures, err := fetcher.Fetch(context.Background(), "down.example")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAllSchemesFailed)
	require.Len(t, failures, 2)
	assert.Equal(t, models.SchemeHTTPS, failures[0].Scheme)
	assert.Equal(t, models.SchemeHTTP, failures[1].Scheme)

	fetchErr, ok := httpclient.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, "http://down.example/", fetchErr.URL)
}

func TestPageFetcher_CancellationStopsFallback(t *testing.T) {
	getter := &stubGetter{errs: map[string]error{
		"https://example.com/": &httpclient.FetchError{URL: "https://example.com/", Kind: models.FailureCanceled, Attempts: 1, Err: context.Canceled},
	}}
	fetcher := NewPageFetcher(getter, httpclient.DefaultRetryPolicy(), zerolog.Nop())

	_, failures, err := fetcher.Fetch(context.Background(), "example.com")
	require.Error(t, err)
	assert.Len(t, failures, 1)
	assert.Equal(t, []string{"https://example.com/"}, getter.calls)
}

func TestPageFetcher_CanceledContext(t *testing.T) {
	getter := &stubGetter{}
	fetcher := NewPageFetcher(getter, httpclient.DefaultRetryPolicy(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, failures, err := fetcher.Fetch(ctx, "example.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, failures)
	assert.Empty(t, getter.calls)
}

func TestPageFetcher_RealFallbackToPlainHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<script src="/app.js"></script>`))
	}))
	defer server.Close()

	host := models.Host(strings.TrimPrefix(server.URL, "http://"))
	client, err := httpclient.NewHTTPClientBuilder(zerolog.Nop()).WithTimeout(2 * time.Second).Build()
	require.NoError(t, err)

	policy := httpclient.DefaultRetryPolicy()
	policy.BackoffFactor = time.Millisecond
	fetcher := NewPageFetcher(client, policy, zerolog.Nop())

	result, failures, err := fetcher.Fetch(context.Background(), host)
	require.NoError(t, err)
	assert.Equal(t, "http://"+host.String()+"/", result.FinalURL.String())
	assert.Equal(t, "text/html", result.ContentType)
	require.Len(t, failures, 1)
	assert.Equal(t, models.SchemeHTTPS, failures[0].Scheme)
}
