package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(maxRetries int) RetryPolicy {
	policy := DefaultRetryPolicy()
	policy.MaxRetries = maxRetries
	policy.BackoffFactor = time.Millisecond
	policy.MaxDelay = 5 * time.Millisecond
	return policy
}

func TestHTTPClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-value", r.Header.Get("X-Test-Header"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<script src="/app.js"></script>`))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithUserAgent("test-agent").
		WithCustomHeaders(map[string]string{"X-Test-Header": "test-value"}).
		Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL+"/", fastPolicy(3))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, `<script src="/app.js"></script>`, string(resp.Body))
	assert.Equal(t, "text/html; charset=utf-8", resp.ContentType)
	assert.Equal(t, server.URL+"/", resp.FinalURL.String())
}

func TestHTTPClient_Get_FollowsRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/app/home", http.StatusFound)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(true).Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), ts.URL+"/", fastPolicy(0))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ts.URL+"/app/home", resp.FinalURL.String())
	assert.Equal(t, ts.URL+"/", resp.RequestedURL)

	clientNoFollow, err := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(false).Build()
	require.NoError(t, err)
	resp, err = clientNoFollow.Get(context.Background(), ts.URL+"/", fastPolicy(0))
	require.NoError(t, err, "3xx counts as success")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestHTTPClient_Get_TooManyRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer ts.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithMaxRedirects(2).Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), ts.URL+"/", fastPolicy(3))
	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, models.FailureRequest, fetchErr.Kind)
	assert.Equal(t, 1, fetchErr.Attempts)
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestHTTPClient_Get_RetriesTransientStatus(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, fastPolicy(3))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))
}

func TestHTTPClient_Get_RetriesExhausted(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, fastPolicy(2))
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))

	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, models.FailureHTTPStatus, fetchErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestHTTPClient_Get_NonRetriableStatus(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), server.URL, fastPolicy(3))
	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, 1, fetchErr.Attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
}

func TestHTTPClient_Get_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), target, fastPolicy(2))
	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, models.FailureConnection, fetchErr.Kind)
	assert.Equal(t, 3, fetchErr.Attempts)
}

func TestHTTPClient_Get_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithTimeout(50 * time.Millisecond).Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), server.URL, fastPolicy(1))
	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, models.FailureTimeout, fetchErr.Kind)
	assert.Equal(t, 2, fetchErr.Attempts)
}

func TestHTTPClient_Get_TLSVerification(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "secure")
	}))
	defer server.Close()

	verifying, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	_, err = verifying.Get(context.Background(), server.URL, fastPolicy(3))
	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, models.FailureTLS, fetchErr.Kind)
	assert.Equal(t, 1, fetchErr.Attempts, "TLS failures are not retried")

	insecure, err := NewHTTPClientBuilder(zerolog.Nop()).WithInsecureSkipVerify(true).Build()
	require.NoError(t, err)

	resp, err := insecure.Get(context.Background(), server.URL, fastPolicy(3))
	require.NoError(t, err)
	assert.Equal(t, "secure", string(resp.Body))
}

func TestHTTPClient_Get_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err = client.Get(ctx, server.URL, fastPolicy(3))
	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, models.FailureCanceled, fetchErr.Kind)
	assert.Equal(t, 1, fetchErr.Attempts)
}

func TestHTTPClient_Get_InvalidURL(t *testing.T) {
	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "https://bad host/", fastPolicy(3))
	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, models.FailureRequest, fetchErr.Kind)
	assert.Equal(t, 1, fetchErr.Attempts)
}

func TestHTTPClient_Get_MaxContentSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is some very long content"))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithMaxContentSize(10).Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, fastPolicy(0))
	require.NoError(t, err)
	assert.Equal(t, "this is so", string(resp.Body))
	assert.True(t, resp.Truncated)
}

func TestFetchError_Failure(t *testing.T) {
	statusErr := &FetchError{URL: "https://example.com/", Kind: models.FailureHTTPStatus, StatusCode: 503, Attempts: 4, Err: ErrUnexpectedStatus}
	failure := statusErr.Failure(models.SchemeHTTPS)
	assert.Equal(t, models.SchemeHTTPS, failure.Scheme)
	assert.Equal(t, "HTTP 503", failure.Cause)
	assert.Equal(t, 4, failure.Attempts)
	assert.Equal(t, "fetch https://example.com/: status 503 after 4 attempt(s)", statusErr.Error())

	connErr := &FetchError{URL: "http://example.com/", Kind: models.FailureConnection, Attempts: 1, Err: fmt.Errorf("connection refused")}
	assert.Equal(t, "connection refused", connErr.Failure(models.SchemeHTTP).Cause)
	assert.Contains(t, connErr.Error(), "connection after 1 attempt(s)")
}

func TestHTTPClient_Get_HTTPSAgainstPlainServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "https://"+server.Listener.Addr().String()+"/", fastPolicy(3))
	fetchErr, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, models.FailureTLS, fetchErr.Kind)
	assert.Equal(t, 1, fetchErr.Attempts)
}
