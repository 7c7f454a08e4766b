package datastore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/scriptscan/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "nested", "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHistoryStore_RunLifecycle(t *testing.T) {
	store := newTestStore(t)
	start := time.Now().UTC().Truncate(time.Second)

	runID, err := store.RecordRunStart("20260101-120000", "hosts.txt", 3, start)
	require.NoError(t, err)
	assert.Positive(t, runID)

	run, err := store.GetRun("20260101-120000")
	require.NoError(t, err)
	assert.Equal(t, string(models.ScanStatusStarted), run.Status)
	assert.Equal(t, 3, run.TotalHosts)
	assert.False(t, run.EndedAt.Valid)

	summary := models.ScanSummary{TotalHosts: 3, Dispatched: 3, Succeeded: 2, Failed: 1, UniqueURLs: 5}
	require.NoError(t, store.UpdateRunCompletion(runID, summary, start.Add(time.Minute)))

	run, err = store.GetRun("20260101-120000")
	require.NoError(t, err)
	assert.Equal(t, string(models.ScanStatusCompleted), run.Status)
	assert.Equal(t, 2, run.Succeeded)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 5, run.UniqueURLs)
	assert.True(t, run.EndedAt.Valid)
}

func TestHistoryStore_DuplicateSession(t *testing.T) {
	store := newTestStore(t)
	_, err := store.RecordRunStart("s1", "hosts.txt", 1, time.Now())
	require.NoError(t, err)
	_, err = store.RecordRunStart("s1", "hosts.txt", 1, time.Now())
	assert.Error(t, err)
}

func TestHistoryStore_MissingRun(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun("nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	err = store.UpdateRunCompletion(42, models.ScanSummary{}, time.Now())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestHistoryRecorder_RecordsFailedHostsOnly(t *testing.T) {
	store := newTestStore(t)
	recorder := NewHistoryRecorder(store, "s1", zerolog.Nop())

	recorder.OnOutcome(models.ScanOutcome{Host: "ok.example", Found: []string{"https://ok.example/a.js"}})
	recorder.OnOutcome(models.ScanOutcome{
		Host: "down.example",
		Err:  errors.New("all schemes failed"),
		Failures: []models.SchemeFailure{
			{Scheme: models.SchemeHTTPS, URL: "https://down.example/", Kind: models.FailureTLS, Attempts: 1, Cause: "x509: unknown authority"},
			{Scheme: models.SchemeHTTP, URL: "http://down.example/", Kind: models.FailureHTTPStatus, StatusCode: 503, Attempts: 4, Cause: "HTTP 503"},
		},
	})
	recorder.OnOutcome(models.ScanOutcome{Host: "panic.example", Err: errors.New("host scan task panicked: boom")})

	failures, err := store.GetHostFailures("s1")
	require.NoError(t, err)
	require.Len(t, failures, 3)

	assert.Equal(t, "down.example", failures[0].Host)
	assert.Equal(t, "https", failures[0].Scheme)
	assert.Equal(t, string(models.FailureTLS), failures[0].Kind)
	assert.Equal(t, 503, failures[1].StatusCode)
	assert.Equal(t, 4, failures[1].Attempts)
	assert.Equal(t, "panic.example", failures[2].Host)
	assert.Equal(t, string(models.FailureInternal), failures[2].Kind)

	other, err := store.GetHostFailures("other")
	require.NoError(t, err)
	assert.Empty(t, other)
}
