package holidays

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakySource serves a holiday payload until told to fail.
type flakySource struct {
	*httptest.Server
	fail atomic.Bool
}

func newFlakySource(t *testing.T, payload string) *flakySource {
	t.Helper()
	src := &flakySource{}
	src.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if src.fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(src.Close)
	return src
}

func TestService_RefreshFailureKeepsPreviousSet(t *testing.T) {
	src := newFlakySource(t, `["2025-01-01","2025-04-17"]`)
	svc := NewService(NewOracle(), NewClient(src.URL, time.Second, testLogger()), nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, 2, svc.Oracle().Size())

	src.fail.Store(true)
	assert.Error(t, svc.Refresh(ctx))
	assert.Equal(t, 2, svc.Oracle().Size(), "failed refresh must not touch the current set")
}

func TestService_RefreshRejectsEmptyPayload(t *testing.T) {
	src := newFlakySource(t, `[]`)
	svc := NewService(NewOracle(), NewClient(src.URL, time.Second, testLogger()), nil, testLogger())

	assert.Error(t, svc.Refresh(context.Background()))
	assert.Zero(t, svc.Oracle().Size())
}

func TestService_InitStrictFailsOnFetchError(t *testing.T) {
	src := newFlakySource(t, `["2025-01-01"]`)
	src.fail.Store(true)
	svc := NewService(NewOracle(), NewClient(src.URL, time.Second, testLogger()), nil, testLogger())

	err := svc.Init(context.Background(), PolicyStrict)
	assert.Error(t, err)
	assert.False(t, svc.Stale())
}

func TestService_InitDegradedFallsBackToSnapshot(t *testing.T) {
	ctx := context.Background()

	store, err := NewStore(filepath.Join(t.TempDir(), "holidays.db"), testLogger())
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Save(ctx, []string{"2025-01-01", "2025-04-17", "2025-12-25"}))

	src := newFlakySource(t, `["2025-01-01"]`)
	src.fail.Store(true)
	svc := NewService(NewOracle(), NewClient(src.URL, time.Second, testLogger()), store, testLogger())

	require.NoError(t, svc.Init(ctx, PolicyDegraded))
	assert.True(t, svc.Stale())
	assert.Equal(t, 3, svc.Oracle().Size(), "degraded init must serve the persisted snapshot")

	// The source recovers; a refresh clears the stale flag.
	src.fail.Store(false)
	require.NoError(t, svc.Refresh(ctx))
	assert.False(t, svc.Stale())
	assert.Equal(t, 1, svc.Oracle().Size())
}

func TestService_InitDegradedWithoutSnapshotServesEmptySet(t *testing.T) {
	src := newFlakySource(t, `["2025-01-01"]`)
	src.fail.Store(true)
	svc := NewService(NewOracle(), NewClient(src.URL, time.Second, testLogger()), nil, testLogger())

	require.NoError(t, svc.Init(context.Background(), PolicyDegraded))
	assert.True(t, svc.Stale())
	assert.Zero(t, svc.Oracle().Size())
}

func TestService_TryRefreshThrottles(t *testing.T) {
	src := newFlakySource(t, `["2025-01-01"]`)
	svc := NewService(NewOracle(), NewClient(src.URL, time.Second, testLogger()), nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.TryRefresh(ctx))
	assert.ErrorIs(t, svc.TryRefresh(ctx), ErrThrottled)
}
