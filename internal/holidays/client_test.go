package holidays

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["2025-01-01","2025-04-17","2025-12-25"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	dates, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-04-17", "2025-12-25"}, dates)
}

func TestClient_Fetch_SourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"not":"an array"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second, testLogger())
			_, err := c.Fetch(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestClient_Fetch_RedisFallback(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`["2025-01-01","2025-04-17"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	c.UseRedisCache(rdb, time.Hour)

	// First fetch succeeds and populates the cache.
	dates, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, dates, 2)

	// Source goes down; the cached payload keeps the fetch alive.
	fail.Store(true)
	dates, err = c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-04-17"}, dates)

	// Without the cache the same outage is an error.
	mr.FlushAll()
	_, err = c.Fetch(context.Background())
	assert.Error(t, err)
}
