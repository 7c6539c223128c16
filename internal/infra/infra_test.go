package infra

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(mutate func(*ClientOptions)) *Client {
	opts := DefaultClientOptions()
	opts.RequestsPerSec = 1000
	opts.Burst = 100
	opts.RetryInterval = time.Millisecond
	opts.MaxRetryElapsed = time.Second
	opts.Breaker.ConsecutiveFailures = 10
	if mutate != nil {
		mutate(&opts)
	}
	return NewClient(opts, zerolog.Nop())
}

func TestCacheGetSet(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", 42)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	c.SetWithTTL("short", "x", time.Second)
	now = now.Add(2 * time.Second)
	_, ok = c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestRateLimiterHonoursContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx))
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, status, err := testClient(nil).Get(context.Background(), srv.URL, map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClientRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("done"))
	}))
	defer srv.Close()

	rc, _, err := testClient(nil).DoGet(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "done", string(data))
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad series id", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, status, err := testClient(nil).Get(context.Background(), srv.URL+"?api_key=secret", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, int32(1), hits.Load())

	var se *HTTPStatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.False(t, se.Retryable())
	assert.NotContains(t, se.Error(), "secret")
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(func(o *ClientOptions) { o.MaxRetries = 2 })
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(func(o *ClientOptions) {
		o.MaxRetries = 5
		o.Breaker.ConsecutiveFailures = 2
	})
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())

	_, _, err = c.Get(context.Background(), srv.URL, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []int
}

func (o *recordingObserver) ObserveFetch(_ string, status int, _ time.Duration, _ error) {
	o.mu.Lock()
	o.calls = append(o.calls, status)
	o.mu.Unlock()
}

func TestClientObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := testClient(nil)
	c.SetObserver(obs)
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{http.StatusOK}, obs.calls)
}

func TestRedact(t *testing.T) {
	got := redact("https://api.example.com/series?api_key=abc&series_id=WALCL")
	assert.NotContains(t, got, "abc")
	assert.Contains(t, got, "series_id=WALCL")
}

func TestDefaultClient(t *testing.T) {
	c := testClient(nil)
	SetDefaultClient(c)
	assert.Same(t, c, DefaultClient())
}
