package ratelimiter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/practice/pkg/ratelimiter"
)

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []ratelimiter.Config{
		{RPS: 0, Burst: 1},
		{RPS: 1, Burst: 0},
		{RPS: 1, Burst: 1, IdleTTL: -time.Second},
	} {
		_, err := ratelimiter.New(cfg)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	}
}

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	l, err := ratelimiter.New(ratelimiter.Config{RPS: 0.001, Burst: 2})
	require.NoError(t, err)

	first := l.Allow("a")
	assert.True(t, first.Allowed())
	assert.Equal(t, 2, first.Limit)
	assert.Equal(t, 1, first.Remaining)

	assert.True(t, l.Allow("a").Allowed())

	denied := l.Allow("a")
	assert.False(t, denied.Allowed())
	assert.Positive(t, denied.RetryAfter)

	// Keys are independent.
	assert.True(t, l.Allow("b").Allowed())
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_Sweep(t *testing.T) {
	t.Parallel()

	l, err := ratelimiter.New(ratelimiter.Config{RPS: 1, Burst: 1, IdleTTL: time.Nanosecond})
	require.NoError(t, err)

	l.Allow("a")
	time.Sleep(time.Millisecond)
	l.Sweep()
	assert.Zero(t, l.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.RunCleanup(ctx, time.Millisecond)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	l, err := ratelimiter.New(ratelimiter.Config{RPS: 0.001, Burst: 1})
	require.NoError(t, err)

	h := ratelimiter.Middleware(l, func(r *http.Request) string { return r.Header.Get("X-Key") }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := send("k")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = send("k")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, send("other").Code)

	assert.Panics(t, func() { ratelimiter.Middleware(nil, nil, nil) })
}
