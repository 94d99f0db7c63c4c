// Package ratelimiter provides per-key token bucket rate limiting on top of
// golang.org/x/time/rate, with an HTTP middleware.
//
//	limiter, err := ratelimiter.New(ratelimiter.Config{RPS: 10, Burst: 20, IdleTTL: 10 * time.Minute})
//	if err != nil {
//		return err
//	}
//	go limiter.RunCleanup(ctx, time.Minute)
//
//	r.With(ratelimiter.Middleware(limiter, clientip.Key, nil)).Post("/webhook", h)
//
// Buckets live in process memory, so each instance enforces its own limit.
package ratelimiter
