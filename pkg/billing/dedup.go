package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator remembers provider deliveries that are being or were processed.
//
// A claim is short lived while the event is in flight. Complete keeps it for
// the provider's retry window once the event is fully processed; Release drops
// it so a redelivery is processed again.
type Deduplicator interface {
	// Claim returns true when eventID has not been claimed before.
	Claim(ctx context.Context, eventID string) (bool, error)
	// Complete marks a claimed eventID as processed.
	Complete(ctx context.Context, eventID string) error
	// Release forgets eventID so a redelivery is processed again.
	Release(ctx context.Context, eventID string) error
}

const (
	// DefaultDedupTTL covers the provider's retry schedule for a failed delivery.
	DefaultDedupTTL = 72 * time.Hour
	// DefaultClaimTTL bounds how long an in-flight claim blocks redelivery
	// when the process dies before completing or releasing it.
	DefaultClaimTTL = 5 * time.Minute
)

// redisCmdable is the part of redis.Cmdable the deduplicator needs.
type redisCmdable interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDeduplicator claims event ids with SET NX so concurrent instances
// process each delivery once.
type RedisDeduplicator struct {
	client   redisCmdable
	prefix   string
	ttl      time.Duration
	claimTTL time.Duration
}

// NewRedisDeduplicator accepts *redis.Client or any other redis.Cmdable.
// A non-positive ttl uses DefaultDedupTTL.
func NewRedisDeduplicator(client redisCmdable, prefix string, ttl time.Duration) *RedisDeduplicator {
	if client == nil {
		panic("billing: redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	if prefix == "" {
		prefix = "billing:event:"
	}
	return &RedisDeduplicator{
		client:   client,
		prefix:   prefix,
		ttl:      ttl,
		claimTTL: min(DefaultClaimTTL, ttl),
	}
}

func (d *RedisDeduplicator) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+eventID, time.Now().UTC().Unix(), d.claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim event: %w", err)
	}
	return ok, nil
}

func (d *RedisDeduplicator) Complete(ctx context.Context, eventID string) error {
	if err := d.client.Expire(ctx, d.prefix+eventID, d.ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete event claim: %w", err)
	}
	return nil
}

func (d *RedisDeduplicator) Release(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, d.prefix+eventID).Err(); err != nil {
		return fmt.Errorf("failed to release event claim: %w", err)
	}
	return nil
}

// MemoryDeduplicator is a single-process Deduplicator without expiry.
type MemoryDeduplicator struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryDeduplicator() *MemoryDeduplicator {
	return &MemoryDeduplicator{seen: make(map[string]struct{})}
}

func (d *MemoryDeduplicator) Claim(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[eventID]; ok {
		return false, nil
	}
	d.seen[eventID] = struct{}{}
	return true, nil
}

func (d *MemoryDeduplicator) Complete(context.Context, string) error { return nil }

func (d *MemoryDeduplicator) Release(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, eventID)
	return nil
}
