// Package redis connects to Redis with go-redis/v9.
//
// The service uses Redis for short-lived coordination only, such as
// remembering which provider webhook deliveries were already processed.
// Losing it degrades to processing a redelivered event twice, which the
// payment ledger's unique reference absorbs.
package redis
