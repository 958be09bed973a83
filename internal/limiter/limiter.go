// Package limiter tracks failed login attempts per network origin and
// decides when a captcha challenge must accompany the next attempt.
package limiter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Gate answers whether an attempt needs a captcha and records failures.
type Gate interface {
	// IsChallengeRequired reports whether the failure count for
	// (origin, action) has reached the threshold inside the live window.
	// It is read-only: checking never counts as an attempt.
	IsChallengeRequired(ctx context.Context, origin, action string) (bool, error)
	// RecordFailure counts one confirmed failed attempt for (origin, action).
	RecordFailure(ctx context.Context, origin, action string) error
}

// CounterStore is a TTL'd counter keyed by string. Increments for the same
// key must be atomic.
type CounterStore interface {
	// Get returns the current count, zero when the key is absent or expired.
	Get(ctx context.Context, key string) (int64, error)
	// Increment adds one and returns the new count. The TTL is set when the
	// key is created, so the window runs from the first failure.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// CounterGate implements Gate on a CounterStore.
type CounterGate struct {
	store     CounterStore
	threshold int64
	window    time.Duration
}

// NewGate constructs a gate. The threshold is configuration: production
// runs a strict value, debug/staging a relaxed one.
func NewGate(store CounterStore, threshold int, window time.Duration) *CounterGate {
	return &CounterGate{store: store, threshold: int64(threshold), window: window}
}

// OriginSignature returns a stable signature for an IP string so raw
// addresses never become storage keys.
func OriginSignature(ip string) string {
	h := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(h[:])
}

func counterKey(origin, action string) string {
	return "limiter:" + action + ":" + origin
}

// IsChallengeRequired reports whether (origin, action) has failed at least
// threshold times within the window.
func (g *CounterGate) IsChallengeRequired(ctx context.Context, origin, action string) (bool, error) {
	n, err := g.store.Get(ctx, counterKey(origin, action))
	if err != nil {
		return false, err
	}
	return n >= g.threshold, nil
}

// RecordFailure counts one failed attempt. The counter expires on its own
// once the window elapses with no further failures.
func (g *CounterGate) RecordFailure(ctx context.Context, origin, action string) error {
	_, err := g.store.Increment(ctx, counterKey(origin, action), g.window)
	return err
}
