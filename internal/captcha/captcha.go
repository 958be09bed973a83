// Package captcha issues and verifies one-shot challenge codes backed by a
// TTL'd key-value store. Rendering a code for delivery (image, audio) is a
// display concern left to the caller.
package captcha

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"
)

const codeDigits = 6

// Verifier checks a challenge solution before a gated request may proceed.
type Verifier interface {
	// Check reports whether code solves the challenge identified by token.
	// The challenge is consumed by the check, match or not.
	Check(ctx context.Context, token, code string) (bool, error)
}

// redisCmds is the slice of the redis client the store uses.
type redisCmds interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// Store keeps challenge codes in redis under a fresh opaque token each.
type Store struct {
	rdb redisCmds
	ttl time.Duration
}

// NewStore constructs a challenge store. Entries expire after ttl.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func challengeKey(token string) string { return "captcha:" + token }

// Issue creates a challenge and returns its token and solution code.
func (s *Store) Issue(ctx context.Context) (token, code string, err error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", "", err
	}
	code, err = randomCode(codeDigits)
	if err != nil {
		return "", "", err
	}
	if err := s.rdb.Set(ctx, challengeKey(id.String()), code, s.ttl).Err(); err != nil {
		return "", "", err
	}
	return id.String(), code, nil
}

// Check consumes the challenge and reports whether code solved it. An
// unknown or expired token is a plain false, not an error.
func (s *Store) Check(ctx context.Context, token, code string) (bool, error) {
	if token == "" || code == "" {
		return false, nil
	}
	want, err := s.rdb.GetDel(ctx, challengeKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.EqualFold(want, code), nil
}

// randomCode returns n decimal digits from a crypto-grade source.
func randomCode(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d", d.Int64())
	}
	return b.String(), nil
}
