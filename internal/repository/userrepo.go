// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/avolokitin/authgate/internal/model"
)

// UserRepository provides read access to credential records plus the
// last-login bookkeeping write.
type UserRepository interface {
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// TouchLastLogin records the time and origin IP of a successful login.
	TouchLastLogin(ctx context.Context, id int64, at time.Time, ip string) error
}
