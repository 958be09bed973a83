package repository

import (
	"context"

	"github.com/avolokitin/authgate/internal/model"
)

// TokenRepository provides access to session token rows.
type TokenRepository interface {
	// GetByUserID loads the token row for a user, if any.
	GetByUserID(ctx context.Context, userID int64) (*model.Token, error)
	// Insert stores a new token row. A user_id conflict returns
	// errs.ErrAlreadyExists.
	Insert(ctx context.Context, t *model.Token) error
	// Delete removes a token row by key.
	Delete(ctx context.Context, key string) error
}
