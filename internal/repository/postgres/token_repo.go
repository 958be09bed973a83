package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/avolokitin/authgate/internal/errs"
	"github.com/avolokitin/authgate/internal/model"
)

// TokenRepo implements TokenRepository using PostgreSQL.
type TokenRepo struct{ db *DB }

// NewTokenRepo constructs a token repository.
func NewTokenRepo(db *DB) *TokenRepo { return &TokenRepo{db: db} }

// GetByUserID selects the token row for a user.
func (r *TokenRepo) GetByUserID(ctx context.Context, userID int64) (*model.Token, error) {
	const q = `
SELECT key, user_id, device, create_time, update_time, expire_time
FROM accounts_token WHERE user_id=$1`
	row := r.db.Pool.QueryRow(ctx, q, userID)
	var t model.Token
	err := row.Scan(&t.Key, &t.UserID, &t.Device, &t.CreateTime, &t.UpdateTime, &t.ExpireTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert stores a new token row. The UNIQUE index on user_id turns a
// concurrent-login race into ErrAlreadyExists instead of a duplicate row.
func (r *TokenRepo) Insert(ctx context.Context, t *model.Token) error {
	const q = `
INSERT INTO accounts_token (key, user_id, device, create_time, update_time, expire_time)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, t.Key, t.UserID, t.Device, t.CreateTime, t.UpdateTime, t.ExpireTime)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Delete removes a token row by key.
func (r *TokenRepo) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM accounts_token WHERE key=$1`
	_, err := r.db.Pool.Exec(ctx, q, key)
	return err
}
