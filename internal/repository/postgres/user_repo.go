package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avolokitin/authgate/internal/errs"
	"github.com/avolokitin/authgate/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, email, password, disable_time, last_login, last_login_ip
FROM users WHERE username=$1`
	return r.getOne(ctx, q, username)
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, username, email, password, disable_time, last_login, last_login_ip
FROM users WHERE email=$1`
	return r.getOne(ctx, q, email)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	row := r.db.Pool.QueryRow(ctx, q, arg)
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.DisableTime, &u.LastLogin, &u.LastLoginIP)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin records when and from where the user last obtained a token.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time, ip string) error {
	const q = `
UPDATE users SET last_login=$2, last_login_ip=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, at.Unix(), ip)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
