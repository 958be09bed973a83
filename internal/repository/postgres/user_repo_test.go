package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/avolokitin/authgate/internal/errs"
)

const userCols = `SELECT id, username, email, password, disable_time, last_login, last_login_ip FROM users`

func userRows(id int64, username, email string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "username", "email", "password", "disable_time", "last_login", "last_login_ip"}).
		AddRow(id, username, email, "pbkdf2_sha256$26000$c$aw==", int64(0), int64(0), "")
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(userCols + ` WHERE username=\$1`).
		WithArgs("alice").
		WillReturnRows(userRows(7, "alice", "alice@example.com"))
	u, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, "alice", u.Username)

	mock.ExpectQuery(userCols + ` WHERE username=\$1`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(userCols + ` WHERE email=\$1`).
		WithArgs("alice@example.com").
		WillReturnRows(userRows(7, "alice", "alice@example.com"))
	u, err := r.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)

	mock.ExpectQuery(userCols + ` WHERE email=\$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_TouchLastLogin(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	at := time.Unix(1735689600, 0)

	mock.ExpectExec(`UPDATE users SET last_login=\$2, last_login_ip=\$3 WHERE id=\$1`).
		WithArgs(int64(7), at.Unix(), "203.0.113.7").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.TouchLastLogin(ctx, 7, at, "203.0.113.7"))

	mock.ExpectExec(`UPDATE users SET last_login=\$2, last_login_ip=\$3 WHERE id=\$1`).
		WithArgs(int64(404), at.Unix(), "203.0.113.7").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.TouchLastLogin(ctx, 404, at, "203.0.113.7"), errs.ErrNotFound)
}
