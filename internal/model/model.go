// Package model defines domain entities used by services and repositories.
package model

// User is an account row in the credential store. Integer epoch fields keep
// the row layout compatible with the migrated schema.
type User struct {
	ID          int64
	Username    string // unique
	Email       string // unique
	Password    string // pbkdf2 wire-format hash
	DisableTime int64  // epoch seconds; zero means active
	LastLogin   int64  // epoch seconds of the last token creation
	LastLoginIP string
}

// Disabled reports whether the account has been disabled.
func (u *User) Disabled() bool { return u.DisableTime != 0 }

// Token is a session token row. For any user at most one row exists at a
// time (UNIQUE index on user_id).
type Token struct {
	Key        string // opaque random token, PK
	UserID     int64
	Device     string
	CreateTime int64
	UpdateTime int64
	ExpireTime int64
}
