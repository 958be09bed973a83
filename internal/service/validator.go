// Package service contains credential validation and session token issuance.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/avolokitin/authgate/internal/crypto"
	"github.com/avolokitin/authgate/internal/errs"
	"github.com/avolokitin/authgate/internal/limiter"
	"github.com/avolokitin/authgate/internal/model"
	"github.com/avolokitin/authgate/internal/repository"
)

// ActionCreateToken is the rate-limit action name for login attempts.
const ActionCreateToken = "create_token"

// Unknown identifier and wrong password share one message so the response
// never reveals whether an account exists.
const (
	msgBadCredentials  = "identifier or password incorrect"
	msgAccountDisabled = "account disabled"
)

const maxDeviceLen = 600

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CreateTokenInput carries one login attempt.
type CreateTokenInput struct {
	Name     string // username or email
	Password string
	Device   string // optional free-text device label
	// DefaultDevice is the origin-provided descriptor (e.g. the User-Agent
	// header) substituted when Device is empty.
	DefaultDevice string
	// IP is the caller's network address, used for the rate-limit origin
	// signature and the last-login record.
	IP string
}

// Validator checks a login attempt against the credential store.
type Validator struct {
	users repository.UserRepository
	gate  limiter.Gate
}

// NewValidator constructs a Validator.
func NewValidator(users repository.UserRepository, gate limiter.Gate) *Validator {
	return &Validator{users: users, gate: gate}
}

// Validate resolves and verifies one login attempt, returning the user id on
// success. Any user-facing rejection comes back as *errs.Validation carrying
// the current captcha requirement. A stored hash that does not parse
// propagates as a fault, never as a failed login.
//
// When Device is empty it is replaced with DefaultDevice in place, so the
// caller passes the same input on to issuance.
func (v *Validator) Validate(ctx context.Context, in *CreateTokenInput) (int64, error) {
	origin := limiter.OriginSignature(in.IP)
	needsCaptcha, err := v.gate.IsChallengeRequired(ctx, origin, ActionCreateToken)
	if err != nil {
		return 0, fmt.Errorf("challenge check: %w", err)
	}

	if in.Device == "" {
		in.Device = in.DefaultDevice
	}

	fieldErrs := map[string]string{}
	if in.Name == "" {
		fieldErrs["name"] = "name must not be empty"
	}
	if in.Password == "" {
		fieldErrs["password"] = "password must not be empty"
	}
	if len(in.Device) > maxDeviceLen {
		fieldErrs["device"] = fmt.Sprintf("device must be at most %d characters", maxDeviceLen)
	}
	if len(fieldErrs) > 0 {
		return 0, &errs.Validation{FieldErrors: fieldErrs, NeedsCaptcha: needsCaptcha}
	}

	// One lookup strategy per attempt: email shape means email column,
	// anything else means username. Never both.
	var u *model.User
	if emailShape.MatchString(in.Name) {
		u, err = v.users.GetByEmail(ctx, in.Name)
	} else {
		u, err = v.users.GetByUsername(ctx, in.Name)
	}

	switch {
	case errors.Is(err, errs.ErrNotFound):
		return 0, v.reject(ctx, origin, needsCaptcha, "password", msgBadCredentials)
	case err != nil:
		return 0, err
	case u.Disabled():
		return 0, v.reject(ctx, origin, needsCaptcha, "name", msgAccountDisabled)
	}

	ok, err := crypto.VerifyPassword(in.Password, u.Password)
	if err != nil {
		return 0, fmt.Errorf("user %d: %w", u.ID, err)
	}
	if !ok {
		return 0, v.reject(ctx, origin, needsCaptcha, "password", msgBadCredentials)
	}

	return u.ID, nil
}

// reject counts the failed attempt and builds the user-facing outcome.
func (v *Validator) reject(ctx context.Context, origin string, needsCaptcha bool, field, msg string) error {
	// best-effort: a counter hiccup must not mask the login failure
	_ = v.gate.RecordFailure(ctx, origin, ActionCreateToken)
	return &errs.Validation{
		FieldErrors:  map[string]string{field: msg},
		NeedsCaptcha: needsCaptcha,
	}
}
