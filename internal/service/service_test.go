package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avolokitin/authgate/internal/errs"
)

func newTokensService(t *testing.T) (*Tokens, *fakeUsers, *fakeTokens, *fakeGate) {
	t.Helper()
	users := aliceStore(t)
	tokens := &fakeTokens{}
	gate := &fakeGate{}
	svc := NewTokens(
		NewValidator(users, gate),
		NewIssuer(tokens, users, time.Hour, nil),
	)
	return svc, users, tokens, gate
}

func TestTokens_Create(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTokensService(t)

	key, err := svc.Create(context.Background(), attempt("alice@example.com", "correctpw"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if key == "" {
		t.Fatalf("empty token for a valid login")
	}
}

func TestTokens_Create_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, tokens, _ := newTokensService(t)

	_, err := svc.Create(context.Background(), attempt("alice", "wrongpw"))
	var verr *errs.Validation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation outcome, got %v", err)
	}
	if len(verr.FieldErrors) != 1 || verr.FieldErrors["password"] != "identifier or password incorrect" {
		t.Fatalf("fieldErrors = %v", verr.FieldErrors)
	}
	if len(tokens.rows) != 0 {
		t.Fatalf("token issued for a rejected attempt")
	}
}
