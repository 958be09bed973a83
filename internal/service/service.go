package service

import "context"

// Tokens is the outward token-creation operation: validate the attempt, then
// issue (or reuse) the session token.
type Tokens struct {
	validator *Validator
	issuer    *Issuer
}

// NewTokens constructs the combined service.
func NewTokens(v *Validator, i *Issuer) *Tokens {
	return &Tokens{validator: v, issuer: i}
}

// Create authenticates a login attempt and returns the session token.
func (s *Tokens) Create(ctx context.Context, in *CreateTokenInput) (string, error) {
	userID, err := s.validator.Validate(ctx, in)
	if err != nil {
		return "", err
	}
	return s.issuer.Issue(ctx, userID, in.Device, in.IP)
}
