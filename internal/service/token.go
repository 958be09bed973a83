package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/singleflight"

	"github.com/avolokitin/authgate/internal/errs"
	"github.com/avolokitin/authgate/internal/model"
	"github.com/avolokitin/authgate/internal/repository"
)

// Issuer applies the session token lifecycle for verified users: one live
// row per user, reused while valid, replaced once expired.
type Issuer struct {
	tokens repository.TokenRepository
	users  repository.UserRepository
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group
}

// NewIssuer constructs an Issuer. now may be nil to use time.Now.
func NewIssuer(tokens repository.TokenRepository, users repository.UserRepository, ttl time.Duration, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{tokens: tokens, users: users, ttl: ttl, now: now}
}

// Issue returns the user's live session token, creating one when none exists
// or the stored one has expired. In-process concurrent calls for the same
// user collapse into a single execution; an insert lost to another instance
// is retried once, and the UNIQUE index on user_id backstops the rest.
func (i *Issuer) Issue(ctx context.Context, userID int64, device, ip string) (string, error) {
	v, err, _ := i.group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		tok, err := i.issueOnce(ctx, userID, device, ip)
		if errors.Is(err, errs.ErrAlreadyExists) {
			tok, err = i.issueOnce(ctx, userID, device, ip)
		}
		return tok, err
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (i *Issuer) issueOnce(ctx context.Context, userID int64, device, ip string) (string, error) {
	now := i.now()

	existing, err := i.tokens.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if existing.ExpireTime >= now.Unix() {
			// reuse path: no writes, the stored device label stays as is
			return existing.Key, nil
		}
		if err := i.tokens.Delete(ctx, existing.Key); err != nil {
			return "", err
		}
	case !errors.Is(err, errs.ErrNotFound):
		return "", err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	t := &model.Token{
		Key:        id.String(),
		UserID:     userID,
		Device:     device,
		CreateTime: now.Unix(),
		UpdateTime: now.Unix(),
		ExpireTime: now.Add(i.ttl).Unix(),
	}
	if err := i.tokens.Insert(ctx, t); err != nil {
		return "", err
	}
	if err := i.users.TouchLastLogin(ctx, userID, now, ip); err != nil {
		return "", err
	}
	return t.Key, nil
}
