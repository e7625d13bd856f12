// Package auth implements the session token store backed by redis.
package auth

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"

	rdb "github.com/Laisky/files-manager/library/db/redis"
)

// TokenTTL is the fixed lifetime of a session token. No sliding expiration.
const TokenTTL = 24 * time.Hour

// ErrTokenNotFound indicates the token is absent or expired.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore binds opaque session tokens to user ids with a fixed expiry.
type TokenStore struct {
	db *rdb.DB
}

// NewTokenStore creates a redis-backed token store.
func NewTokenStore(db *rdb.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Issue creates a fresh unguessable token bound to userID for TokenTTL.
func (s *TokenStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.db.Utils().SetItem(ctx, rdb.KeyPrefixAuth+token, userID, TokenTTL); err != nil {
		return "", errors.Wrap(err, "store token")
	}

	return token, nil
}

// Resolve returns the user id bound to token. Expiry is enforced by the
// redis TTL: expired and absent tokens are indistinguishable.
func (s *TokenStore) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.db.Utils().GetItem(ctx, rdb.KeyPrefixAuth+token)
	if err != nil {
		return "", errors.WithStack(ErrTokenNotFound)
	}
	if userID == "" {
		return "", errors.WithStack(ErrTokenNotFound)
	}

	return userID, nil
}

// Revoke deletes the binding unconditionally. Idempotent.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.db.Utils().Del(ctx, rdb.KeyPrefixAuth+token).Err(); err != nil {
		return errors.Wrap(err, "delete token")
	}

	return nil
}
