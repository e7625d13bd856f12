// Package service implements registration and credential validation.
package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/user/model"
)

// Store persists user records.
type Store interface {
	Insert(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByCredentials(ctx context.Context, email, hashed string) (*model.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// Users service type
type Users struct {
	logger glog.Logger
	store  Store
}

// New creates the users service.
func New(logger glog.Logger, store Store) *Users {
	return &Users{
		logger: logger,
		store:  store,
	}
}

// HashPassword derives the stored password digest. The digest must be
// deterministic: authentication queries the store by (email, digest)
// equality, so a salted hash cannot serve here.
func HashPassword(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Register creates a new account. Duplicate emails are rejected before the
// insert; the unique index backstops the check under concurrency.
func (s *Users) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, errors.WithStack(model.ErrMissingEmail)
	}
	if password == "" {
		return nil, errors.WithStack(model.ErrMissingPassword)
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, errors.WithStack(model.ErrAlreadyExist)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, errors.Wrap(err, "check duplicate")
	}

	u := &model.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: HashPassword(password),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, errors.Wrap(err, "insert user")
	}

	return u, nil
}

// Authenticate validates raw credentials. Every failure collapses into
// model.ErrInvalidCredentials so callers cannot probe for known emails.
func (s *Users) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, errors.WithStack(model.ErrInvalidCredentials)
	}

	u, err := s.store.FindByCredentials(ctx, email, HashPassword(password))
	if err != nil {
		s.logger.Debug("authenticate failed", zap.Error(err))
		return nil, errors.WithStack(model.ErrInvalidCredentials)
	}

	return u, nil
}

// ByID loads a user by id.
func (s *Users) ByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return s.store.FindByID(ctx, id)
}
