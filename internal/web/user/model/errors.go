package model

import "github.com/Laisky/errors/v2"

var (
	ErrMissingEmail    = errors.New("missing email")
	ErrMissingPassword = errors.New("missing password")
	ErrAlreadyExist    = errors.New("email already registered")
	ErrNotFound        = errors.New("user not found")
	// ErrInvalidCredentials covers every authentication failure: unknown
	// user, bad password and store errors are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
