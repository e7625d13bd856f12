package model

import "github.com/Laisky/errors/v2"

// Validation and access sentinels. Controllers map these onto HTTP statuses;
// record absence and missing ownership share ErrNotFound on purpose so the
// API never discloses the existence of another user's files.
var (
	ErrMissingName        = errors.New("missing name")
	ErrMissingType        = errors.New("missing type")
	ErrMissingData        = errors.New("missing data")
	ErrParentNotFound     = errors.New("parent not found")
	ErrParentNotFolder    = errors.New("parent is not a folder")
	ErrNotFound           = errors.New("file not found")
	ErrFolderHasNoContent = errors.New("a folder doesn't have content")
)
