// Package blob stores raw file bytes on the local filesystem under opaque names.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"
)

// Store persists blobs under a single root directory.
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns a store over it.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create storage root %q", root)
	}

	return &Store{root: root}, nil
}

// Save writes data under a freshly generated opaque name and returns its path.
func (s *Store) Save(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "save blob")
	}

	path := filepath.Join(s.root, uuid.NewString())
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errors.Wrapf(err, "write blob %q", path)
	}

	return path, nil
}

// Write stores data at an exact path, overwriting any prior content.
// Used for derived thumbnail variants, which are idempotent by overwrite.
func (s *Store) Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "write blob %q", path)
	}

	return nil
}

// Read returns the blob bytes at path.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read blob %q", path)
	}

	return data, nil
}

// Exists reports whether a blob is present at path.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// VariantPath returns the on-disk path of a derived variant of the blob at
// path, e.g. `<path>_250` for the 250px-wide thumbnail.
func VariantPath(path string, width int) string {
	return fmt.Sprintf("%s_%d", path, width)
}
