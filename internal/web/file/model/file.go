// Package model contains the file records persisted in the metadata store.
package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the type of a file record.
type Kind string

const (
	// KindFolder is a container record; it never carries content.
	KindFolder Kind = "folder"
	// KindFile is a plain file backed by a blob.
	KindFile Kind = "file"
	// KindImage is a file that additionally gets thumbnail variants.
	KindImage Kind = "image"
)

// ParseKind returns the Kind for raw, reporting whether it is valid.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(raw) {
	case KindFolder, KindFile, KindImage:
		return Kind(raw), true
	default:
		return "", false
	}
}

// ListPageSize is the fixed page size for file listings.
const ListPageSize = 20

// ThumbnailWidths are the target widths of derived image variants,
// also the recognized values of the `size` query parameter.
var ThumbnailWidths = []int{100, 250, 500}

// ThumbnailWidth parses a raw `size` parameter, reporting whether it is
// one of the recognized variant widths.
func ThumbnailWidth(raw string) (int, bool) {
	switch raw {
	case "100":
		return 100, true
	case "250":
		return 250, true
	case "500":
		return 500, true
	default:
		return 0, false
	}
}

// File is a file or folder record.
type File struct {
	// ID unique identifier for the record
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// UserID owner of the record, immutable after creation
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	// Name display name, also the source of the content type
	Name string `bson:"name" json:"name"`
	// Type kind of the record, immutable after creation
	Type Kind `bson:"type" json:"type"`
	// IsPublic whether anonymous content access is allowed
	IsPublic bool `bson:"isPublic" json:"isPublic"`
	// ParentID the containing folder, or the root sentinel
	ParentID ParentRef `bson:"parentId" json:"parentId"`
	// LocalPath blob path on disk, present iff Type != KindFolder
	LocalPath string `bson:"localPath,omitempty" json:"-"`
}
