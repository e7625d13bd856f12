// Package dto contains the externally visible shapes of file records.
package dto

import (
	"github.com/Laisky/files-manager/internal/web/file/model"
)

// File is the public projection of a file record. ParentID is the number 0
// for root-level records and the hex string id otherwise.
type File struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID any    `json:"parentId"`
}

// NewFile projects a file record for API responses.
func NewFile(f *model.File) *File {
	var parent any = 0
	if id, ok := f.ParentID.FolderID(); ok {
		parent = id.Hex()
	}

	return &File{
		ID:       f.ID.Hex(),
		UserID:   f.UserID.Hex(),
		Name:     f.Name,
		Type:     string(f.Type),
		IsPublic: f.IsPublic,
		ParentID: parent,
	}
}

// NewFiles projects a listing page. Never nil, so empty pages serialize as [].
func NewFiles(files []*model.File) []*File {
	out := make([]*File, 0, len(files))
	for _, f := range files {
		out = append(out, NewFile(f))
	}

	return out
}
