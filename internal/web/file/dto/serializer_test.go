package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/file/model"
)

func TestNewFile_RootParentSerializesAsZero(t *testing.T) {
	f := &model.File{
		ID:        primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		Name:      "docs",
		Type:      model.KindFolder,
		ParentID:  model.RootParent(),
		LocalPath: "/blobs/should-not-leak",
	}

	data, err := json.Marshal(NewFile(f))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, float64(0), out["parentId"])
	require.Equal(t, f.ID.Hex(), out["id"])
	require.Equal(t, f.UserID.Hex(), out["userId"])
	require.NotContains(t, out, "localPath")
}

func TestNewFile_FolderParentSerializesAsHex(t *testing.T) {
	parent := primitive.NewObjectID()
	f := &model.File{
		ID:       primitive.NewObjectID(),
		UserID:   primitive.NewObjectID(),
		Name:     "note.txt",
		Type:     model.KindFile,
		IsPublic: true,
		ParentID: model.FolderParent(parent),
	}

	out := NewFile(f)
	require.Equal(t, parent.Hex(), out.ParentID)
	require.Equal(t, "file", out.Type)
	require.True(t, out.IsPublic)
}

func TestNewFiles_EmptyPageSerializesAsArray(t *testing.T) {
	data, err := json.Marshal(NewFiles(nil))
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}
