// Package service implements the file hierarchy and access engine: parent
// validation, ownership and visibility enforcement, pagination, and content
// resolution.
package service

import (
	"context"
	"encoding/base64"
	"mime"
	"path/filepath"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/file/model"
	"github.com/Laisky/files-manager/library/blob"
)

const defaultContentType = "application/octet-stream"

// MetadataStore persists file records.
type MetadataStore interface {
	Insert(ctx context.Context, f *model.File) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.File, error)
	GetOwned(ctx context.Context, id, owner primitive.ObjectID) (*model.File, error)
	List(ctx context.Context, owner primitive.ObjectID, parent model.ParentRef, page int) ([]*model.File, error)
	SetPublic(ctx context.Context, id, owner primitive.ObjectID, public bool) (*model.File, error)
}

// BlobStore persists raw file bytes.
type BlobStore interface {
	Save(ctx context.Context, data []byte) (string, error)
	Read(path string) ([]byte, error)
	Exists(path string) bool
}

// ThumbnailEnqueuer hands an image off for asynchronous variant generation.
type ThumbnailEnqueuer interface {
	Enqueue(ctx context.Context, fileID, ownerID primitive.ObjectID) error
}

// Engine coordinates the metadata store, the blob store and the thumbnail queue.
type Engine struct {
	logger glog.Logger
	files  MetadataStore
	blobs  BlobStore
	queue  ThumbnailEnqueuer
}

// New creates the engine with its collaborators injected.
func New(logger glog.Logger, files MetadataStore, blobs BlobStore,
	queue ThumbnailEnqueuer) *Engine {
	return &Engine{
		logger: logger,
		files:  files,
		blobs:  blobs,
		queue:  queue,
	}
}

// CreateParams carries raw upload inputs. ParentID and Data arrive in their
// transport encodings (decimal/hex string and base64 respectively).
type CreateParams struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     string
}

// Create validates and persists a new record; first validation failure wins.
// For non-folders the blob is written before the metadata so a record never
// references a missing blob. For images a thumbnail job is enqueued after
// the metadata commit, best-effort: a queue failure is logged and discarded
// so it never rolls back the upload nor blocks the response.
func (e *Engine) Create(ctx context.Context, owner primitive.ObjectID,
	p CreateParams) (*model.File, error) {
	if p.Name == "" {
		return nil, errors.WithStack(model.ErrMissingName)
	}

	kind, ok := model.ParseKind(p.Type)
	if !ok {
		return nil, errors.WithStack(model.ErrMissingType)
	}

	if kind != model.KindFolder && p.Data == "" {
		return nil, errors.WithStack(model.ErrMissingData)
	}

	parent, err := e.resolveParent(ctx, p.ParentID)
	if err != nil {
		return nil, err
	}

	f := &model.File{
		ID:       primitive.NewObjectID(),
		UserID:   owner,
		Name:     p.Name,
		Type:     kind,
		IsPublic: p.IsPublic,
		ParentID: parent,
	}

	if kind != model.KindFolder {
		data, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return nil, errors.Wrap(model.ErrMissingData, "decode data")
		}

		path, err := e.blobs.Save(ctx, data)
		if err != nil {
			return nil, errors.Wrap(err, "save blob")
		}
		f.LocalPath = path
	}

	if err := e.files.Insert(ctx, f); err != nil {
		return nil, errors.Wrap(err, "insert file")
	}

	if kind == model.KindImage {
		if err := e.queue.Enqueue(ctx, f.ID, owner); err != nil {
			e.logger.Error("enqueue thumbnail job",
				zap.Error(err),
				zap.String("file_id", f.ID.Hex()))
		}
	}

	return f, nil
}

// resolveParent maps a raw parent reference onto the ParentRef union.
// Unlike List, an unparsable reference here is a hard validation error.
func (e *Engine) resolveParent(ctx context.Context, raw string) (model.ParentRef, error) {
	if raw == "" || raw == "0" {
		return model.RootParent(), nil
	}

	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return model.ParentRef{}, errors.Wrap(model.ErrParentNotFound, "parse parent id")
	}

	parent, err := e.files.Get(ctx, oid)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ParentRef{}, errors.WithStack(model.ErrParentNotFound)
		}

		return model.ParentRef{}, errors.Wrap(err, "load parent")
	}

	if parent.Type != model.KindFolder {
		return model.ParentRef{}, errors.WithStack(model.ErrParentNotFolder)
	}

	return model.FolderParent(oid), nil
}

// Get returns the owner's record by raw id. Unparsable ids, unknown ids and
// records owned by someone else all map to model.ErrNotFound.
func (e *Engine) Get(ctx context.Context, owner primitive.ObjectID,
	rawID string) (*model.File, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, errors.Wrap(model.ErrNotFound, "parse file id")
	}

	return e.files.GetOwned(ctx, id, owner)
}

// List returns one page of the owner's records under rawParent. An absent
// or zero rawParent lists the root level. An unparsable rawParent matches
// nothing and yields an empty page, not an error.
func (e *Engine) List(ctx context.Context, owner primitive.ObjectID,
	rawParent string, page int) ([]*model.File, error) {
	parent := model.RootParent()
	if rawParent != "" && rawParent != "0" {
		oid, err := primitive.ObjectIDFromHex(rawParent)
		if err != nil {
			return []*model.File{}, nil
		}
		parent = model.FolderParent(oid)
	}

	return e.files.List(ctx, owner, parent, page)
}

// SetVisibility publishes or unpublishes the owner's record. The ownership
// check precedes existence disclosure; the operation is an idempotent no-op
// when the flag already matches.
func (e *Engine) SetVisibility(ctx context.Context, owner primitive.ObjectID,
	rawID string, public bool) (*model.File, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, errors.Wrap(model.ErrNotFound, "parse file id")
	}

	return e.files.SetPublic(ctx, id, owner, public)
}

// Content resolves the bytes and content type for a record. viewer is nil
// for anonymous callers. Private records are served only to their owner and
// are otherwise reported as not found, never as forbidden. rawSize selects a
// derived variant when it names a recognized width; the engine never
// synthesizes missing variants synchronously.
func (e *Engine) Content(ctx context.Context, viewer *primitive.ObjectID,
	rawID, rawSize string) ([]byte, string, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, "", errors.Wrap(model.ErrNotFound, "parse file id")
	}

	f, err := e.files.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if !f.IsPublic && (viewer == nil || *viewer != f.UserID) {
		return nil, "", errors.WithStack(model.ErrNotFound)
	}

	if f.Type == model.KindFolder {
		return nil, "", errors.WithStack(model.ErrFolderHasNoContent)
	}

	path := f.LocalPath
	if width, ok := model.ThumbnailWidth(rawSize); ok {
		path = blob.VariantPath(path, width)
	}

	if path == "" || !e.blobs.Exists(path) {
		return nil, "", errors.WithStack(model.ErrNotFound)
	}

	data, err := e.blobs.Read(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "read blob")
	}

	contentType := mime.TypeByExtension(filepath.Ext(f.Name))
	if contentType == "" {
		contentType = defaultContentType
	}

	return data, contentType, nil
}
