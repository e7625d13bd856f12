// Package dao contains the data access objects for file records.
package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/files-manager/internal/web/file/model"
	"github.com/Laisky/files-manager/library/db/mongo"
)

// Files dao type
type Files struct {
	logger glog.Logger
	db     mongo.DB
}

// New create new dao
func New(logger glog.Logger, db mongo.DB) *Files {
	return &Files{
		logger: logger,
		db:     db,
	}
}

// GetFilesCol get files collection
func (d *Files) GetFilesCol() *mongoLib.Collection {
	return d.db.GetCol("files")
}

// Insert persists a new file record, assigning an id when absent.
func (d *Files) Insert(ctx context.Context, f *model.File) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}

	if _, err := d.GetFilesCol().InsertOne(ctx, f); err != nil {
		return errors.Wrapf(err, "insert file %q", f.Name)
	}

	d.logger.Debug("insert file",
		zap.String("file_id", f.ID.Hex()),
		zap.String("type", string(f.Type)))
	return nil
}

// Get loads a record by id regardless of owner.
func (d *Files) Get(ctx context.Context, id primitive.ObjectID) (*model.File, error) {
	f := new(model.File)
	if err := d.GetFilesCol().
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}).
		Decode(f); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "find file %s", id.Hex())
	}

	return f, nil
}

// GetOwned loads a record by id scoped to its owner. A missing record and a
// record owned by someone else are indistinguishable.
func (d *Files) GetOwned(ctx context.Context, id, owner primitive.ObjectID) (*model.File, error) {
	f := new(model.File)
	if err := d.GetFilesCol().
		FindOne(ctx, bson.D{
			{Key: "_id", Value: id},
			{Key: "userId", Value: owner},
		}).
		Decode(f); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "find file %s", id.Hex())
	}

	return f, nil
}

// List returns one fixed-size page of the owner's records under parent,
// sorted by insertion order so pages are disjoint and exhaustive.
func (d *Files) List(ctx context.Context, owner primitive.ObjectID,
	parent model.ParentRef, page int) ([]*model.File, error) {
	if page < 0 {
		page = 0
	}

	cur, err := d.GetFilesCol().Find(ctx, bson.D{
		{Key: "userId", Value: owner},
		{Key: "parentId", Value: parent},
	},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
		options.Find().SetSkip(int64(page*model.ListPageSize)),
		options.Find().SetLimit(int64(model.ListPageSize)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find files")
	}
	defer cur.Close(ctx)

	files := []*model.File{}
	if err = cur.All(ctx, &files); err != nil {
		return nil, errors.Wrap(err, "load files")
	}

	return files, nil
}

// SetPublic flips the visibility of the owner's record and returns the
// updated document. Missing or non-owned records yield model.ErrNotFound.
func (d *Files) SetPublic(ctx context.Context, id, owner primitive.ObjectID,
	public bool) (*model.File, error) {
	f := new(model.File)
	if err := d.GetFilesCol().FindOneAndUpdate(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "userId", Value: owner},
		},
		bson.M{"$set": bson.M{"isPublic": public}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(f); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "update file %s visibility", id.Hex())
	}

	return f, nil
}

// Count returns the total number of file records.
func (d *Files) Count(ctx context.Context) (int64, error) {
	n, err := d.GetFilesCol().CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, errors.Wrap(err, "count files")
	}

	return n, nil
}
