// Package dao contains the data access objects for user records.
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

	"github.com/Laisky/files-manager/internal/web/user/model"
	"github.com/Laisky/files-manager/library/db/mongo"
)

// Users dao type
type Users struct {
	logger glog.Logger
	db     mongo.DB
}

// New create new dao
func New(logger glog.Logger, db mongo.DB) *Users {
	return &Users{
		logger: logger,
		db:     db,
	}
}

// GetUsersCol get users collection
func (d *Users) GetUsersCol() *mongoLib.Collection {
	return d.db.GetCol("users")
}

// EnsureIndexes creates the unique index on email.
func (d *Users) EnsureIndexes(ctx context.Context) error {
	if _, err := d.GetUsersCol().Indexes().CreateOne(ctx, mongoLib.IndexModel{
		Keys: bson.M{
			"email": 1,
		},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "create index for email")
	}

	return nil
}

// Insert persists a new user, assigning an id when absent.
func (d *Users) Insert(ctx context.Context, u *model.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}

	if _, err := d.GetUsersCol().InsertOne(ctx, u); err != nil {
		return errors.Wrapf(err, "insert user %q", u.Email)
	}

	d.logger.Info("insert new user", zap.String("email", u.Email))
	return nil
}

// FindByEmail loads a user by email.
func (d *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u := new(model.User)
	if err := d.GetUsersCol().
		FindOne(ctx, bson.D{{Key: "email", Value: email}}).
		Decode(u); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "find user %q", email)
	}

	return u, nil
}

// FindByCredentials loads a user matching both email and password digest.
func (d *Users) FindByCredentials(ctx context.Context, email, hashed string) (*model.User, error) {
	u := new(model.User)
	if err := d.GetUsersCol().
		FindOne(ctx, bson.D{
			{Key: "email", Value: email},
			{Key: "password", Value: hashed},
		}).
		Decode(u); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "find user %q", email)
	}

	return u, nil
}

// FindByID loads a user by id.
func (d *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	u := new(model.User)
	if err := d.GetUsersCol().
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}).
		Decode(u); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "find user %s", id.Hex())
	}

	return u, nil
}

// Count returns the total number of users.
func (d *Users) Count(ctx context.Context) (int64, error) {
	n, err := d.GetUsersCol().CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, errors.Wrap(err, "count users")
	}

	return n, nil
}
