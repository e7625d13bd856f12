// Package model contains the user records.
package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account.
type User struct {
	// ID unique identifier for the user
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// Email login account, unique
	Email string `bson:"email" json:"email"`
	// Password deterministic one-way digest of the raw password
	Password string `bson:"password" json:"-"`
}

// GetID get id
func (u *User) GetID() string {
	return u.ID.Hex()
}
