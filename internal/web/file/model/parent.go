package model

import (
	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// ParentRef is a tagged union: either the root sentinel ("top level") or a
// reference to a folder record. It replaces the legacy `0 or ObjectId`
// convention with a single type, while staying wire-compatible with
// documents that store the root parent as the number 0.
type ParentRef struct {
	id primitive.ObjectID
}

// RootParent returns the root sentinel.
func RootParent() ParentRef {
	return ParentRef{}
}

// FolderParent returns a reference to the folder with the given id.
func FolderParent(id primitive.ObjectID) ParentRef {
	return ParentRef{id: id}
}

// IsRoot reports whether p is the root sentinel.
func (p ParentRef) IsRoot() bool {
	return p.id.IsZero()
}

// FolderID returns the referenced folder id, reporting false for the root.
func (p ParentRef) FolderID() (primitive.ObjectID, bool) {
	if p.IsRoot() {
		return primitive.NilObjectID, false
	}

	return p.id, true
}

// MarshalBSONValue stores the root sentinel as the number 0 and folder
// references as ObjectIDs, matching the collection's historical encoding.
func (p ParentRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if p.IsRoot() {
		return bson.MarshalValue(int32(0))
	}

	return bson.MarshalValue(p.id)
}

// UnmarshalBSONValue accepts ObjectIDs, numeric zero, the string "0",
// and hex-string ids, collapsing every legacy representation into the union.
func (p *ParentRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bsoncore.Value{Type: t, Data: data}

	switch t {
	case bsontype.ObjectID:
		oid, ok := raw.ObjectIDOK()
		if !ok {
			return errors.New("malformed objectid parent")
		}
		p.id = oid
		return nil

	case bsontype.Int32:
		v, ok := raw.Int32OK()
		if !ok || v != 0 {
			return errors.Errorf("unexpected int32 parent %d", v)
		}
		p.id = primitive.NilObjectID
		return nil

	case bsontype.Int64:
		v, ok := raw.Int64OK()
		if !ok || v != 0 {
			return errors.Errorf("unexpected int64 parent %d", v)
		}
		p.id = primitive.NilObjectID
		return nil

	case bsontype.String:
		s, ok := raw.StringValueOK()
		if !ok {
			return errors.New("malformed string parent")
		}
		if s == "" || s == "0" {
			p.id = primitive.NilObjectID
			return nil
		}
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return errors.Wrapf(err, "parse parent id %q", s)
		}
		p.id = oid
		return nil

	case bsontype.Null:
		p.id = primitive.NilObjectID
		return nil

	default:
		return errors.Errorf("unsupported parent bson type %s", t)
	}
}
