// Package data provides the document models and one store per MongoDB
// collection.
package data

import (
	"context" // Used for cancellation and timeouts
	"errors"  // Error handling
	"time"    // Timestamps

	"go.mongodb.org/mongo-driver/v2/bson"  // MongoDB document queries
	"go.mongodb.org/mongo-driver/v2/mongo" // MongoDB driver
)

// UsersStore performs user DB operations.
type UsersStore struct {
	// coll is reference to the "usuarios" collection
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new user document. The password must already be
// hashed by auth.HashPassword.
func (u *UsersStore) CreateUser(ctx context.Context, user *User) error {
	now := time.Now()
	user.ID = user.RUT // the RUT is the identity used everywhere else
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := u.coll.InsertOne(ctx, user); err != nil {
		// Unique indexes on correo and rut reject duplicate registrations
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetUserByEmail finds a user by normalized email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return findOne[User](ctx, u.coll, bson.M{"correo": email})
}

// GetUserByID finds a user by RUT.
func (u *UsersStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	return findOne[User](ctx, u.coll, bson.M{"_id": id})
}

// UpdateProfile replaces the editable profile fields of a user.
func (u *UsersStore) UpdateProfile(ctx context.Context, id, firstName, lastName, phone, address string) error {
	res, err := u.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"nombres":       firstName,
		"apellidos":     lastName,
		"telefono":      phone,
		"direccion":     address,
		"actualizadoEn": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// findOne decodes the first document matching filter, mapping
// mongo.ErrNoDocuments to ErrNotFound.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var v T
	if err := coll.FindOne(ctx, filter).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// findAll decodes every document matching filter.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...findOpt) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	// Ensure cursor is closed when done (cleanup)
	defer cursor.Close(ctx)

	var out []*T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewID returns a fresh document identifier.
func NewID() string {
	return bson.NewObjectID().Hex()
}
