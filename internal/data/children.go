package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChildrenStore performs child DB operations.
type ChildrenStore struct {
	coll *mongo.Collection
}

// NewChildrenStore returns a ChildrenStore using the given collection.
func NewChildrenStore(coll *mongo.Collection) *ChildrenStore {
	return &ChildrenStore{coll: coll}
}

// SaveChild inserts or replaces a child keyed by its RUT.
func (s *ChildrenStore) SaveChild(ctx context.Context, child *Child) error {
	now := time.Now()
	if child.CreatedAt.IsZero() {
		child.CreatedAt = now
	}
	child.UpdatedAt = now
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": child.ID}, child, options.Replace().SetUpsert(true))
	return err
}

// GetChild finds a child by RUT.
func (s *ChildrenStore) GetChild(ctx context.Context, id string) (*Child, error) {
	return findOne[Child](ctx, s.coll, bson.M{"_id": id})
}

// ListChildren returns every child of a guardian.
func (s *ChildrenStore) ListChildren(ctx context.Context, guardianID string) ([]*Child, error) {
	return findAll[Child](ctx, s.coll, bson.M{"rutUsuario": guardianID},
		options.Find().SetSort(bson.D{{Key: "nombres", Value: 1}}))
}

// TutorsStore performs tutor DB operations.
type TutorsStore struct {
	coll *mongo.Collection
}

// NewTutorsStore returns a TutorsStore using the given collection.
func NewTutorsStore(coll *mongo.Collection) *TutorsStore {
	return &TutorsStore{coll: coll}
}

// SaveTutor inserts a tutor, or replaces the guardian's existing tutor
// with the same RUT. ID documents are always replaced wholesale.
func (s *TutorsStore) SaveTutor(ctx context.Context, tutor *Tutor) error {
	now := time.Now()
	filter := bson.M{"rutUsuario": tutor.GuardianID, "rut": tutor.RUT}

	existing, err := findOne[Tutor](ctx, s.coll, filter)
	switch {
	case err == nil:
		tutor.ID = existing.ID
		tutor.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		tutor.ID = NewID()
		tutor.CreatedAt = now
	default:
		return err
	}
	tutor.UpdatedAt = now

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": tutor.ID}, tutor, options.Replace().SetUpsert(true))
	return err
}

// ListTutors returns every tutor registered by a guardian.
func (s *TutorsStore) ListTutors(ctx context.Context, guardianID string) ([]*Tutor, error) {
	return findAll[Tutor](ctx, s.coll, bson.M{"rutUsuario": guardianID})
}
