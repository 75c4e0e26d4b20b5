package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides chat message database operations. One store
// exists per channel collection (MensajesChat, MensajesChatUrgencia).
type MessagesStore struct {
	// coll is the message collection of a single channel
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// SaveMessage inserts a message document and assigns its id.
func (m *MessagesStore) SaveMessage(ctx context.Context, msg *ChatMessage) error {
	msg.ID = NewID()
	_, err := m.coll.InsertOne(ctx, msg)
	return err
}

// ListMessages returns every message of a conversation. Ordering is left
// to the caller, which sorts by timestamp on every snapshot.
func (m *MessagesStore) ListMessages(ctx context.Context, conversationID string) ([]*ChatMessage, error) {
	return findAll[ChatMessage](ctx, m.coll, bson.M{"idConversacion": conversationID})
}

// EmergencyChatsStore performs ChatsUrgencia DB operations.
type EmergencyChatsStore struct {
	coll *mongo.Collection
}

// NewEmergencyChatsStore returns an EmergencyChatsStore.
func NewEmergencyChatsStore(coll *mongo.Collection) *EmergencyChatsStore {
	return &EmergencyChatsStore{coll: coll}
}

// FindOrCreateEmergencyChat returns the conversation for the
// (driver, guardian, child) triple, creating it on first contact. The
// lookup and insert are one upsert backed by a unique index, so two
// simultaneous first contacts share one document.
func (s *EmergencyChatsStore) FindOrCreateEmergencyChat(ctx context.Context, c *EmergencyChat) (*EmergencyChat, bool, error) {
	filter := bson.M{
		"rutConductor": c.DriverID,
		"rutApoderado": c.GuardianID,
		"rutHijo":      c.ChildID,
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	newID := NewID()
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        newID,
		"nombreHijo": c.ChildName,
		"estado":     "abierta",
		"creadoEn":   createdAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out EmergencyChat
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		// lost the race against a concurrent upsert; the winner's document exists now
		found, ferr := findOne[EmergencyChat](ctx, s.coll, filter)
		return found, false, ferr
	}
	if err != nil {
		return nil, false, err
	}
	return &out, out.ID == newID, nil
}

// GetEmergencyChat finds an emergency conversation by id.
func (s *EmergencyChatsStore) GetEmergencyChat(ctx context.Context, id string) (*EmergencyChat, error) {
	return findOne[EmergencyChat](ctx, s.coll, bson.M{"_id": id})
}
