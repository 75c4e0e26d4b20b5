package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// AlertsStore performs Alertas DB operations.
type AlertsStore struct {
	coll *mongo.Collection
}

// NewAlertsStore returns an AlertsStore.
func NewAlertsStore(coll *mongo.Collection) *AlertsStore {
	return &AlertsStore{coll: coll}
}

// InsertAlert appends an alert and assigns its id.
func (s *AlertsStore) InsertAlert(ctx context.Context, a *Alert) error {
	a.ID = NewID()
	_, err := s.coll.InsertOne(ctx, a)
	return err
}

// ListRecentAlerts is the preferred query: newest first, capped, served
// by the (rutDestinatario, creadoEn) index.
func (s *AlertsStore) ListRecentAlerts(ctx context.Context, recipientID string, limit int64) ([]*Alert, error) {
	return findAll[Alert](ctx, s.coll, bson.M{"rutDestinatario": recipientID},
		options.Find().SetSort(bson.D{{Key: "creadoEn", Value: -1}}).SetLimit(limit))
}

// ListAlertsByRecipient is the equality-only fallback query. It returns
// every alert of the recipient in whatever order the server picks.
func (s *AlertsStore) ListAlertsByRecipient(ctx context.Context, recipientID string) ([]*Alert, error) {
	return findAll[Alert](ctx, s.coll, bson.M{"rutDestinatario": recipientID})
}

// MarkAlertRead sets the read flag on one of the recipient's alerts.
func (s *AlertsStore) MarkAlertRead(ctx context.Context, id, recipientID string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id, "rutDestinatario": recipientID},
		bson.M{"$set": bson.M{"leida": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
