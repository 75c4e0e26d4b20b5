package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PassengersStore performs lista_pasajeros DB operations.
type PassengersStore struct {
	coll *mongo.Collection
}

// NewPassengersStore returns a PassengersStore.
func NewPassengersStore(coll *mongo.Collection) *PassengersStore {
	return &PassengersStore{coll: coll}
}

// UpsertPassenger writes the entry under _id = application id. A single
// keyed replace, so repeated acceptances never produce a second entry.
func (s *PassengersStore) UpsertPassenger(ctx context.Context, e *PassengerListEntry) error {
	e.ID = e.ApplicationID
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, options.Replace().SetUpsert(true))
	return err
}

// ListPassengersByVan returns the passengers a driver carries on plate.
func (s *PassengersStore) ListPassengersByVan(ctx context.Context, driverID, plate string) ([]*PassengerListEntry, error) {
	return findAll[PassengerListEntry](ctx, s.coll, bson.M{"rutConductor": driverID, "patenteFurgon": plate},
		options.Find().SetSort(bson.D{{Key: "nombreHijo", Value: 1}}))
}

// ListPassengersByPlate returns every passenger assigned to plate.
func (s *PassengersStore) ListPassengersByPlate(ctx context.Context, plate string) ([]*PassengerListEntry, error) {
	return findAll[PassengerListEntry](ctx, s.coll, bson.M{"patenteFurgon": plate})
}

// ListPassengersByGuardian returns the seats held by a guardian's children.
func (s *PassengersStore) ListPassengersByGuardian(ctx context.Context, guardianID string) ([]*PassengerListEntry, error) {
	return findAll[PassengerListEntry](ctx, s.coll, bson.M{"rutApoderado": guardianID})
}

// FindPassengerByChild returns the entry placing childID on one of
// driverID's vans.
func (s *PassengersStore) FindPassengerByChild(ctx context.Context, driverID, childID string) (*PassengerListEntry, error) {
	return findOne[PassengerListEntry](ctx, s.coll, bson.M{"rutConductor": driverID, "rutHijo": childID})
}
