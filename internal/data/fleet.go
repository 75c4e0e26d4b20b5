package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// VehiclesStore performs vehicle DB operations.
type VehiclesStore struct {
	coll *mongo.Collection
}

// NewVehiclesStore returns a VehiclesStore using the given collection.
func NewVehiclesStore(coll *mongo.Collection) *VehiclesStore {
	return &VehiclesStore{coll: coll}
}

// SaveVehicle inserts a vehicle or replaces the driver's vehicle with the
// same plate.
func (s *VehiclesStore) SaveVehicle(ctx context.Context, v *Vehicle) error {
	now := time.Now()
	filter := bson.M{"rutUsuario": v.DriverID, "patente": v.Plate}

	existing, err := findOne[Vehicle](ctx, s.coll, filter)
	switch {
	case err == nil:
		v.ID = existing.ID
		v.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		v.ID = NewID()
		v.CreatedAt = now
	default:
		return err
	}
	v.UpdatedAt = now

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": v.ID}, v, options.Replace().SetUpsert(true))
	return err
}

// GetVehicleByPlate returns the first vehicle registered with plate.
func (s *VehiclesStore) GetVehicleByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	return findOne[Vehicle](ctx, s.coll, bson.M{"patente": plate})
}

// ListVehicles returns a driver's vehicles.
func (s *VehiclesStore) ListVehicles(ctx context.Context, driverID string) ([]*Vehicle, error) {
	return findAll[Vehicle](ctx, s.coll, bson.M{"rutUsuario": driverID})
}

// ListingsStore performs van listing (Furgones) DB operations.
type ListingsStore struct {
	coll *mongo.Collection
}

// NewListingsStore returns a ListingsStore using the given collection.
func NewListingsStore(coll *mongo.Collection) *ListingsStore {
	return &ListingsStore{coll: coll}
}

// CreateListing publishes a van listing.
func (s *ListingsStore) CreateListing(ctx context.Context, l *VanListing) error {
	l.ID = NewID()
	l.CreatedAt = time.Now()
	_, err := s.coll.InsertOne(ctx, l)
	return err
}

// GetListing finds a listing by id.
func (s *ListingsStore) GetListing(ctx context.Context, id string) (*VanListing, error) {
	return findOne[VanListing](ctx, s.coll, bson.M{"_id": id})
}

// ListListings returns every published listing, newest first.
func (s *ListingsStore) ListListings(ctx context.Context) ([]*VanListing, error) {
	return findAll[VanListing](ctx, s.coll, bson.M{},
		options.Find().SetSort(bson.D{{Key: "creadoEn", Value: -1}}))
}
