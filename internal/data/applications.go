package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrNotPending is returned when a status transition finds the
// application already decided.
var ErrNotPending = errors.New("application is not pending")

// ApplicationsStore performs postulación DB operations.
type ApplicationsStore struct {
	coll *mongo.Collection
}

// NewApplicationsStore returns an ApplicationsStore using the given collection.
func NewApplicationsStore(coll *mongo.Collection) *ApplicationsStore {
	return &ApplicationsStore{coll: coll}
}

// CreateApplication inserts a new application and assigns its id.
func (s *ApplicationsStore) CreateApplication(ctx context.Context, a *Application) error {
	a.ID = NewID()
	_, err := s.coll.InsertOne(ctx, a)
	return err
}

// GetApplication finds an application by id.
func (s *ApplicationsStore) GetApplication(ctx context.Context, id string) (*Application, error) {
	return findOne[Application](ctx, s.coll, bson.M{"_id": id})
}

// MarkApplicationAccepted flips a pending application to aceptada. The
// status is part of the filter, so a concurrent decision makes this
// return ErrNotPending instead of overwriting it.
func (s *ApplicationsStore) MarkApplicationAccepted(ctx context.Context, id, driverID, plate, acceptedAt string) error {
	return s.decide(ctx, id, bson.M{
		"estado":          StatusAccepted,
		"rutConductor":    driverID,
		"patenteFurgon":   plate,
		"fechaAceptacion": acceptedAt,
	})
}

// MarkApplicationRejected flips a pending application to rechazada.
func (s *ApplicationsStore) MarkApplicationRejected(ctx context.Context, id string) error {
	return s.decide(ctx, id, bson.M{"estado": StatusRejected})
}

func (s *ApplicationsStore) decide(ctx context.Context, id string, set bson.M) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id, "estado": StatusPending}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotPending
	}
	return nil
}

// ListApplicationsByDriver returns a driver's applications, optionally
// filtered by status, newest first.
func (s *ApplicationsStore) ListApplicationsByDriver(ctx context.Context, driverID string, status ApplicationStatus) ([]*Application, error) {
	filter := bson.M{"rutConductor": driverID}
	if status != "" {
		filter["estado"] = status
	}
	return findAll[Application](ctx, s.coll, filter,
		options.Find().SetSort(bson.D{{Key: "creadoEn", Value: -1}}))
}

// ApplicationVansStore reads and updates the postulacion_furgon side table.
type ApplicationVansStore struct {
	coll *mongo.Collection
}

// NewApplicationVansStore returns an ApplicationVansStore.
func NewApplicationVansStore(coll *mongo.Collection) *ApplicationVansStore {
	return &ApplicationVansStore{coll: coll}
}

// FindApplicationVan returns the side record for an application.
func (s *ApplicationVansStore) FindApplicationVan(ctx context.Context, applicationID string) (*ApplicationVan, error) {
	return findOne[ApplicationVan](ctx, s.coll, bson.M{"postulacionDocId": applicationID})
}

// MarkApplicationVanAccepted stamps the side record as accepted by driverID.
func (s *ApplicationVansStore) MarkApplicationVanAccepted(ctx context.Context, id, driverID, ts string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"estado":       StatusAccepted,
		"fecha":        ts,
		"rutConductor": driverID,
	}})
	return err
}

// ApplicationStatesStore reads estado_postulacion.
type ApplicationStatesStore struct {
	coll *mongo.Collection
}

// NewApplicationStatesStore returns an ApplicationStatesStore.
func NewApplicationStatesStore(coll *mongo.Collection) *ApplicationStatesStore {
	return &ApplicationStatesStore{coll: coll}
}

// FindApplicationState returns the state record of an application.
func (s *ApplicationStatesStore) FindApplicationState(ctx context.Context, applicationID string) (*ApplicationState, error) {
	return findOne[ApplicationState](ctx, s.coll, bson.M{"idPostulacion": applicationID})
}

// ValidationsStore appends to the ValidacionesPostulacion audit log.
type ValidationsStore struct {
	coll *mongo.Collection
}

// NewValidationsStore returns a ValidationsStore.
func NewValidationsStore(coll *mongo.Collection) *ValidationsStore {
	return &ValidationsStore{coll: coll}
}

// AppendValidation inserts one audit entry. Entries are never updated.
func (s *ValidationsStore) AppendValidation(ctx context.Context, v *ValidationRecord) error {
	v.ID = NewID()
	_, err := s.coll.InsertOne(ctx, v)
	return err
}

// ListValidations returns the audit trail of an application in order.
func (s *ValidationsStore) ListValidations(ctx context.Context, applicationID string) ([]*ValidationRecord, error) {
	return findAll[ValidationRecord](ctx, s.coll, bson.M{"idPostulacion": applicationID},
		options.Find().SetSort(bson.D{{Key: "fecha", Value: 1}}))
}
