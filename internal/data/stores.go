package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/PaulBabatuyi/furgo/internal/db"
)

type findOpt = options.Lister[options.FindOptions]

// Stores bundles every collection store. Method names are unique across
// the embedded stores, so *Stores satisfies each service's narrow
// repository interface directly.
type Stores struct {
	*UsersStore
	*ChildrenStore
	*TutorsStore
	*VehiclesStore
	*ListingsStore
	*ApplicationsStore
	*ApplicationVansStore
	*ApplicationStatesStore
	*ValidationsStore
	*PassengersStore
	*EmergencyChatsStore
	*AlertsStore

	// AppMessages holds application chats, EmergencyMessages emergency ones
	AppMessages       *MessagesStore
	EmergencyMessages *MessagesStore

	client *db.Client
}

// NewStores wires one store per collection of c.
func NewStores(c *db.Client) *Stores {
	return &Stores{
		UsersStore:             NewUsersStore(c.Collection(db.Users)),
		ChildrenStore:          NewChildrenStore(c.Collection(db.Children)),
		TutorsStore:            NewTutorsStore(c.Collection(db.Tutors)),
		VehiclesStore:          NewVehiclesStore(c.Collection(db.Vehicles)),
		ListingsStore:          NewListingsStore(c.Collection(db.VanListings)),
		ApplicationsStore:      NewApplicationsStore(c.Collection(db.Applications)),
		ApplicationVansStore:   NewApplicationVansStore(c.Collection(db.ApplicationVans)),
		ApplicationStatesStore: NewApplicationStatesStore(c.Collection(db.ApplicationStates)),
		ValidationsStore:       NewValidationsStore(c.Collection(db.Validations)),
		PassengersStore:        NewPassengersStore(c.Collection(db.PassengerList)),
		EmergencyChatsStore:    NewEmergencyChatsStore(c.Collection(db.EmergencyChats)),
		AlertsStore:            NewAlertsStore(c.Collection(db.Alerts)),
		AppMessages:            NewMessagesStore(c.Collection(db.ChatMessages)),
		EmergencyMessages:      NewMessagesStore(c.Collection(db.EmergencyMessages)),
		client:                 c,
	}
}

// WithTransaction runs fn in a MongoDB transaction.
func (s *Stores) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.client.WithTransaction(ctx, fn)
}
