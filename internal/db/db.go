// Package db manages the MongoDB connection and the collections used by
// the service.
package db

import (
	"context" // For connection timeout/cancellation
	"fmt"     // Error formatting
	"time"    // Duration for timeouts

	"go.mongodb.org/mongo-driver/v2/bson"           // Index key documents
	"go.mongodb.org/mongo-driver/v2/mongo"          // MongoDB driver
	"go.mongodb.org/mongo-driver/v2/mongo/options"  // MongoDB options
	"go.mongodb.org/mongo-driver/v2/mongo/readpref" // MongoDB read preference
)

// Collection names. They match the collections of the existing mobile
// deployment, so they are kept verbatim.
const (
	Users             = "usuarios"
	Children          = "Hijos"
	Tutors            = "Tutores"
	Vehicles          = "Vehiculos"
	VanListings       = "Furgones"
	Applications      = "Postulaciones"
	Validations       = "ValidacionesPostulacion"
	PassengerList     = "lista_pasajeros"
	ApplicationVans   = "postulacion_furgon"
	ApplicationStates = "estado_postulacion"
	EmergencyChats    = "ChatsUrgencia"
	ChatMessages      = "MensajesChat"
	EmergencyMessages = "MensajesChatUrgencia"
	Alerts            = "Alertas"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "furgo"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db is the database holding every collection listed above
	db *mongo.Database
}

// New connects to MongoDB and returns a Client.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	// SetConnectTimeout: fail fast if MongoDB is unreachable
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify the connection; if it doesn't answer in 5 seconds, fail
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	if database == "" {
		database = DefaultDatabase
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// Collection returns the named collection (created on first write).
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// WithTransaction runs fn inside a multi-document transaction. Every
// store call made with the ctx passed to fn joins the transaction; the
// driver retries fn on transient transaction errors and commits once.
// Requires a replica set or sharded cluster.
func (c *Client) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := c.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, fn(txCtx)
	})
	return err
}

// CreateIndexes creates the indexes the stores rely on.
func (c *Client) CreateIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		// Login looks users up by email; registration rejects duplicates
		Users: {
			{Keys: bson.D{{Key: "correo", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "rut", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		Children: {
			{Keys: bson.D{{Key: "rutUsuario", Value: 1}}},
		},
		Tutors: {
			{Keys: bson.D{{Key: "rutUsuario", Value: 1}, {Key: "rut", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		// A plate belongs to one vehicle per driver
		Vehicles: {
			{Keys: bson.D{{Key: "rutUsuario", Value: 1}, {Key: "patente", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "patente", Value: 1}}},
		},
		VanListings: {
			{Keys: bson.D{{Key: "rutUsuario", Value: 1}}},
			{Keys: bson.D{{Key: "patente", Value: 1}}},
		},
		Applications: {
			{Keys: bson.D{{Key: "rutConductor", Value: 1}, {Key: "estado", Value: 1}}},
			{Keys: bson.D{{Key: "rutUsuario", Value: 1}}},
		},
		Validations: {
			{Keys: bson.D{{Key: "idPostulacion", Value: 1}, {Key: "fecha", Value: 1}}},
		},
		PassengerList: {
			{Keys: bson.D{{Key: "rutConductor", Value: 1}, {Key: "patenteFurgon", Value: 1}}},
			{Keys: bson.D{{Key: "rutApoderado", Value: 1}}},
		},
		ApplicationVans: {
			{Keys: bson.D{{Key: "postulacionDocId", Value: 1}}},
		},
		ApplicationStates: {
			{Keys: bson.D{{Key: "idPostulacion", Value: 1}}},
		},
		// One emergency conversation per (driver, guardian, child)
		EmergencyChats: {
			{
				Keys:    bson.D{{Key: "rutConductor", Value: 1}, {Key: "rutApoderado", Value: 1}, {Key: "rutHijo", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		ChatMessages: {
			{Keys: bson.D{{Key: "idConversacion", Value: 1}, {Key: "fecha", Value: 1}}},
		},
		EmergencyMessages: {
			{Keys: bson.D{{Key: "idConversacion", Value: 1}, {Key: "fecha", Value: 1}}},
		},
		// Serves the ordered alert query (recipient, newest first)
		Alerts: {
			{Keys: bson.D{{Key: "rutDestinatario", Value: 1}, {Key: "creadoEn", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := c.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}
