package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/db"
)

// TestMongoApplicationFlow runs register, publish, submit and accept
// against a real MongoDB. Accept needs transactions, so MONGODB_URI must
// point at a replica set.
func TestMongoApplicationFlow(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	dbName := "furgo_it_" + time.Now().UTC().Format("20060102150405")
	dbClient, err := db.New(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	t.Cleanup(func() {
		for _, name := range []string{
			db.Users, db.Children, db.Vehicles, db.VanListings, db.Applications,
			db.Validations, db.PassengerList, db.ChatMessages, db.Alerts,
		} {
			_ = dbClient.Collection(name).Drop(context.Background())
		}
		_ = dbClient.Close(context.Background())
	})
	if err := dbClient.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	stores := data.NewStores(dbClient)
	c := startServer(t, stores, stores.AppMessages, stores.EmergencyMessages)

	guardian := register(t, c, guardianRUT, "it-ana@example.com", "apoderado")
	driver := register(t, c, driverRUT, "it-juan@example.com", "conductor")

	if _, err := c.Login(ctx, &v1.LoginRequest{Email: "it-ana@example.com", Password: password}); err != nil {
		t.Fatalf("Login RPC failed: %v", err)
	}

	_, err = c.SaveVehicle(driver, &v1.SaveVehicleRequest{Plate: plate, Model: "Sprinter", Year: 2020})
	require.NoError(t, err)
	pub, err := c.PublishVan(driver, &v1.PublishVanRequest{Name: "Furgón", School: "Colegio", Commune: "Maipú", Price: 40000, Plate: plate})
	require.NoError(t, err)
	_, err = c.SaveChild(guardian, &v1.SaveChildRequest{Child: v1.Child{
		RUT: childRUT, FirstName: "Sofía", LastName: "Pérez", BirthDate: "2015-03-10", Age: 10,
	}})
	require.NoError(t, err)

	app, err := c.SubmitApplication(guardian, &v1.SubmitApplicationRequest{ChildRUT: childRUT, VanListingID: pub.Van.ID})
	require.NoError(t, err)
	_, err = c.AcceptApplication(driver, &v1.ApplicationRef{ApplicationID: app.Application.ID})
	require.NoError(t, err)

	snap, err := c.OpenConversation(guardian, &v1.ConversationRef{Channel: "postulacion", ConversationID: app.Application.ID})
	require.NoError(t, err)
	require.Len(t, snap.Messages, 1)
}
