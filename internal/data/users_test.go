package data

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/furgo/internal/db"
)

func setupDB(t *testing.T) *Stores {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "furgo_data_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Collection(db.Users).Database().Drop(context.Background())
		_ = c.Close(context.Background())
	})

	// ensure clean collections in case previous runs left data
	_ = c.Collection(db.Users).Database().Drop(ctx)
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	return NewStores(c)
}

func TestUsersCreateAndGet(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	user := &User{
		RUT:       "12345678-5",
		FirstName: "Ana",
		LastName:  "Pérez",
		Email:     "ana@example.com",
		Password:  "hashed-password",
		Role:      RoleGuardian,
	}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.Equal(t, "12345678-5", user.ID)

	byEmail, err := s.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "Ana Pérez", byEmail.DisplayName())

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleGuardian, byID.Role)

	// same email again
	dup := *user
	dup.RUT = "11111111-1"
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), ErrDuplicate)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersUpdateProfile(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &User{RUT: "9876543-3", Email: "c@example.com", Role: RoleDriver}))
	require.NoError(t, s.UpdateProfile(ctx, "9876543-3", "Carlos", "Soto", "+56911112222", "Av. Siempre Viva 1"))

	u, err := s.GetUserByID(ctx, "9876543-3")
	require.NoError(t, err)
	assert.Equal(t, "Carlos Soto", u.DisplayName())
	assert.Equal(t, "+56911112222", u.Phone)

	assert.ErrorIs(t, s.UpdateProfile(ctx, "0-0", "x", "y", "", ""), ErrNotFound)
}

func TestChildrenAndTutorsUpsert(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	child := &Child{ID: "22222222-2", FirstName: "Sofía", LastName: "Pérez", GuardianID: "12345678-5"}
	require.NoError(t, s.SaveChild(ctx, child))
	created := child.CreatedAt

	child.MedicalNotes = "asma"
	require.NoError(t, s.SaveChild(ctx, child))

	got, err := s.GetChild(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "asma", got.MedicalNotes)
	assert.WithinDuration(t, created, got.CreatedAt, time.Millisecond)

	list, err := s.ListChildren(ctx, "12345678-5")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	tutor := &Tutor{RUT: "33333333-3", FirstName: "Luis", GuardianID: "12345678-5", Address: "x"}
	require.NoError(t, s.SaveTutor(ctx, tutor))
	firstID := tutor.ID

	again := &Tutor{RUT: "33333333-3", FirstName: "Luis Alberto", GuardianID: "12345678-5", Address: "y"}
	require.NoError(t, s.SaveTutor(ctx, again))
	assert.Equal(t, firstID, again.ID)

	tutors, err := s.ListTutors(ctx, "12345678-5")
	require.NoError(t, err)
	require.Len(t, tutors, 1)
	assert.Equal(t, "Luis Alberto", tutors[0].FirstName)
}

func TestVehiclesAndListings(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	v := &Vehicle{Plate: "ABCD12", Model: "Sprinter", Year: 2020, DriverID: "9876543-3"}
	require.NoError(t, s.SaveVehicle(ctx, v))

	byPlate, err := s.GetVehicleByPlate(ctx, "ABCD12")
	require.NoError(t, err)
	assert.Equal(t, v.ID, byPlate.ID)

	vs, err := s.ListVehicles(ctx, "9876543-3")
	require.NoError(t, err)
	assert.Len(t, vs, 1)

	first := &VanListing{Name: "Furgón Norte", School: "Colegio A", Commune: "Ñuñoa", Price: 45000, Plate: "ABCD12", DriverID: "9876543-3"}
	require.NoError(t, s.CreateListing(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &VanListing{Name: "Furgón Sur", School: "Colegio B", Commune: "Maipú", Price: 40000, Plate: "ABCD12", DriverID: "9876543-3"}
	require.NoError(t, s.CreateListing(ctx, second))

	all, err := s.ListListings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
}
