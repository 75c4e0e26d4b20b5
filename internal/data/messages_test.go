package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesSaveAndList(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	now := time.Now()
	for i, text := range []string{"hola", "¿a qué hora pasa?"} {
		msg := &ChatMessage{
			ConversationID: "app-1",
			Text:           text,
			SenderID:       "12345678-5",
			ReceiverID:     "9876543-3",
			Participants:   Participants("12345678-5", "9876543-3"),
			Timestamp:      Timestamp(now.Add(time.Duration(i) * time.Second)),
		}
		require.NoError(t, s.AppMessages.SaveMessage(ctx, msg))
	}

	got, err := s.AppMessages.ListMessages(ctx, "app-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// channels are separate collections
	other, err := s.EmergencyMessages.ListMessages(ctx, "app-1")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestEmergencyChatIsDeduplicated(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	openedAt := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	want := &EmergencyChat{DriverID: "9876543-3", GuardianID: "12345678-5", ChildID: "22222222-2", ChildName: "Sofía", CreatedAt: openedAt}
	first, created, err := s.FindOrCreateEmergencyChat(ctx, want)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "abierta", first.Status)
	assert.True(t, openedAt.Equal(first.CreatedAt), "created at %v", first.CreatedAt)

	want.CreatedAt = openedAt.Add(time.Hour)
	second, created, err := s.FindOrCreateEmergencyChat(ctx, want)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, openedAt.Equal(second.CreatedAt), "created at %v", second.CreatedAt)

	got, err := s.GetEmergencyChat(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "22222222-2", got.ChildID)
}

func TestApplicationDecisionRequiresPending(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	app := &Application{GuardianID: "12345678-5", DriverID: "9876543-3", Status: StatusPending, CreatedAt: Timestamp(time.Now())}
	require.NoError(t, s.CreateApplication(ctx, app))

	require.NoError(t, s.MarkApplicationAccepted(ctx, app.ID, "9876543-3", "ABCD12", Timestamp(time.Now())))
	assert.ErrorIs(t, s.MarkApplicationAccepted(ctx, app.ID, "9876543-3", "ABCD12", Timestamp(time.Now())), ErrNotPending)
	assert.ErrorIs(t, s.MarkApplicationRejected(ctx, app.ID), ErrNotPending)

	got, err := s.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	assert.Equal(t, "ABCD12", got.VanPlate)

	accepted, err := s.ListApplicationsByDriver(ctx, "9876543-3", StatusAccepted)
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
}

func TestPassengerUpsertIsKeyedByApplication(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	entry := &PassengerListEntry{ApplicationID: "app-7", DriverID: "9876543-3", GuardianID: "12345678-5", ChildID: "22222222-2", VanPlate: "ABCD12"}
	require.NoError(t, s.UpsertPassenger(ctx, entry))
	again := *entry
	again.ChildName = "Sofía Pérez"
	require.NoError(t, s.UpsertPassenger(ctx, &again))

	list, err := s.ListPassengersByVan(ctx, "9876543-3", "ABCD12")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "app-7", list[0].ID)
	assert.Equal(t, "Sofía Pérez", list[0].ChildName)

	byChild, err := s.FindPassengerByChild(ctx, "9876543-3", "22222222-2")
	require.NoError(t, err)
	assert.Equal(t, "ABCD12", byChild.VanPlate)
}

func TestAlertsRecentAndRead(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	base := time.Now()
	for i := range 12 {
		a := &Alert{Kind: AlertTraffic, RecipientID: "12345678-5", VanPlate: "ABCD12", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, s.InsertAlert(ctx, a))
	}

	recent, err := s.ListRecentAlerts(ctx, "12345678-5", 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.True(t, recent[0].CreatedAt.After(recent[9].CreatedAt))

	require.NoError(t, s.MarkAlertRead(ctx, recent[0].ID, "12345678-5"))
	assert.ErrorIs(t, s.MarkAlertRead(ctx, recent[0].ID, "someone-else"), ErrNotFound)

	unordered, err := s.ListAlertsByRecipient(ctx, "12345678-5")
	require.NoError(t, err)
	assert.Len(t, unordered, 12)
}
