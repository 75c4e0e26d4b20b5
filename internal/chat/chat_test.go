package chat

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/furgo/internal/alerts"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/data/datatest"
)

const (
	guardian = "12345678-5"
	driver   = "9876543-3"
	child    = "22222222-2"
	stranger = "11111111-1"
)

type notifications []string

func (n *notifications) Notify(ch data.Channel, id string) {
	*n = append(*n, string(ch)+"/"+id)
}

func newRouter(t *testing.T) (*Router, *datatest.Store, *notifications) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := datatest.New()
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &data.User{RUT: guardian, FirstName: "Ana", LastName: "Rojas", Email: "ana@example.com", Role: data.RoleGuardian}))
	require.NoError(t, store.CreateUser(ctx, &data.User{RUT: driver, FirstName: "Luis", LastName: "Soto", Email: "luis@example.com", Role: data.RoleDriver}))
	require.NoError(t, store.SaveChild(ctx, &data.Child{ID: child, FirstName: "Tomás", LastName: "Rojas", GuardianID: guardian}))
	store.Applications["app-1"] = data.Application{ID: "app-1", GuardianID: guardian, DriverID: driver, ChildID: child, VanPlate: "ABCD12", Status: data.StatusPending}

	r := New(store, store.AppMessages, store.EmergencyMessages, alerts.New(store, logger), logger)
	n := &notifications{}
	r.SetNotifier(n)
	clock := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return r, store, n
}

func TestParticipantsSymmetric(t *testing.T) {
	assert.Equal(t, data.Participants(guardian, driver), data.Participants(driver, guardian))
	assert.Equal(t, []string{guardian}, data.Participants(guardian, ""))
}

func TestResolveParticipantsApplication(t *testing.T) {
	r, _, _ := newRouter(t)
	ctx := context.Background()
	c, err := r.Conversation(ctx, data.ChannelApplication, "app-1")
	require.NoError(t, err)

	assert.Equal(t, Party{ID: guardian, Name: "Ana Rojas"}, r.ResolveParticipants(ctx, c, driver, data.RoleDriver))
	assert.Equal(t, Party{ID: driver, Name: "Luis Soto"}, r.ResolveParticipants(ctx, c, guardian, data.RoleGuardian))
}

func TestResolveParticipantsLegacyDriver(t *testing.T) {
	r, store, _ := newRouter(t)
	ctx := context.Background()
	store.Applications["old"] = data.Application{ID: "old", GuardianID: guardian, Status: data.StatusPending, VanListingID: "van-1"}
	store.Listings["van-1"] = data.VanListing{ID: "van-1", DriverID: driver, Plate: "ABCD12"}

	c, err := r.Conversation(ctx, data.ChannelApplication, "old")
	require.NoError(t, err)
	assert.Equal(t, driver, c.DriverID)

	// estado_postulacion wins over the listing
	store.AppStates["s"] = data.ApplicationState{ID: "s", ApplicationID: "old", DriverID: stranger}
	c, err = r.Conversation(ctx, data.ChannelApplication, "old")
	require.NoError(t, err)
	assert.Equal(t, stranger, c.DriverID)
}

func TestResolveParticipantsUnresolved(t *testing.T) {
	r, store, _ := newRouter(t)
	ctx := context.Background()
	store.Applications["orphan"] = data.Application{ID: "orphan", GuardianID: guardian, Status: data.StatusPending}

	c, err := r.Conversation(ctx, data.ChannelApplication, "orphan")
	require.NoError(t, err)
	assert.Equal(t, Party{}, r.ResolveParticipants(ctx, c, guardian, data.RoleGuardian))

	msg, err := r.Send(ctx, c, "hola", guardian, "")
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestResolveParticipantsEmergency(t *testing.T) {
	r, _, _ := newRouter(t)
	c := &Conversation{Channel: data.ChannelEmergency, GuardianID: guardian, DriverID: driver}
	ctx := context.Background()

	assert.Equal(t, driver, r.ResolveParticipants(ctx, c, guardian, data.RoleGuardian).ID)
	assert.Equal(t, guardian, r.ResolveParticipants(ctx, c, driver, data.RoleDriver).ID)
	assert.Empty(t, r.ResolveParticipants(ctx, c, stranger, data.RoleDriver).ID)
}

func TestAuthorize(t *testing.T) {
	c := &Conversation{GuardianID: guardian, DriverID: driver}
	assert.True(t, Authorize(c, guardian))
	assert.True(t, Authorize(c, driver))
	assert.False(t, Authorize(c, stranger))
	assert.False(t, Authorize(&Conversation{GuardianID: guardian}, ""))
}

func TestFilterVisible(t *testing.T) {
	msgs := []*data.ChatMessage{
		{Text: "3", SenderID: guardian, ReceiverID: driver, Timestamp: "2025-03-10T08:00:03.000Z"},
		{Text: "1", SenderID: driver, ReceiverID: guardian, Timestamp: "2025-03-10T08:00:01.000Z"},
		{Text: "other", SenderID: stranger, ReceiverID: driver, Timestamp: "2025-03-10T08:00:02.000Z"},
		{Text: "2", SenderID: data.SystemSender, ReceiverID: guardian, Participants: []string{driver, guardian}, Timestamp: "2025-03-10T08:00:02.000Z"},
		{Text: "system elsewhere", SenderID: data.SystemSender, ReceiverID: guardian, Participants: []string{stranger, guardian}, Timestamp: "2025-03-10T08:00:04.000Z"},
	}
	texts := func(actor, receiver string) []string {
		var out []string
		for m := range FilterVisible(msgs, actor, receiver) {
			out = append(out, m.Text)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, texts(guardian, driver))
	assert.Equal(t, []string{"1", "2", "3"}, texts(driver, guardian))
	assert.Equal(t, []string{"other"}, texts(stranger, driver))
	assert.Empty(t, texts(guardian, ""))

	// restartable, and the input is left untouched
	seq := FilterVisible(msgs, guardian, driver)
	assert.Equal(t, slices.Collect(seq), slices.Collect(seq))
	assert.Equal(t, "3", msgs[0].Text)
}

func TestFilterVisibleStopsEarly(t *testing.T) {
	msgs := []*data.ChatMessage{
		{SenderID: guardian, ReceiverID: driver, Timestamp: "1"},
		{SenderID: guardian, ReceiverID: driver, Timestamp: "2"},
	}
	n := 0
	for range FilterVisible(msgs, guardian, driver) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestSendAndOpen(t *testing.T) {
	r, store, n := newRouter(t)
	ctx := context.Background()
	c, err := r.Conversation(ctx, data.ChannelApplication, "app-1")
	require.NoError(t, err)

	msg, err := r.Send(ctx, c, "  hola  ", guardian, driver)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "hola", msg.Text)
	assert.Equal(t, []string{guardian, driver}, msg.Participants)
	_, err = r.Send(ctx, c, "buenos días", driver, guardian)
	require.NoError(t, err)

	assert.Len(t, store.AppMessages.All(), 2)
	assert.Empty(t, store.EmergencyMessages.All())
	assert.Equal(t, notifications{"postulacion/app-1", "postulacion/app-1"}, *n)

	for _, actor := range []struct {
		id   string
		role data.Role
	}{{guardian, data.RoleGuardian}, {driver, data.RoleDriver}} {
		v, err := r.Open(ctx, data.ChannelApplication, "app-1", actor.id, actor.role)
		require.NoError(t, err)
		require.Len(t, v.Messages, 2)
		assert.Equal(t, "hola", v.Messages[0].Text)
	}

	_, err = r.Open(ctx, data.ChannelApplication, "app-1", stranger, data.RoleGuardian)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendSilentNoOps(t *testing.T) {
	r, store, n := newRouter(t)
	ctx := context.Background()
	c, err := r.Conversation(ctx, data.ChannelApplication, "app-1")
	require.NoError(t, err)

	cases := []struct{ text, sender, receiver string }{
		{"   ", guardian, driver},
		{"hola", guardian, ""},
		{"hola", stranger, driver},
		{"hola", guardian, stranger},
		{"hola", guardian, guardian},
	}
	for _, tc := range cases {
		msg, err := r.Send(ctx, c, tc.text, tc.sender, tc.receiver)
		require.NoError(t, err)
		assert.Nil(t, msg)
	}
	assert.Empty(t, store.AppMessages.All())
	assert.Empty(t, *n)
}

func TestSendStoreError(t *testing.T) {
	r, store, _ := newRouter(t)
	store.AppMessages.Err = assert.AnError
	c, err := r.Conversation(context.Background(), data.ChannelApplication, "app-1")
	require.NoError(t, err)

	_, err = r.Send(context.Background(), c, "hola", guardian, driver)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestConversationErrors(t *testing.T) {
	r, _, _ := newRouter(t)
	ctx := context.Background()
	_, err := r.Conversation(ctx, data.ChannelApplication, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Conversation(ctx, data.ChannelEmergency, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Conversation(ctx, "otro", "app-1")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func seat(t *testing.T, store *datatest.Store) {
	t.Helper()
	require.NoError(t, store.UpsertPassenger(context.Background(), &data.PassengerListEntry{
		ApplicationID: "app-1", DriverID: driver, GuardianID: guardian, ChildID: child, VanPlate: "ABCD12",
	}))
}

func TestOpenEmergencyChatDeduplicates(t *testing.T) {
	r, store, _ := newRouter(t)
	ctx := context.Background()
	seat(t, store)

	first, created, err := r.OpenEmergencyChat(ctx, driver, child)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Tomás Rojas", first.ChildName)
	assert.Equal(t, "ABCD12", first.VanPlate)

	second, created, err := r.OpenEmergencyChat(ctx, driver, "22.222.222-2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.Emergencies, 1)

	require.Len(t, store.Alerts, 2)
	for _, a := range store.Alerts {
		assert.Equal(t, data.AlertEmergency, a.Kind)
		assert.Equal(t, guardian, a.RecipientID)
		assert.Equal(t, "Problema urgente con su hijo Tomás Rojas", a.Description)
		assert.Equal(t, "/chat-urgencia", a.TargetRoute)
		assert.Equal(t, first.ID, a.RouteParams["idChat"])
		assert.Equal(t, "ABCD12", a.VanPlate)
	}
}

func TestOpenEmergencyChatKeepsFirstOpenTime(t *testing.T) {
	r, store, _ := newRouter(t)
	ctx := context.Background()
	seat(t, store)

	openedAt := time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return openedAt }
	first, _, err := r.OpenEmergencyChat(ctx, driver, child)
	require.NoError(t, err)
	assert.Equal(t, openedAt, store.Emergencies[first.ID].CreatedAt)

	r.now = func() time.Time { return openedAt.Add(time.Hour) }
	_, created, err := r.OpenEmergencyChat(ctx, driver, child)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, openedAt, store.Emergencies[first.ID].CreatedAt)
}

func TestEmergencyConversationFlow(t *testing.T) {
	r, store, n := newRouter(t)
	ctx := context.Background()
	seat(t, store)
	c, _, err := r.OpenEmergencyChat(ctx, driver, child)
	require.NoError(t, err)

	_, err = r.Send(ctx, c, "¿Tomás está bien?", guardian, driver)
	require.NoError(t, err)
	assert.Len(t, store.EmergencyMessages.All(), 1)
	assert.Empty(t, store.AppMessages.All())
	assert.Equal(t, notifications{"urgencia/" + c.ID}, *n)

	v, err := r.Open(ctx, data.ChannelEmergency, c.ID, driver, data.RoleDriver)
	require.NoError(t, err)
	assert.Equal(t, guardian, v.Receiver.ID)
	require.Len(t, v.Messages, 1)
}

func TestOpenEmergencyChatRequiresPassenger(t *testing.T) {
	r, store, _ := newRouter(t)
	ctx := context.Background()

	_, _, err := r.OpenEmergencyChat(ctx, driver, child)
	assert.ErrorIs(t, err, ErrNotPassenger)
	_, _, err = r.OpenEmergencyChat(ctx, driver, "45-0")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.Emergencies)
	assert.Empty(t, store.Alerts)
}
