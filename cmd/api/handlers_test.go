package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/auth"
	"github.com/PaulBabatuyi/furgo/internal/chat"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/data/datatest"
	"github.com/PaulBabatuyi/furgo/internal/middleware"
	"github.com/PaulBabatuyi/furgo/internal/workflow"
)

const bufSize = 1024 * 1024

const (
	guardianRUT = "12345678-5"
	driverRUT   = "9876543-3"
	childRUT    = "22222222-2"
	strangerRUT = "11111111-1"
	password    = "Secreta#2024"
	plate       = "ABCD12"
)

// startServer serves the API over bufconn with the given backend.
func startServer(t *testing.T, store backend, appMsgs, emergencyMsgs chat.MessageStore) v1.FurgoClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := NewConnectionHub()
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	svc := buildServices(store, appMsgs, emergencyMsgs, tokens, hub, logger)

	limiter := middleware.NewLimiterStore(600, 100, time.Minute)
	t.Cleanup(limiter.Stop)

	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer(serverOptions(svc.sessions, limiter, logger)...)
	registerService(s, newServer(svc, hub, logger))
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return v1.NewFurgoClient(conn)
}

func newTestClient(t *testing.T) (v1.FurgoClient, *datatest.Store) {
	store := datatest.New()
	return startServer(t, store, store.AppMessages, store.EmergencyMessages), store
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func register(t *testing.T, c v1.FurgoClient, rut, email, role string) context.Context {
	t.Helper()
	resp, err := c.Register(context.Background(), &v1.RegisterRequest{
		RUT:       rut,
		FirstName: "Test",
		LastName:  role,
		Email:     email,
		Password:  password,
		Role:      role,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, rut, resp.Session.UserID)
	return withToken(context.Background(), resp.Token)
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, status.Code(err), "error: %v", err)
}

// fixture registers a guardian with one child and a driver with one
// published van.
type fixture struct {
	client   v1.FurgoClient
	store    *datatest.Store
	guardian context.Context
	driver   context.Context
	vanID    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c, store := newTestClient(t)
	return setupFixture(t, c, store)
}

func setupFixture(t *testing.T, c v1.FurgoClient, store *datatest.Store) *fixture {
	t.Helper()
	f := &fixture{client: c, store: store}
	f.guardian = register(t, c, guardianRUT, "ana@example.com", "apoderado")
	f.driver = register(t, c, driverRUT, "juan@example.com", "Conductor")

	_, err := c.SaveVehicle(f.driver, &v1.SaveVehicleRequest{Plate: "ab-cd-12", Model: "Sprinter", Year: 2020})
	require.NoError(t, err)
	pub, err := c.PublishVan(f.driver, &v1.PublishVanRequest{
		Name:    "Furgón Azul",
		School:  "Colegio Los Andes",
		Commune: "Ñuñoa",
		Price:   45000,
		Plate:   plate,
	})
	require.NoError(t, err)
	f.vanID = pub.Van.ID

	_, err = c.SaveChild(f.guardian, &v1.SaveChildRequest{Child: v1.Child{
		RUT:       childRUT,
		FirstName: "Sofía",
		LastName:  "Pérez",
		BirthDate: "2015-03-10",
		Age:       10,
		Schedule: []v1.ScheduleDay{
			{DayID: "lunes", Label: "Lunes", Attends: true, EntryTime: "08:00", ExitTime: "16:00"},
		},
	}})
	require.NoError(t, err)
	return f
}

func (f *fixture) submit(t *testing.T) v1.Application {
	t.Helper()
	resp, err := f.client.SubmitApplication(f.guardian, &v1.SubmitApplicationRequest{ChildRUT: childRUT, VanListingID: f.vanID})
	require.NoError(t, err)
	return resp.Application
}

func TestRegisterAndLogin(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	register(t, c, guardianRUT, "Ana@Example.com ", "apoderado")

	login, err := c.Login(ctx, &v1.LoginRequest{Email: "ana@example.com", Password: password})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "apoderado", login.Session.Role)

	_, err = c.Login(ctx, &v1.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	requireCode(t, err, codes.Unauthenticated)

	_, err = c.Register(ctx, &v1.RegisterRequest{
		RUT: guardianRUT, FirstName: "A", LastName: "B", Email: "otra@example.com", Password: password, Role: "apoderado",
	})
	requireCode(t, err, codes.AlreadyExists)

	_, err = c.Register(ctx, &v1.RegisterRequest{
		RUT: "12345678-9", FirstName: "A", LastName: "B", Email: "bad@example.com", Password: "short", Role: "apoderado",
	})
	requireCode(t, err, codes.InvalidArgument)
}

func TestAuthentication(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.ListVans(context.Background(), &v1.Empty{})
	requireCode(t, err, codes.Unauthenticated)

	_, err = c.ListVans(withToken(context.Background(), "garbage"), &v1.Empty{})
	requireCode(t, err, codes.Unauthenticated)

	guardian := register(t, c, guardianRUT, "ana@example.com", "apoderado")
	_, err = c.ListVans(guardian, &v1.Empty{})
	require.NoError(t, err)

	// role gates
	_, err = c.SaveVehicle(guardian, &v1.SaveVehicleRequest{Plate: plate, Model: "X", Year: 2020})
	requireCode(t, err, codes.PermissionDenied)

	_, err = c.Logout(guardian, &v1.Empty{})
	require.NoError(t, err)
	_, err = c.ListVans(guardian, &v1.Empty{})
	requireCode(t, err, codes.Unauthenticated)
}

func TestApplicationFlow(t *testing.T) {
	f := newFixture(t)
	c := f.client

	app := f.submit(t)
	assert.Equal(t, "pendiente", app.Status)
	assert.Equal(t, driverRUT, app.DriverID)
	assert.Equal(t, plate, app.VanPlate)

	pending, err := c.ListApplications(f.driver, &v1.ListApplicationsRequest{Status: "pendiente"})
	require.NoError(t, err)
	require.Len(t, pending.Applications, 1)

	ref := &v1.ApplicationRef{ApplicationID: app.ID}
	_, err = c.AcceptApplication(f.guardian, ref)
	requireCode(t, err, codes.PermissionDenied)

	accepted, err := c.AcceptApplication(f.driver, ref)
	require.NoError(t, err)
	assert.Equal(t, childRUT, accepted.Passenger.ChildID)
	assert.Equal(t, "Sofía Pérez", accepted.Passenger.ChildName)
	assert.Equal(t, plate, accepted.Passenger.VanPlate)

	// terminal: no second decision
	_, err = c.AcceptApplication(f.driver, ref)
	requireCode(t, err, codes.FailedPrecondition)
	_, err = c.RejectApplication(f.driver, ref)
	requireCode(t, err, codes.FailedPrecondition)

	seats, err := c.ListPassengers(f.driver, &v1.ListPassengersRequest{Plate: plate})
	require.NoError(t, err)
	assert.Len(t, seats.Passengers, 1)

	history, err := c.GetApplicationHistory(f.guardian, ref)
	require.NoError(t, err)
	require.Len(t, history.Validations, 1)
	assert.Equal(t, "aceptada", history.Validations[0].Status)

	// the guardian sees the approval in the application conversation
	snap, err := c.OpenConversation(f.guardian, &v1.ConversationRef{Channel: "postulacion", ConversationID: app.ID})
	require.NoError(t, err)
	assert.Equal(t, driverRUT, snap.ReceiverID)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, workflow.AcceptedText, snap.Messages[0].Text)
	assert.Equal(t, data.SystemSender, snap.Messages[0].SenderID)
}

func TestRejectApplication(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	_, err := f.client.RejectApplication(f.driver, &v1.ApplicationRef{ApplicationID: app.ID})
	require.NoError(t, err)

	seats, err := f.client.ListPassengers(f.driver, &v1.ListPassengersRequest{Plate: plate})
	require.NoError(t, err)
	assert.Empty(t, seats.Passengers)

	_, err = f.client.AcceptApplication(f.driver, &v1.ApplicationRef{ApplicationID: "missing"})
	requireCode(t, err, codes.NotFound)
}

func TestConversationMessaging(t *testing.T) {
	f := newFixture(t)
	c := f.client
	app := f.submit(t)
	ref := &v1.ConversationRef{Channel: "postulacion", ConversationID: app.ID}

	sent, err := c.SendMessage(f.driver, &v1.SendMessageRequest{Channel: ref.Channel, ConversationID: app.ID, Text: "  Hola  "})
	require.NoError(t, err)
	require.True(t, sent.Sent)
	assert.Equal(t, "Hola", sent.Message.Text)
	assert.Equal(t, guardianRUT, sent.Message.ReceiverID)

	empty, err := c.SendMessage(f.guardian, &v1.SendMessageRequest{Channel: ref.Channel, ConversationID: app.ID, Text: "   "})
	require.NoError(t, err)
	assert.False(t, empty.Sent)

	snap, err := c.OpenConversation(f.guardian, ref)
	require.NoError(t, err)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, driverRUT, snap.Messages[0].SenderID)

	stranger := register(t, c, strangerRUT, "otro@example.com", "apoderado")
	_, err = c.OpenConversation(stranger, ref)
	requireCode(t, err, codes.PermissionDenied)
	_, err = c.SendMessage(stranger, &v1.SendMessageRequest{Channel: ref.Channel, ConversationID: app.ID, Text: "hola"})
	requireCode(t, err, codes.PermissionDenied)

	_, err = c.OpenConversation(f.guardian, &v1.ConversationRef{Channel: "otro", ConversationID: app.ID})
	requireCode(t, err, codes.InvalidArgument)
}

func TestWatchConversation(t *testing.T) {
	f := newFixture(t)
	c := f.client
	app := f.submit(t)

	ctx, cancel := context.WithTimeout(f.driver, 5*time.Second)
	defer cancel()
	stream, err := c.WatchConversation(ctx, &v1.ConversationRef{Channel: "postulacion", ConversationID: app.ID})
	require.NoError(t, err)

	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Empty(t, first.Messages)
	assert.Equal(t, guardianRUT, first.ReceiverID)

	_, err = c.SendMessage(f.guardian, &v1.SendMessageRequest{Channel: "postulacion", ConversationID: app.ID, Text: "¿Hay cupo?"})
	require.NoError(t, err)

	next, err := stream.Recv()
	require.NoError(t, err)
	require.Len(t, next.Messages, 1)
	assert.Equal(t, "¿Hay cupo?", next.Messages[0].Text)
}

// hookedMessages runs afterList once, right after the next ListMessages
// read has returned.
type hookedMessages struct {
	chat.MessageStore
	mu        sync.Mutex
	afterList func()
}

func (h *hookedMessages) ListMessages(ctx context.Context, conversationID string) ([]*data.ChatMessage, error) {
	msgs, err := h.MessageStore.ListMessages(ctx, conversationID)
	h.mu.Lock()
	fn := h.afterList
	h.afterList = nil
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
	return msgs, err
}

func (h *hookedMessages) arm(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.afterList = fn
}

func TestWatchConversationSeesMessageSentDuringFirstRead(t *testing.T) {
	store := datatest.New()
	msgs := &hookedMessages{MessageStore: store.AppMessages}
	f := setupFixture(t, startServer(t, store, msgs, store.EmergencyMessages), store)
	c := f.client
	app := f.submit(t)

	sent := make(chan error, 1)
	msgs.arm(func() {
		_, err := c.SendMessage(f.guardian, &v1.SendMessageRequest{Channel: "postulacion", ConversationID: app.ID, Text: "¿Hay cupo?"})
		sent <- err
	})

	ctx, cancel := context.WithTimeout(f.driver, 5*time.Second)
	defer cancel()
	stream, err := c.WatchConversation(ctx, &v1.ConversationRef{Channel: "postulacion", ConversationID: app.ID})
	require.NoError(t, err)

	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Empty(t, first.Messages)
	require.NoError(t, <-sent)

	next, err := stream.Recv()
	require.NoError(t, err)
	require.Len(t, next.Messages, 1)
	assert.Equal(t, "¿Hay cupo?", next.Messages[0].Text)
}

func TestEmergencyChatAndAlerts(t *testing.T) {
	f := newFixture(t)
	c := f.client
	app := f.submit(t)

	// only children on the passenger list can be contacted
	_, err := c.OpenEmergencyChat(f.driver, &v1.OpenEmergencyChatRequest{ChildRUT: childRUT})
	requireCode(t, err, codes.PermissionDenied)

	_, err = c.AcceptApplication(f.driver, &v1.ApplicationRef{ApplicationID: app.ID})
	require.NoError(t, err)

	first, err := c.OpenEmergencyChat(f.driver, &v1.OpenEmergencyChatRequest{ChildRUT: "22.222.222-2"})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, plate, first.VanPlate)

	again, err := c.OpenEmergencyChat(f.driver, &v1.OpenEmergencyChatRequest{ChildRUT: childRUT})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.ConversationID, again.ConversationID)

	_, err = c.SendMessage(f.driver, &v1.SendMessageRequest{Channel: "urgencia", ConversationID: first.ConversationID, Text: "Sofía tiene fiebre"})
	require.NoError(t, err)
	snap, err := c.OpenConversation(f.guardian, &v1.ConversationRef{Channel: "urgencia", ConversationID: first.ConversationID})
	require.NoError(t, err)
	assert.True(t, snap.Emergency)
	require.Len(t, snap.Messages, 1)

	delivered, err := c.BroadcastAlert(f.driver, &v1.BroadcastAlertRequest{Plate: plate, Kind: "trafico", Description: "Taco en Providencia"})
	require.NoError(t, err)
	assert.Equal(t, 1, delivered.Delivered)

	_, err = c.BroadcastAlert(f.driver, &v1.BroadcastAlertRequest{Plate: plate, Kind: "otro", Description: "x"})
	requireCode(t, err, codes.InvalidArgument)

	alerts, err := c.ListAlerts(f.guardian, &v1.Empty{})
	require.NoError(t, err)
	kinds := map[string]int{}
	for _, a := range alerts.Alerts {
		kinds[a.Kind]++
	}
	assert.Equal(t, 2, kinds["Urgencia"])
	assert.Equal(t, 1, kinds["trafico"])

	driverAlerts, err := c.ListAlerts(f.driver, &v1.Empty{})
	require.NoError(t, err)
	require.Len(t, driverAlerts.Alerts, 1)
	assert.Equal(t, "Postulacion", driverAlerts.Alerts[0].Kind)

	_, err = c.MarkAlertRead(f.guardian, &v1.MarkAlertReadRequest{AlertID: alerts.Alerts[0].ID})
	require.NoError(t, err)
	_, err = c.MarkAlertRead(f.driver, &v1.MarkAlertReadRequest{AlertID: alerts.Alerts[0].ID})
	requireCode(t, err, codes.NotFound)
}

func TestMedicalFileRequiresPassenger(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.GetMedicalFile(f.driver, &v1.GetMedicalFileRequest{ChildRUT: childRUT})
	requireCode(t, err, codes.PermissionDenied)

	app := f.submit(t)
	_, err = f.client.AcceptApplication(f.driver, &v1.ApplicationRef{ApplicationID: app.ID})
	require.NoError(t, err)

	resp, err := f.client.GetMedicalFile(f.driver, &v1.GetMedicalFileRequest{ChildRUT: childRUT})
	require.NoError(t, err)
	assert.Equal(t, "Sofía Pérez", resp.ChildName)
	assert.Nil(t, resp.File)
}

func TestStoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn["ListListings"] = assert.AnError

	_, err := f.client.ListVans(f.guardian, &v1.Empty{})
	requireCode(t, err, codes.Internal)
	assert.NotContains(t, status.Convert(err).Message(), assert.AnError.Error())
}
