// Package workflow implements the postulación state machine:
// pendiente → aceptada | rechazada.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/normalize"
)

var (
	// ErrNotFound is returned for unknown applications, listings or children.
	ErrNotFound = errors.New("not found")
	// ErrNotPending is returned when the application was already decided.
	ErrNotPending = errors.New("application already decided")
	// ErrEmergency is returned when the target is an emergency conversation.
	ErrEmergency = errors.New("emergency conversations cannot be decided")
	// ErrUnresolved is returned when the driver or plate cannot be found.
	ErrUnresolved = errors.New("van driver or plate could not be resolved")
	// ErrForbidden is returned when the actor is not a party to the application.
	ErrForbidden = errors.New("not allowed")
)

// Chat announcement texts.
const (
	AcceptedText = "La postulación ha sido aprobada."
	RejectedText = "La postulación ha sido rechazada."
)

// Store is the persistence the workflow needs.
type Store interface {
	ResolverStore
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	ListListings(ctx context.Context) ([]*data.VanListing, error)
	GetChild(ctx context.Context, id string) (*data.Child, error)
	GetUserByID(ctx context.Context, id string) (*data.User, error)

	CreateApplication(ctx context.Context, a *data.Application) error
	GetApplication(ctx context.Context, id string) (*data.Application, error)
	MarkApplicationAccepted(ctx context.Context, id, driverID, plate, acceptedAt string) error
	MarkApplicationRejected(ctx context.Context, id string) error
	ListApplicationsByDriver(ctx context.Context, driverID string, status data.ApplicationStatus) ([]*data.Application, error)

	MarkApplicationVanAccepted(ctx context.Context, id, driverID, ts string) error
	AppendValidation(ctx context.Context, v *data.ValidationRecord) error
	ListValidations(ctx context.Context, applicationID string) ([]*data.ValidationRecord, error)

	UpsertPassenger(ctx context.Context, e *data.PassengerListEntry) error
	ListPassengersByVan(ctx context.Context, driverID, plate string) ([]*data.PassengerListEntry, error)
}

// MessageStore appends to the application chat.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *data.ChatMessage) error
}

// Publisher stores alerts.
type Publisher interface {
	Publish(ctx context.Context, a *data.Alert) error
}

// Notifier is told after a conversation gained a message.
type Notifier interface {
	Notify(channel data.Channel, conversationID string)
}

// Workflow is the ApplicationWorkflow.
type Workflow struct {
	store    Store
	messages MessageStore
	alerts   Publisher
	notifier Notifier
	resolve  *Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a Workflow. notifier may be nil.
func New(store Store, messages MessageStore, alerts Publisher, notifier Notifier, logger *slog.Logger) *Workflow {
	return &Workflow{
		store:    store,
		messages: messages,
		alerts:   alerts,
		notifier: notifier,
		resolve:  NewResolver(store),
		logger:   logger.With("component", "workflow"),
		now:      time.Now,
	}
}


// Submit creates a pendiente application of guardianID's child for a van
// listing and alerts the van's driver. childRecordID is the client's own
// reference to the child and defaults to the child's RUT.
func (w *Workflow) Submit(ctx context.Context, guardianID, childID, childRecordID, vanListingID string) (*data.Application, error) {
	childID = normalize.RUT(childID)
	child, err := w.store.GetChild(ctx, childID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, fmt.Errorf("%w: child %s", ErrNotFound, childID)
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	if child.GuardianID != guardianID {
		return nil, ErrForbidden
	}

	listing, err := w.findListing(ctx, vanListingID)
	if err != nil {
		return nil, err
	}
	driverID := listing.DriverID
	plate := listing.Plate
	if plate == "" {
		if plate, err = w.resolve.onlyVehicle(ctx, driverID); err != nil {
			return nil, err
		}
	}
	if driverID == "" || plate == "" {
		return nil, ErrUnresolved
	}
	if childRecordID == "" {
		childRecordID = child.ID
	}

	guardianName := guardianID
	if u, err := w.store.GetUserByID(ctx, guardianID); err == nil {
		guardianName = u.DisplayName()
	}

	app := &data.Application{
		GuardianID:    guardianID,
		DriverID:      driverID,
		ChildID:       child.ID,
		ChildRecordID: childRecordID,
		VanListingID:  listing.ID,
		VanPlate:      plate,
		School:        listing.School,
		VanName:       listing.Name,
		Commune:       listing.Commune,
		Status:        data.StatusPending,
		CreatedAt:     data.Timestamp(w.now()),
	}
	err = w.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := w.store.CreateApplication(ctx, app); err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		return w.alerts.Publish(ctx, &data.Alert{
			Kind:        data.AlertApplication,
			Description: guardianName + " esta postulando a tu furgon",
			RecipientID: driverID,
			TargetRoute: "/chat-validacion",
			RouteParams: map[string]string{
				"idPostulacion": app.ID,
				"rutPadre":      guardianID,
				"rutConductor":  driverID,
				"rutHijo":       child.ID,
				"patenteFurgon": plate,
			},
			VanPlate: plate,
		})
	})
	if err != nil {
		return nil, err
	}
	w.logger.Info("application submitted", "application_id", app.ID, "driver_id", driverID, "plate", plate)
	return app, nil
}

// findListing looks the listing up by id. Clients that only knew the
// plate passed it instead, so a scan by plate is the backstop.
func (w *Workflow) findListing(ctx context.Context, ref string) (*data.VanListing, error) {
	l, err := w.store.GetListing(ctx, ref)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, data.ErrNotFound) {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	all, err := w.store.ListListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan listings: %w", err)
	}
	plate := normalize.Plate(ref)
	if i := slices.IndexFunc(all, func(l *data.VanListing) bool { return l.Plate == plate }); i >= 0 {
		return all[i], nil
	}
	return nil, fmt.Errorf("%w: van listing %s", ErrNotFound, ref)
}

// decision is the part of accept and reject that precedes any write.
type decision struct {
	app      *data.Application
	driverID string
	ts       string
}

func (w *Workflow) prepare(ctx context.Context, applicationID, actingDriverID string) (*decision, error) {
	app, err := w.store.GetApplication(ctx, applicationID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app.Kind == data.KindEmergency {
		return nil, ErrEmergency
	}
	if app.Status != data.StatusPending {
		return nil, ErrNotPending
	}
	driverID, err := w.resolve.Driver(ctx, app)
	if err != nil {
		return nil, err
	}
	if driverID == "" {
		return nil, ErrUnresolved
	}
	if driverID != actingDriverID {
		return nil, ErrForbidden
	}
	return &decision{app: app, driverID: actingDriverID, ts: data.Timestamp(w.now())}, nil
}

// Accept seats the application's child on the van. Every write runs in
// one transaction; the passenger entry is written before the status flip,
// and the flip only matches a still pending application.
func (w *Workflow) Accept(ctx context.Context, applicationID, actingDriverID string) (*data.PassengerListEntry, error) {
	var entry *data.PassengerListEntry
	err := w.store.WithTransaction(ctx, func(ctx context.Context) error {
		d, err := w.prepare(ctx, applicationID, actingDriverID)
		if err != nil {
			return err
		}
		app := d.app

		plate, err := w.resolve.Plate(ctx, app, d.driverID)
		if err != nil {
			return err
		}
		if plate == "" {
			return ErrUnresolved
		}

		entry = &data.PassengerListEntry{
			ApplicationID: app.ID,
			VanListingID:  app.VanListingID,
			DriverID:      d.driverID,
			GuardianID:    app.GuardianID,
			GuardianName:  w.userName(ctx, app.GuardianID),
			ChildID:       app.ChildID,
			ChildName:     w.childName(ctx, app.ChildID),
			VanPlate:      plate,
			School:        app.School,
			VanName:       app.VanName,
			AcceptedAt:    d.ts,
			Status:        data.StatusAccepted,
		}
		if err := w.store.UpsertPassenger(ctx, entry); err != nil {
			return fmt.Errorf("upsert passenger: %w", err)
		}

		av, err := w.store.FindApplicationVan(ctx, app.ID)
		switch {
		case err == nil:
			if err := w.store.MarkApplicationVanAccepted(ctx, av.ID, d.driverID, d.ts); err != nil {
				return fmt.Errorf("mark application van: %w", err)
			}
		case !errors.Is(err, data.ErrNotFound):
			return fmt.Errorf("find application van: %w", err)
		}

		if err := w.record(ctx, d, data.StatusAccepted, AcceptedText); err != nil {
			return err
		}
		if err := w.store.MarkApplicationAccepted(ctx, app.ID, d.driverID, plate, d.ts); err != nil {
			return statusErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.logger.Info("application accepted", "application_id", applicationID, "driver_id", actingDriverID, "plate", entry.VanPlate)
	w.notify(applicationID)
	return entry, nil
}

// Reject declines the application. The passenger list is not touched.
func (w *Workflow) Reject(ctx context.Context, applicationID, actingDriverID string) error {
	err := w.store.WithTransaction(ctx, func(ctx context.Context) error {
		d, err := w.prepare(ctx, applicationID, actingDriverID)
		if err != nil {
			return err
		}
		if err := w.record(ctx, d, data.StatusRejected, RejectedText); err != nil {
			return err
		}
		if err := w.store.MarkApplicationRejected(ctx, d.app.ID); err != nil {
			return statusErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.logger.Info("application rejected", "application_id", applicationID, "driver_id", actingDriverID)
	w.notify(applicationID)
	return nil
}

// record appends the validation entry and the system chat announcement.
func (w *Workflow) record(ctx context.Context, d *decision, status data.ApplicationStatus, text string) error {
	if err := w.store.AppendValidation(ctx, &data.ValidationRecord{
		ApplicationID: d.app.ID,
		Status:        status,
		Timestamp:     d.ts,
	}); err != nil {
		return fmt.Errorf("append validation: %w", err)
	}
	err := w.messages.SaveMessage(ctx, &data.ChatMessage{
		ConversationID: d.app.ID,
		Text:           text,
		SenderID:       data.SystemSender,
		ReceiverID:     d.app.GuardianID,
		Participants:   data.Participants(d.app.GuardianID, d.driverID),
		Timestamp:      d.ts,
	})
	if err != nil {
		return fmt.Errorf("save system message: %w", err)
	}
	return nil
}

func statusErr(err error) error {
	if errors.Is(err, data.ErrNotPending) {
		return ErrNotPending
	}
	return fmt.Errorf("update application: %w", err)
}

func (w *Workflow) notify(conversationID string) {
	if w.notifier != nil {
		w.notifier.Notify(data.ChannelApplication, conversationID)
	}
}

func (w *Workflow) userName(ctx context.Context, id string) string {
	u, err := w.store.GetUserByID(ctx, id)
	if err != nil || u.DisplayName() == "" {
		return id
	}
	return u.DisplayName()
}

func (w *Workflow) childName(ctx context.Context, id string) string {
	c, err := w.store.GetChild(ctx, id)
	if err != nil || c.FullName() == "" {
		return id
	}
	return c.FullName()
}

// Applications lists a driver's applications, optionally by status.
func (w *Workflow) Applications(ctx context.Context, driverID string, status data.ApplicationStatus) ([]*data.Application, error) {
	return w.store.ListApplicationsByDriver(ctx, driverID, status)
}

// History returns the validation trail of an application the actor is
// a party to.
func (w *Workflow) History(ctx context.Context, applicationID, actorID string) ([]*data.ValidationRecord, error) {
	app, err := w.store.GetApplication(ctx, applicationID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	driverID, err := w.resolve.Driver(ctx, app)
	if err != nil {
		return nil, err
	}
	if actorID != app.GuardianID && actorID != driverID {
		return nil, ErrForbidden
	}
	return w.store.ListValidations(ctx, applicationID)
}

// Passengers returns the passenger list of one of the driver's vans.
func (w *Workflow) Passengers(ctx context.Context, driverID, plate string) ([]*data.PassengerListEntry, error) {
	return w.store.ListPassengersByVan(ctx, driverID, normalize.Plate(plate))
}
