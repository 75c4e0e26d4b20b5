// Package alerts publishes typed alert records and lists them for their
// recipients, scoped to the van plates each recipient knows about.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/normalize"
)

// MaxListed is the most alerts ListFor returns.
const MaxListed = 10

// fetchWindow is how many alerts are read before plate filtering, so
// that filtered-out alerts do not starve the listed ones.
const fetchWindow = 50

var (
	// ErrInvalid is returned for alerts missing a kind or recipient.
	ErrInvalid = errors.New("invalid alert")
	// ErrNotFound is returned when marking an alert the recipient does not have.
	ErrNotFound = errors.New("alert not found")
	// ErrForbidden is returned when broadcasting for a van the driver does not own.
	ErrForbidden = errors.New("van does not belong to driver")
)

// BroadcastKinds are the kinds a driver may send to a van's guardians.
var BroadcastKinds = []data.AlertKind{
	data.AlertTraffic,
	data.AlertVehicle,
	data.AlertChildIssue,
	data.AlertSchoolDelay,
}

// Store is the persistence the dispatcher needs.
type Store interface {
	InsertAlert(ctx context.Context, a *data.Alert) error
	ListRecentAlerts(ctx context.Context, recipientID string, limit int64) ([]*data.Alert, error)
	ListAlertsByRecipient(ctx context.Context, recipientID string) ([]*data.Alert, error)
	MarkAlertRead(ctx context.Context, id, recipientID string) error

	ListVehicles(ctx context.Context, driverID string) ([]*data.Vehicle, error)
	ListPassengersByGuardian(ctx context.Context, guardianID string) ([]*data.PassengerListEntry, error)
	ListPassengersByPlate(ctx context.Context, plate string) ([]*data.PassengerListEntry, error)
}

// Dispatcher is the AlertDispatcher.
type Dispatcher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Dispatcher.
func New(store Store, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, logger: logger.With("component", "alerts"), now: time.Now}
}

// Publish stores a new unread alert.
func (d *Dispatcher) Publish(ctx context.Context, a *data.Alert) error {
	if a.Kind == "" || a.RecipientID == "" {
		return ErrInvalid
	}
	a.VanPlate = normalize.Plate(a.VanPlate)
	a.CreatedAt = d.now()
	a.Read = false
	if err := d.store.InsertAlert(ctx, a); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	d.logger.Info("alert published", "kind", a.Kind, "recipient_id", a.RecipientID, "plate", a.VanPlate)
	return nil
}

// ListFor returns the recipient's alerts for knownPlates, newest first
// and at most MaxListed. Alerts without a plate are always included.
// When the ordered query fails the equality-only query is used instead.
// It has no server order, so it reads every alert of the recipient and
// ordering and the cap are applied here.
func (d *Dispatcher) ListFor(ctx context.Context, recipientID string, knownPlates []string) ([]*data.Alert, error) {
	found, err := d.store.ListRecentAlerts(ctx, recipientID, fetchWindow)
	if err != nil {
		d.logger.Warn("ordered alert query failed, using fallback", "recipient_id", recipientID, "error", err)
		found, err = d.store.ListAlertsByRecipient(ctx, recipientID)
		if err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
	}

	plates := make(map[string]bool, len(knownPlates))
	for _, p := range knownPlates {
		plates[normalize.Plate(p)] = true
	}
	out := slices.DeleteFunc(found, func(a *data.Alert) bool {
		return a.VanPlate != "" && !plates[a.VanPlate]
	})
	slices.SortStableFunc(out, func(a, b *data.Alert) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > MaxListed {
		out = out[:MaxListed]
	}
	return out, nil
}

// KnownPlates returns the plates a user may see alerts for: a driver's
// own vehicles, or the vans carrying a guardian's children.
func (d *Dispatcher) KnownPlates(ctx context.Context, userID string, role data.Role) ([]string, error) {
	var plates []string
	switch role {
	case data.RoleDriver:
		vehicles, err := d.store.ListVehicles(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list vehicles: %w", err)
		}
		for _, v := range vehicles {
			plates = append(plates, v.Plate)
		}
	case data.RoleGuardian:
		seats, err := d.store.ListPassengersByGuardian(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list passengers: %w", err)
		}
		for _, s := range seats {
			plates = append(plates, s.VanPlate)
		}
	}
	slices.Sort(plates)
	return slices.Compact(plates), nil
}

// Broadcast sends an alert about plate to every guardian with a child on
// that van and returns how many alerts were stored.
func (d *Dispatcher) Broadcast(ctx context.Context, driverID, plate string, kind data.AlertKind, description string) (int, error) {
	plate = normalize.Plate(plate)
	description = strings.TrimSpace(description)
	if !slices.Contains(BroadcastKinds, kind) || description == "" || plate == "" {
		return 0, ErrInvalid
	}

	vehicles, err := d.store.ListVehicles(ctx, driverID)
	if err != nil {
		return 0, fmt.Errorf("list vehicles: %w", err)
	}
	if !slices.ContainsFunc(vehicles, func(v *data.Vehicle) bool { return v.Plate == plate }) {
		return 0, ErrForbidden
	}

	seats, err := d.store.ListPassengersByPlate(ctx, plate)
	if err != nil {
		return 0, fmt.Errorf("list passengers: %w", err)
	}
	var guardians []string
	for _, s := range seats {
		if s.DriverID == driverID && s.GuardianID != "" {
			guardians = append(guardians, s.GuardianID)
		}
	}
	slices.Sort(guardians)
	guardians = slices.Compact(guardians)

	sent := 0
	var errs []error
	for _, g := range guardians {
		err := d.Publish(ctx, &data.Alert{
			Kind:        kind,
			Description: description,
			RecipientID: g,
			SenderID:    driverID,
			VanPlate:    plate,
		})
		if err != nil {
			d.logger.Error("alert delivery failed", "recipient_id", g, "plate", plate, "error", err)
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// MarkRead flags one of the recipient's alerts as read.
func (d *Dispatcher) MarkRead(ctx context.Context, alertID, recipientID string) error {
	err := d.store.MarkAlertRead(ctx, alertID, recipientID)
	if errors.Is(err, data.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
