package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/PaulBabatuyi/furgo/internal/data"
)

// ResolverStore is what the foreign-key resolution reads.
type ResolverStore interface {
	GetListing(ctx context.Context, id string) (*data.VanListing, error)
	FindApplicationState(ctx context.Context, applicationID string) (*data.ApplicationState, error)
	FindApplicationVan(ctx context.Context, applicationID string) (*data.ApplicationVan, error)
	ListVehicles(ctx context.Context, driverID string) ([]*data.Vehicle, error)
}

// Resolver backfills the driver and plate of applications written by
// older clients, which did not always store them on the application.
type Resolver struct {
	store ResolverStore
}

// NewResolver returns a Resolver.
func NewResolver(store ResolverStore) *Resolver {
	return &Resolver{store: store}
}

// Driver resolves the driver of an application: the application itself,
// then estado_postulacion, then the van listing. "" when none has it.
func (r *Resolver) Driver(ctx context.Context, app *data.Application) (string, error) {
	if app.DriverID != "" {
		return app.DriverID, nil
	}
	st, err := r.store.FindApplicationState(ctx, app.ID)
	switch {
	case err == nil && st.DriverID != "":
		return st.DriverID, nil
	case err != nil && !errors.Is(err, data.ErrNotFound):
		return "", fmt.Errorf("find application state: %w", err)
	}
	l, err := r.listing(ctx, app.VanListingID)
	if err != nil || l == nil {
		return "", err
	}
	return l.DriverID, nil
}

// Plate resolves the van plate of an application: the application, then
// the listing, then postulacion_furgon, then the driver's only vehicle.
func (r *Resolver) Plate(ctx context.Context, app *data.Application, driverID string) (string, error) {
	if app.VanPlate != "" {
		return app.VanPlate, nil
	}
	l, err := r.listing(ctx, app.VanListingID)
	if err != nil {
		return "", err
	}
	if l != nil && l.Plate != "" {
		return l.Plate, nil
	}
	av, err := r.store.FindApplicationVan(ctx, app.ID)
	switch {
	case err == nil && av.VanPlate != "":
		return av.VanPlate, nil
	case err != nil && !errors.Is(err, data.ErrNotFound):
		return "", fmt.Errorf("find application van: %w", err)
	}
	return r.onlyVehicle(ctx, driverID)
}

func (r *Resolver) listing(ctx context.Context, id string) (*data.VanListing, error) {
	if id == "" {
		return nil, nil
	}
	l, err := r.store.GetListing(ctx, id)
	if errors.Is(err, data.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// onlyVehicle returns the plate of the driver's vehicle when there is
// exactly one; with several there is no safe choice.
func (r *Resolver) onlyVehicle(ctx context.Context, driverID string) (string, error) {
	if driverID == "" {
		return "", nil
	}
	vs, err := r.store.ListVehicles(ctx, driverID)
	if err != nil {
		return "", fmt.Errorf("list vehicles: %w", err)
	}
	if len(vs) != 1 {
		return "", nil
	}
	return vs[0].Plate, nil
}
