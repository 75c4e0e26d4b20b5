// Package datatest provides in-memory implementations of the data stores
// for service and transport tests.
package datatest

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/PaulBabatuyi/furgo/internal/data"
)

// Store is an in-memory stand-in for data.Stores. It is safe for
// concurrent use. WithTransaction restores every collection if fn fails.
type Store struct {
	mu sync.Mutex

	Users        map[string]data.User
	Children     map[string]data.Child
	Tutors       map[string]data.Tutor
	Vehicles     map[string]data.Vehicle
	Listings     map[string]data.VanListing
	Applications map[string]data.Application
	AppVans      map[string]data.ApplicationVan
	AppStates    map[string]data.ApplicationState
	Validations  []data.ValidationRecord
	Passengers   map[string]data.PassengerListEntry
	Emergencies  map[string]data.EmergencyChat
	Alerts       map[string]data.Alert

	AppMessages       *Messages
	EmergencyMessages *Messages

	// FailOn makes the named method return the error. Checked before
	// any mutation.
	FailOn map[string]error

	// Transactions counts WithTransaction calls.
	Transactions int
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		Users:             map[string]data.User{},
		Children:          map[string]data.Child{},
		Tutors:            map[string]data.Tutor{},
		Vehicles:          map[string]data.Vehicle{},
		Listings:          map[string]data.VanListing{},
		Applications:      map[string]data.Application{},
		AppVans:           map[string]data.ApplicationVan{},
		AppStates:         map[string]data.ApplicationState{},
		Passengers:        map[string]data.PassengerListEntry{},
		Emergencies:       map[string]data.EmergencyChat{},
		Alerts:            map[string]data.Alert{},
		AppMessages:       NewMessages(),
		EmergencyMessages: NewMessages(),
		FailOn:            map[string]error{},
	}
}

func (s *Store) fail(method string) error {
	return s.FailOn[method]
}

// WithTransaction runs fn and rolls every collection back if it fails.
// Transactions do not nest and are serialized by the caller's test.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.Transactions++
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type snapshot struct {
	applications map[string]data.Application
	appVans      map[string]data.ApplicationVan
	validations  []data.ValidationRecord
	passengers   map[string]data.PassengerListEntry
	alerts       map[string]data.Alert
	appMsgs      []data.ChatMessage
	emMsgs       []data.ChatMessage
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		applications: maps.Clone(s.Applications),
		appVans:      maps.Clone(s.AppVans),
		validations:  slices.Clone(s.Validations),
		passengers:   maps.Clone(s.Passengers),
		alerts:       maps.Clone(s.Alerts),
		appMsgs:      s.AppMessages.clone(),
		emMsgs:       s.EmergencyMessages.clone(),
	}
}

func (s *Store) restore(snap snapshot) {
	s.Applications = snap.applications
	s.AppVans = snap.appVans
	s.Validations = snap.validations
	s.Passengers = snap.passengers
	s.Alerts = snap.alerts
	s.AppMessages.reset(snap.appMsgs)
	s.EmergencyMessages.reset(snap.emMsgs)
}

// Users

func (s *Store) CreateUser(_ context.Context, u *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateUser"); err != nil {
		return err
	}
	if _, ok := s.Users[u.RUT]; ok {
		return data.ErrDuplicate
	}
	for _, existing := range s.Users {
		if existing.Email == u.Email {
			return data.ErrDuplicate
		}
	}
	now := time.Now()
	u.ID = u.RUT
	u.CreatedAt, u.UpdatedAt = now, now
	s.Users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserByEmail"); err != nil {
		return nil, err
	}
	for _, u := range s.Users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserByID"); err != nil {
		return nil, err
	}
	return get(s.Users, id)
}

func (s *Store) UpdateProfile(_ context.Context, id, first, last, phone, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateProfile"); err != nil {
		return err
	}
	u, ok := s.Users[id]
	if !ok {
		return data.ErrNotFound
	}
	u.FirstName, u.LastName, u.Phone, u.Address = first, last, phone, address
	u.UpdatedAt = time.Now()
	s.Users[id] = u
	return nil
}

// Children and tutors

func (s *Store) SaveChild(_ context.Context, c *data.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SaveChild"); err != nil {
		return err
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.Children[c.ID] = *c
	return nil
}

func (s *Store) GetChild(_ context.Context, id string) (*data.Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetChild"); err != nil {
		return nil, err
	}
	return get(s.Children, id)
}

func (s *Store) ListChildren(_ context.Context, guardianID string) ([]*data.Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListChildren"); err != nil {
		return nil, err
	}
	out := filter(s.Children, func(c data.Child) bool { return c.GuardianID == guardianID })
	sort.Slice(out, func(i, j int) bool { return out[i].FirstName < out[j].FirstName })
	return out, nil
}

func (s *Store) SaveTutor(_ context.Context, t *data.Tutor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SaveTutor"); err != nil {
		return err
	}
	now := time.Now()
	t.ID, t.CreatedAt = data.NewID(), now
	for id, existing := range s.Tutors {
		if existing.GuardianID == t.GuardianID && existing.RUT == t.RUT {
			t.ID, t.CreatedAt = id, existing.CreatedAt
		}
	}
	t.UpdatedAt = now
	s.Tutors[t.ID] = *t
	return nil
}

func (s *Store) ListTutors(_ context.Context, guardianID string) ([]*data.Tutor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListTutors"); err != nil {
		return nil, err
	}
	return filter(s.Tutors, func(t data.Tutor) bool { return t.GuardianID == guardianID }), nil
}

// Vehicles and listings

func (s *Store) SaveVehicle(_ context.Context, v *data.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SaveVehicle"); err != nil {
		return err
	}
	now := time.Now()
	v.ID, v.CreatedAt = data.NewID(), now
	for id, existing := range s.Vehicles {
		if existing.DriverID == v.DriverID && existing.Plate == v.Plate {
			v.ID, v.CreatedAt = id, existing.CreatedAt
		}
	}
	v.UpdatedAt = now
	s.Vehicles[v.ID] = *v
	return nil
}

func (s *Store) GetVehicleByPlate(_ context.Context, plate string) (*data.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetVehicleByPlate"); err != nil {
		return nil, err
	}
	for _, v := range s.Vehicles {
		if v.Plate == plate {
			return &v, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Store) ListVehicles(_ context.Context, driverID string) ([]*data.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListVehicles"); err != nil {
		return nil, err
	}
	return filter(s.Vehicles, func(v data.Vehicle) bool { return v.DriverID == driverID }), nil
}

func (s *Store) CreateListing(_ context.Context, l *data.VanListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateListing"); err != nil {
		return err
	}
	l.ID = data.NewID()
	l.CreatedAt = time.Now()
	s.Listings[l.ID] = *l
	return nil
}

func (s *Store) GetListing(_ context.Context, id string) (*data.VanListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetListing"); err != nil {
		return nil, err
	}
	return get(s.Listings, id)
}

func (s *Store) ListListings(_ context.Context) ([]*data.VanListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListListings"); err != nil {
		return nil, err
	}
	out := filter(s.Listings, func(data.VanListing) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Applications

func (s *Store) CreateApplication(_ context.Context, a *data.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateApplication"); err != nil {
		return err
	}
	a.ID = data.NewID()
	s.Applications[a.ID] = *a
	return nil
}

func (s *Store) GetApplication(_ context.Context, id string) (*data.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetApplication"); err != nil {
		return nil, err
	}
	return get(s.Applications, id)
}

func (s *Store) MarkApplicationAccepted(_ context.Context, id, driverID, plate, acceptedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkApplicationAccepted"); err != nil {
		return err
	}
	a, ok := s.Applications[id]
	if !ok || a.Status != data.StatusPending {
		return data.ErrNotPending
	}
	a.Status, a.DriverID, a.VanPlate, a.AcceptedAt = data.StatusAccepted, driverID, plate, acceptedAt
	s.Applications[id] = a
	return nil
}

func (s *Store) MarkApplicationRejected(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkApplicationRejected"); err != nil {
		return err
	}
	a, ok := s.Applications[id]
	if !ok || a.Status != data.StatusPending {
		return data.ErrNotPending
	}
	a.Status = data.StatusRejected
	s.Applications[id] = a
	return nil
}

func (s *Store) ListApplicationsByDriver(_ context.Context, driverID string, status data.ApplicationStatus) ([]*data.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListApplicationsByDriver"); err != nil {
		return nil, err
	}
	out := filter(s.Applications, func(a data.Application) bool {
		return a.DriverID == driverID && (status == "" || a.Status == status)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *Store) FindApplicationVan(_ context.Context, applicationID string) (*data.ApplicationVan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindApplicationVan"); err != nil {
		return nil, err
	}
	for _, v := range s.AppVans {
		if v.ApplicationID == applicationID {
			return &v, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Store) MarkApplicationVanAccepted(_ context.Context, id, driverID, ts string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkApplicationVanAccepted"); err != nil {
		return err
	}
	v, ok := s.AppVans[id]
	if !ok {
		return nil
	}
	v.Status, v.DriverID, v.Timestamp = data.StatusAccepted, driverID, ts
	s.AppVans[id] = v
	return nil
}

func (s *Store) FindApplicationState(_ context.Context, applicationID string) (*data.ApplicationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindApplicationState"); err != nil {
		return nil, err
	}
	for _, st := range s.AppStates {
		if st.ApplicationID == applicationID {
			return &st, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Store) AppendValidation(_ context.Context, v *data.ValidationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AppendValidation"); err != nil {
		return err
	}
	v.ID = data.NewID()
	s.Validations = append(s.Validations, *v)
	return nil
}

func (s *Store) ListValidations(_ context.Context, applicationID string) ([]*data.ValidationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListValidations"); err != nil {
		return nil, err
	}
	var out []*data.ValidationRecord
	for _, v := range s.Validations {
		if v.ApplicationID == applicationID {
			out = append(out, &v)
		}
	}
	return out, nil
}

// Passengers

func (s *Store) UpsertPassenger(_ context.Context, e *data.PassengerListEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertPassenger"); err != nil {
		return err
	}
	e.ID = e.ApplicationID
	s.Passengers[e.ID] = *e
	return nil
}

func (s *Store) ListPassengersByVan(_ context.Context, driverID, plate string) ([]*data.PassengerListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListPassengersByVan"); err != nil {
		return nil, err
	}
	out := filter(s.Passengers, func(e data.PassengerListEntry) bool {
		return e.DriverID == driverID && e.VanPlate == plate
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ChildName < out[j].ChildName })
	return out, nil
}

func (s *Store) ListPassengersByPlate(_ context.Context, plate string) ([]*data.PassengerListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListPassengersByPlate"); err != nil {
		return nil, err
	}
	return filter(s.Passengers, func(e data.PassengerListEntry) bool { return e.VanPlate == plate }), nil
}

func (s *Store) ListPassengersByGuardian(_ context.Context, guardianID string) ([]*data.PassengerListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListPassengersByGuardian"); err != nil {
		return nil, err
	}
	return filter(s.Passengers, func(e data.PassengerListEntry) bool { return e.GuardianID == guardianID }), nil
}

func (s *Store) FindPassengerByChild(_ context.Context, driverID, childID string) (*data.PassengerListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindPassengerByChild"); err != nil {
		return nil, err
	}
	for _, e := range s.Passengers {
		if e.DriverID == driverID && e.ChildID == childID {
			return &e, nil
		}
	}
	return nil, data.ErrNotFound
}

// Emergency chats

func (s *Store) FindOrCreateEmergencyChat(_ context.Context, c *data.EmergencyChat) (*data.EmergencyChat, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindOrCreateEmergencyChat"); err != nil {
		return nil, false, err
	}
	for _, existing := range s.Emergencies {
		if existing.DriverID == c.DriverID && existing.GuardianID == c.GuardianID && existing.ChildID == c.ChildID {
			return &existing, false, nil
		}
	}
	created := *c
	created.ID = data.NewID()
	created.Status = "abierta"
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	s.Emergencies[created.ID] = created
	return &created, true, nil
}

func (s *Store) GetEmergencyChat(_ context.Context, id string) (*data.EmergencyChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetEmergencyChat"); err != nil {
		return nil, err
	}
	return get(s.Emergencies, id)
}

// Alerts

func (s *Store) InsertAlert(_ context.Context, a *data.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertAlert"); err != nil {
		return err
	}
	a.ID = data.NewID()
	s.Alerts[a.ID] = *a
	return nil
}

func (s *Store) ListRecentAlerts(_ context.Context, recipientID string, limit int64) ([]*data.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListRecentAlerts"); err != nil {
		return nil, err
	}
	out := filter(s.Alerts, func(a data.Alert) bool { return a.RecipientID == recipientID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListAlertsByRecipient returns matches oldest first, which is the
// opposite of the order callers must present.
func (s *Store) ListAlertsByRecipient(_ context.Context, recipientID string) ([]*data.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListAlertsByRecipient"); err != nil {
		return nil, err
	}
	out := filter(s.Alerts, func(a data.Alert) bool { return a.RecipientID == recipientID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) MarkAlertRead(_ context.Context, id, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkAlertRead"); err != nil {
		return err
	}
	a, ok := s.Alerts[id]
	if !ok || a.RecipientID != recipientID {
		return data.ErrNotFound
	}
	a.Read = true
	s.Alerts[id] = a
	return nil
}

func get[T any](m map[string]T, id string) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	return &v, nil
}

func filter[T any](m map[string]T, keep func(T) bool) []*T {
	var out []*T
	for _, v := range m {
		if keep(v) {
			out = append(out, &v)
		}
	}
	return out
}
