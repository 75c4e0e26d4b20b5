// Package registry implements account, child, tutor, vehicle and van
// listing registration, including sealing uploaded documents and opening
// them again for authorized readers.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PaulBabatuyi/furgo/internal/auth"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/doccrypt"
	"github.com/PaulBabatuyi/furgo/internal/normalize"
)

var (
	// ErrDuplicate is returned when the email or RUT is already registered.
	ErrDuplicate = errors.New("email or RUT already registered")
	// ErrForbidden is returned when the actor does not own the record.
	ErrForbidden = errors.New("not allowed")
	// ErrNotFound is returned for unknown records.
	ErrNotFound = errors.New("not found")
)

// Store is the persistence the registry needs.
type Store interface {
	CreateUser(ctx context.Context, u *data.User) error
	GetUserByID(ctx context.Context, id string) (*data.User, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName, phone, address string) error

	SaveChild(ctx context.Context, c *data.Child) error
	GetChild(ctx context.Context, id string) (*data.Child, error)
	ListChildren(ctx context.Context, guardianID string) ([]*data.Child, error)

	SaveTutor(ctx context.Context, t *data.Tutor) error
	ListTutors(ctx context.Context, guardianID string) ([]*data.Tutor, error)

	SaveVehicle(ctx context.Context, v *data.Vehicle) error
	GetVehicleByPlate(ctx context.Context, plate string) (*data.Vehicle, error)
	ListVehicles(ctx context.Context, driverID string) ([]*data.Vehicle, error)

	CreateListing(ctx context.Context, l *data.VanListing) error
	ListListings(ctx context.Context) ([]*data.VanListing, error)

	FindPassengerByChild(ctx context.Context, driverID, childID string) (*data.PassengerListEntry, error)
}

// Service runs the registration flows.
type Service struct {
	store    Store
	cipher   *doccrypt.Cipher
	validate *validate
	logger   *slog.Logger
}

// New returns a Service.
func New(store Store, cipher *doccrypt.Cipher, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		cipher:   cipher,
		validate: newValidate(),
		logger:   logger.With("component", "registry"),
	}
}

// Upload is a picked file: base64 content plus its MIME type.
type Upload struct {
	Base64   string
	MimeType string
	FileName string
}

// Document is an opened EncryptedBlob. An empty Base64 means the blob
// could not be decrypted and the client should show its fallback.
type Document struct {
	Base64   string
	MimeType string
	FileName string
}

func (s *Service) seal(u *Upload, owner, salt, field string) (*data.EncryptedBlob, error) {
	if u == nil || u.Base64 == "" {
		return nil, invalid(field, "a file is required")
	}
	ct, err := s.cipher.Encrypt(u.Base64, owner, salt)
	switch {
	case errors.Is(err, doccrypt.ErrInvalidPayload):
		return nil, invalid(field, "file content is not base64")
	case err != nil:
		return nil, fmt.Errorf("encrypt %s: %w", field, err)
	}
	mime := u.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return &data.EncryptedBlob{MimeType: mime, FileName: u.FileName, CipherText: ct}, nil
}

func (s *Service) open(b *data.EncryptedBlob, owner, salt string) *Document {
	if b == nil {
		return nil
	}
	return &Document{
		Base64:   s.cipher.Decrypt(b.CipherText, owner, salt),
		MimeType: b.MimeType,
		FileName: b.FileName,
	}
}

// NewUser is a registration request.
type NewUser struct {
	FirstName string `bson:"nombres" validate:"required"`
	LastName  string `bson:"apellidos" validate:"required"`
	Email     string `bson:"correo" validate:"required,email"`
	RUT       string `bson:"rut" validate:"required,rut"`
	Role      string `bson:"rol" validate:"required"`
	Password  string `bson:"contrasena" validate:"required,password"`
}

// Register creates an account. The password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, nu NewUser) (*data.User, error) {
	nu.Email = normalize.Email(nu.Email)
	nu.RUT = normalize.RUT(nu.RUT)
	nu.FirstName = strings.TrimSpace(nu.FirstName)
	nu.LastName = strings.TrimSpace(nu.LastName)
	if err := s.validate.Struct(nu); err != nil {
		return nil, err
	}
	role, ok := data.ParseRole(nu.Role)
	if !ok {
		return nil, invalid("rol", "must be conductor or apoderado")
	}

	hash, err := auth.HashPassword(nu.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &data.User{
		RUT:       nu.RUT,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Password:  hash,
		Role:      role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, data.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID, "role", role)
	return user, nil
}

// Profile holds the editable account fields.
type Profile struct {
	FirstName string `bson:"nombres" validate:"required"`
	LastName  string `bson:"apellidos" validate:"required"`
	Phone     string `bson:"telefono" validate:"omitempty,e164"`
	Address   string `bson:"direccion"`
}

// UpdateProfile edits the acting user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p Profile) (*data.User, error) {
	p.Phone = strings.ReplaceAll(strings.TrimSpace(p.Phone), " ", "")
	if err := s.validate.Struct(p); err != nil {
		return nil, err
	}
	err := s.store.UpdateProfile(ctx, userID, strings.TrimSpace(p.FirstName), strings.TrimSpace(p.LastName), p.Phone, strings.TrimSpace(p.Address))
	if errors.Is(err, data.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.store.GetUserByID(ctx, userID)
}

// ChildInput is a child registration or edit.
type ChildInput struct {
	RUT          string
	FirstName    string
	LastName     string
	BirthDate    string
	Age          int
	Schedule     []data.ScheduleDay
	MedicalNotes string
	// MedicalFile replaces the stored file when set; nil keeps it.
	MedicalFile *Upload
}

// SaveChild registers or edits a guardian's child. Only attended days
// are stored. The medical file is sealed with the guardian's RUT.
func (s *Service) SaveChild(ctx context.Context, guardianID string, in ChildInput) (*data.Child, error) {
	child := &data.Child{
		ID:           normalize.RUT(in.RUT),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		BirthDate:    in.BirthDate,
		Age:          in.Age,
		GuardianID:   guardianID,
		MedicalNotes: strings.TrimSpace(in.MedicalNotes),
	}
	for _, d := range in.Schedule {
		if d.Attends {
			child.Schedule = append(child.Schedule, d)
		}
	}
	if err := s.validate.Struct(child); err != nil {
		return nil, err
	}

	existing, err := s.store.GetChild(ctx, child.ID)
	switch {
	case err == nil:
		if existing.GuardianID != guardianID {
			return nil, ErrForbidden
		}
		child.CreatedAt = existing.CreatedAt
		child.MedicalFile = existing.MedicalFile
	case !errors.Is(err, data.ErrNotFound):
		return nil, fmt.Errorf("get child: %w", err)
	}

	if in.MedicalFile != nil {
		blob, err := s.seal(in.MedicalFile, guardianID, doccrypt.SaltMedicalFile, "fichaMedica")
		if err != nil {
			return nil, err
		}
		child.MedicalFile = blob
	}

	if err := s.store.SaveChild(ctx, child); err != nil {
		return nil, fmt.Errorf("save child: %w", err)
	}
	return child, nil
}

// ListChildren returns a guardian's children.
func (s *Service) ListChildren(ctx context.Context, guardianID string) ([]*data.Child, error) {
	return s.store.ListChildren(ctx, guardianID)
}

// TutorInput is a tutor registration. Both ID card sides are required.
type TutorInput struct {
	RUT       string
	FirstName string
	LastName  string
	BirthDate string
	Age       int
	Address   string
	Front     *Upload
	Back      *Upload
}

// SaveTutor registers a tutor, or replaces the documents of the
// guardian's tutor with the same RUT.
func (s *Service) SaveTutor(ctx context.Context, guardianID string, in TutorInput) (*data.Tutor, error) {
	tutor := &data.Tutor{
		RUT:        normalize.RUT(in.RUT),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		BirthDate:  in.BirthDate,
		Age:        in.Age,
		Address:    strings.TrimSpace(in.Address),
		GuardianID: guardianID,
	}
	front, err := s.seal(in.Front, guardianID, doccrypt.SaltTutorID, "carnetIdentidad.frontal")
	if err != nil {
		return nil, err
	}
	back, err := s.seal(in.Back, guardianID, doccrypt.SaltTutorID, "carnetIdentidad.trasero")
	if err != nil {
		return nil, err
	}
	tutor.IDCard = data.IDCard{Front: *front, Back: *back}
	if err := s.validate.Struct(tutor); err != nil {
		return nil, err
	}

	if err := s.store.SaveTutor(ctx, tutor); err != nil {
		return nil, fmt.Errorf("save tutor: %w", err)
	}
	return tutor, nil
}

// TutorView is a tutor with opened ID card images.
type TutorView struct {
	Tutor *data.Tutor
	Front *Document
	Back  *Document
}

// ListTutors returns a guardian's tutors with their documents opened.
func (s *Service) ListTutors(ctx context.Context, guardianID string) ([]TutorView, error) {
	tutors, err := s.store.ListTutors(ctx, guardianID)
	if err != nil {
		return nil, fmt.Errorf("list tutors: %w", err)
	}
	out := make([]TutorView, 0, len(tutors))
	for _, t := range tutors {
		out = append(out, TutorView{
			Tutor: t,
			Front: s.open(&t.IDCard.Front, guardianID, doccrypt.SaltTutorID),
			Back:  s.open(&t.IDCard.Back, guardianID, doccrypt.SaltTutorID),
		})
	}
	return out, nil
}

// VehicleInput is a vehicle registration or edit.
type VehicleInput struct {
	Plate string
	Model string
	Year  int
	// Photo replaces the stored photo when set.
	Photo *Upload
}

// SaveVehicle registers or edits one of the driver's vehicles.
func (s *Service) SaveVehicle(ctx context.Context, driverID string, in VehicleInput) (*data.Vehicle, error) {
	v := &data.Vehicle{
		Plate:    normalize.Plate(in.Plate),
		Model:    strings.TrimSpace(in.Model),
		Year:     in.Year,
		DriverID: driverID,
	}
	if err := s.validate.Struct(v); err != nil {
		return nil, err
	}

	existing, err := s.store.GetVehicleByPlate(ctx, v.Plate)
	switch {
	case err == nil:
		if existing.DriverID != driverID {
			return nil, ErrForbidden
		}
		v.Photo = existing.Photo
	case !errors.Is(err, data.ErrNotFound):
		return nil, fmt.Errorf("get vehicle: %w", err)
	}

	if in.Photo != nil {
		blob, err := s.seal(in.Photo, driverID, doccrypt.SaltVehiclePhoto, "foto")
		if err != nil {
			return nil, err
		}
		v.Photo = blob
	}
	if err := s.store.SaveVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("save vehicle: %w", err)
	}
	return v, nil
}

// ListingInput is a van listing publication.
type ListingInput struct {
	Name    string
	School  string
	Commune string
	Price   int64
	Plate   string
	Photo   *Upload
}

// PublishVan publishes a listing for a vehicle the driver owns.
func (s *Service) PublishVan(ctx context.Context, driverID string, in ListingInput) (*data.VanListing, error) {
	l := &data.VanListing{
		Name:     strings.TrimSpace(in.Name),
		School:   strings.TrimSpace(in.School),
		Commune:  strings.TrimSpace(in.Commune),
		Price:    in.Price,
		Plate:    normalize.Plate(in.Plate),
		DriverID: driverID,
	}
	if err := s.validate.Struct(l); err != nil {
		return nil, err
	}

	vehicles, err := s.store.ListVehicles(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	owned := false
	for _, v := range vehicles {
		if v.Plate == l.Plate {
			owned = true
			break
		}
	}
	if !owned {
		return nil, invalid("patente", "is not one of your vehicles")
	}

	if in.Photo != nil {
		blob, err := s.seal(in.Photo, driverID, doccrypt.SaltVehiclePhoto, "foto")
		if err != nil {
			return nil, err
		}
		l.Photo = blob
	}
	if err := s.store.CreateListing(ctx, l); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	s.logger.Info("van published", "listing_id", l.ID, "plate", l.Plate)
	return l, nil
}

// VanView is a listing with its photo resolved.
type VanView struct {
	Listing *data.VanListing
	Photo   *Document
}

// ListVans returns every listing, newest first, with photos resolved.
func (s *Service) ListVans(ctx context.Context) ([]VanView, error) {
	listings, err := s.store.ListListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	out := make([]VanView, 0, len(listings))
	for _, l := range listings {
		out = append(out, VanView{Listing: l, Photo: s.VanPhoto(ctx, l)})
	}
	return out, nil
}

// VanPhoto resolves a listing's photo: its own sealed field first, then
// the photo of the vehicle with the same plate. Nil when neither exists.
func (s *Service) VanPhoto(ctx context.Context, l *data.VanListing) *Document {
	if l.Photo != nil {
		if doc := s.open(l.Photo, l.DriverID, doccrypt.SaltVehiclePhoto); doc.Base64 != "" {
			return doc
		}
	}
	v, err := s.store.GetVehicleByPlate(ctx, l.Plate)
	if err != nil {
		if !errors.Is(err, data.ErrNotFound) {
			s.logger.Warn("vehicle lookup failed", "plate", l.Plate, "error", err)
		}
		return nil
	}
	return s.open(v.Photo, v.DriverID, doccrypt.SaltVehiclePhoto)
}

// MedicalFile opens a child's medical file for the driver who carries
// the child. The result's Base64 is empty when it cannot be decrypted.
func (s *Service) MedicalFile(ctx context.Context, driverID, childID string) (*data.Child, *Document, error) {
	childID = normalize.RUT(childID)
	if _, err := s.store.FindPassengerByChild(ctx, driverID, childID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, nil, ErrForbidden
		}
		return nil, nil, fmt.Errorf("find passenger: %w", err)
	}
	child, err := s.store.GetChild(ctx, childID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get child: %w", err)
	}
	return child, s.open(child.MedicalFile, child.GuardianID, doccrypt.SaltMedicalFile), nil
}
