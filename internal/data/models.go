package data

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when no document matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique index rejects an insert.
var ErrDuplicate = errors.New("already exists")

// TimestampLayout is the fixed-width UTC ISO-8601 layout used for every
// string timestamp, so lexical order equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Role is the account type of a user.
type Role string

const (
	RoleDriver   Role = "conductor"
	RoleGuardian Role = "apoderado"
)

// ParseRole accepts the role names used by older clients ("Conductor",
// "Apoderado") as well as the canonical lower-case ones.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleDriver:
		return RoleDriver, true
	case RoleGuardian:
		return RoleGuardian, true
	}
	return "", false
}

// User maps to the usuarios collection. ID is the user's RUT.
type User struct {
	ID        string    `bson:"_id"`
	RUT       string    `bson:"rut"`
	FirstName string    `bson:"nombres"`
	LastName  string    `bson:"apellidos"`
	Email     string    `bson:"correo"`
	Password  string    `bson:"contrasena"`
	Role      Role      `bson:"rol"`
	Phone     string    `bson:"telefono,omitempty"`
	Address   string    `bson:"direccion,omitempty"`
	CreatedAt time.Time `bson:"creadoEn"`
	UpdatedAt time.Time `bson:"actualizadoEn"`
}

// DisplayName is "first last", trimmed.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// EncryptedBlob is an uploaded document sealed by doccrypt. It is
// replaced wholesale on edit.
type EncryptedBlob struct {
	MimeType   string `bson:"mimeType" validate:"required"`
	FileName   string `bson:"nombreArchivo"`
	CipherText string `bson:"contenidoCifrado" validate:"required"`
}

// ScheduleDay is one weekday of a child's attendance schedule.
type ScheduleDay struct {
	DayID     string `bson:"id" validate:"required,oneof=lunes martes miercoles jueves viernes"`
	Label     string `bson:"dia"`
	Attends   bool   `bson:"asiste"`
	EntryTime string `bson:"horaEntrada" validate:"required_if=Attends true,clock"`
	ExitTime  string `bson:"horaSalida" validate:"required_if=Attends true,clock"`
}

// Child maps to the Hijos collection; ID is the child's RUT.
type Child struct {
	ID           string         `bson:"_id" validate:"required,rut"`
	FirstName    string         `bson:"nombres" validate:"required"`
	LastName     string         `bson:"apellidos" validate:"required"`
	BirthDate    string         `bson:"fechaNacimiento" validate:"required,datetime=2006-01-02"`
	Age          int            `bson:"edad" validate:"gte=0,lte=25"`
	GuardianID   string         `bson:"rutUsuario" validate:"required"`
	Schedule     []ScheduleDay  `bson:"horario" validate:"max=5,dive"`
	MedicalNotes string         `bson:"descripcionMedica,omitempty"`
	MedicalFile  *EncryptedBlob `bson:"fichaMedica,omitempty"`
	CreatedAt    time.Time      `bson:"creadoEn"`
	UpdatedAt    time.Time      `bson:"actualizadoEn"`
}

// FullName is "first last", trimmed.
func (c *Child) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IDCard holds both sides of a tutor's identity card.
type IDCard struct {
	Front EncryptedBlob `bson:"frontal"`
	Back  EncryptedBlob `bson:"trasero"`
}

// Tutor maps to the Tutores collection.
type Tutor struct {
	ID         string    `bson:"_id"`
	RUT        string    `bson:"rut" validate:"required,rut"`
	FirstName  string    `bson:"nombres" validate:"required"`
	LastName   string    `bson:"apellidos" validate:"required"`
	BirthDate  string    `bson:"fechaNacimiento" validate:"omitempty,datetime=2006-01-02"`
	Age        int       `bson:"edad" validate:"gte=0"`
	Address    string    `bson:"direccion" validate:"required"`
	GuardianID string    `bson:"rutUsuario" validate:"required"`
	IDCard     IDCard    `bson:"carnetIdentidad"`
	CreatedAt  time.Time `bson:"creadoEn"`
	UpdatedAt  time.Time `bson:"actualizadoEn"`
}

// Vehicle maps to the Vehiculos collection.
type Vehicle struct {
	ID        string         `bson:"_id"`
	Plate     string         `bson:"patente" validate:"required,min=4,max=8,alphanum"`
	Model     string         `bson:"modelo" validate:"required"`
	Year      int            `bson:"ano" validate:"gte=1980,lte=2100"`
	DriverID  string         `bson:"rutUsuario" validate:"required"`
	Photo     *EncryptedBlob `bson:"foto,omitempty"`
	CreatedAt time.Time      `bson:"creadoEn"`
	UpdatedAt time.Time      `bson:"actualizadoEn"`
}

// VanListing maps to the Furgones collection.
type VanListing struct {
	ID        string         `bson:"_id"`
	Name      string         `bson:"nombre" validate:"required"`
	School    string         `bson:"colegio" validate:"required"`
	Commune   string         `bson:"comuna" validate:"required"`
	Price     int64          `bson:"precio" validate:"gt=0"`
	Plate     string         `bson:"patente" validate:"required"`
	DriverID  string         `bson:"rutUsuario" validate:"required"`
	Photo     *EncryptedBlob `bson:"foto,omitempty"`
	CreatedAt time.Time      `bson:"creadoEn"`
}

// ApplicationStatus is the postulación state.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pendiente"
	StatusAccepted ApplicationStatus = "aceptada"
	StatusRejected ApplicationStatus = "rechazada"
)

// KindEmergency marks an Applications document that is really an
// emergency conversation opened through the shared chat screen.
const KindEmergency = "urgencia"

// Application maps to the Postulaciones collection.
type Application struct {
	ID            string            `bson:"_id"`
	GuardianID    string            `bson:"rutUsuario"`
	DriverID      string            `bson:"rutConductor"`
	ChildID       string            `bson:"rutHijo"`
	ChildRecordID string            `bson:"idHijo"`
	VanListingID  string            `bson:"idFurgon"`
	VanPlate      string            `bson:"patenteFurgon"`
	School        string            `bson:"colegio"`
	VanName       string            `bson:"nombreFurgon"`
	Commune       string            `bson:"comuna"`
	Kind          string            `bson:"tipo,omitempty"`
	Status        ApplicationStatus `bson:"estado"`
	CreatedAt     string            `bson:"creadoEn"`
	AcceptedAt    string            `bson:"fechaAceptacion,omitempty"`
}

// PassengerListEntry maps to lista_pasajeros. ID equals ApplicationID.
type PassengerListEntry struct {
	ID            string            `bson:"_id"`
	ApplicationID string            `bson:"idPostulacion"`
	VanListingID  string            `bson:"idFurgon"`
	DriverID      string            `bson:"rutConductor"`
	GuardianID    string            `bson:"rutApoderado"`
	GuardianName  string            `bson:"nombreApoderado"`
	ChildID       string            `bson:"rutHijo"`
	ChildName     string            `bson:"nombreHijo"`
	VanPlate      string            `bson:"patenteFurgon"`
	School        string            `bson:"colegio"`
	VanName       string            `bson:"nombreFurgon"`
	AcceptedAt    string            `bson:"fechaAceptacion"`
	Status        ApplicationStatus `bson:"estado"`
}

// ApplicationVan maps to postulacion_furgon, a side table linking an
// application to the van it targets.
type ApplicationVan struct {
	ID            string            `bson:"_id"`
	ApplicationID string            `bson:"postulacionDocId"`
	VanPlate      string            `bson:"patenteFurgon"`
	DriverID      string            `bson:"rutConductor,omitempty"`
	Status        ApplicationStatus `bson:"estado"`
	Timestamp     string            `bson:"fecha,omitempty"`
}

// ApplicationState maps to estado_postulacion, which older clients used
// to record the driver of an application.
type ApplicationState struct {
	ID            string `bson:"_id"`
	ApplicationID string `bson:"idPostulacion"`
	DriverID      string `bson:"rutConductor"`
}

// ValidationRecord maps to ValidacionesPostulacion. Append-only.
type ValidationRecord struct {
	ID            string            `bson:"_id"`
	ApplicationID string            `bson:"idPostulacion"`
	Status        ApplicationStatus `bson:"estado"`
	Timestamp     string            `bson:"fecha"`
}

// SystemSender is the sender of workflow announcements.
const SystemSender = "Sistema"

// Channel selects which message collection a conversation lives in.
type Channel string

const (
	ChannelApplication Channel = "postulacion"
	ChannelEmergency   Channel = "urgencia"
)

// ChatMessage maps to MensajesChat and MensajesChatUrgencia.
type ChatMessage struct {
	ID             string   `bson:"_id"`
	ConversationID string   `bson:"idConversacion"`
	Text           string   `bson:"texto"`
	SenderID       string   `bson:"emisor"`
	ReceiverID     string   `bson:"receptor"`
	Participants   []string `bson:"participantes"`
	Timestamp      string   `bson:"fecha"`
}

// Participants returns the sorted two-party set of a and b, dropping
// empty identifiers.
func Participants(a, b string) []string {
	out := make([]string, 0, 2)
	for _, id := range []string{a, b} {
		if id != "" {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// EmergencyChat maps to ChatsUrgencia.
type EmergencyChat struct {
	ID         string    `bson:"_id"`
	DriverID   string    `bson:"rutConductor"`
	GuardianID string    `bson:"rutApoderado"`
	ChildID    string    `bson:"rutHijo"`
	ChildName  string    `bson:"nombreHijo"`
	Status     string    `bson:"estado"`
	CreatedAt  time.Time `bson:"creadoEn"`
}

// AlertKind is the type of an alert.
type AlertKind string

const (
	AlertApplication AlertKind = "Postulacion"
	AlertEmergency   AlertKind = "Urgencia"

	AlertTraffic     AlertKind = "trafico"
	AlertVehicle     AlertKind = "vehicular"
	AlertChildIssue  AlertKind = "problemas niño"
	AlertSchoolDelay AlertKind = "demora colegio"
)

// Alert maps to the Alertas collection.
type Alert struct {
	ID          string            `bson:"_id"`
	Kind        AlertKind         `bson:"tipoAlerta"`
	Description string            `bson:"descripcion"`
	RecipientID string            `bson:"rutDestinatario"`
	SenderID    string            `bson:"rutConductor,omitempty"`
	TargetRoute string            `bson:"rutaDestino,omitempty"`
	RouteParams map[string]string `bson:"parametros,omitempty"`
	CreatedAt   time.Time         `bson:"creadoEn"`
	Read        bool              `bson:"leida"`
	VanPlate    string            `bson:"patenteFurgon"`
}
