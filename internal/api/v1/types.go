package v1

import "time"

// Session describes the authenticated user.
type Session struct {
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	DisplayName string    `json:"displayName"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Empty struct{}

type RegisterRequest struct {
	RUT       string `json:"rut"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type RegisterResponse struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Document carries a file as base64. On reads an empty Base64 means the
// stored copy could not be decrypted.
type Document struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
	FileName string `json:"fileName,omitempty"`
}

type ScheduleDay struct {
	DayID     string `json:"dayId"`
	Label     string `json:"label"`
	Attends   bool   `json:"attends"`
	EntryTime string `json:"entryTime,omitempty"`
	ExitTime  string `json:"exitTime,omitempty"`
}

type Child struct {
	RUT            string        `json:"rut"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	BirthDate      string        `json:"birthDate"`
	Age            int           `json:"age"`
	Schedule       []ScheduleDay `json:"schedule"`
	MedicalNotes   string        `json:"medicalNotes,omitempty"`
	HasMedicalFile bool          `json:"hasMedicalFile"`
}

type SaveChildRequest struct {
	Child       Child     `json:"child"`
	MedicalFile *Document `json:"medicalFile,omitempty"`
}

type SaveChildResponse struct {
	Child Child `json:"child"`
}

type ListChildrenResponse struct {
	Children []Child `json:"children"`
}

type Tutor struct {
	ID        string    `json:"id,omitempty"`
	RUT       string    `json:"rut"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	BirthDate string    `json:"birthDate,omitempty"`
	Age       int       `json:"age"`
	Address   string    `json:"address"`
	Front     *Document `json:"front,omitempty"`
	Back      *Document `json:"back,omitempty"`
}

type SaveTutorRequest struct {
	Tutor Tutor `json:"tutor"`
}

type SaveTutorResponse struct {
	ID string `json:"id"`
}

type ListTutorsResponse struct {
	Tutors []Tutor `json:"tutors"`
}

type SaveVehicleRequest struct {
	Plate string    `json:"plate"`
	Model string    `json:"model"`
	Year  int       `json:"year"`
	Photo *Document `json:"photo,omitempty"`
}

type SaveVehicleResponse struct {
	ID    string `json:"id"`
	Plate string `json:"plate"`
}

type Van struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	School   string    `json:"school"`
	Commune  string    `json:"commune"`
	Price    int64     `json:"price"`
	Plate    string    `json:"plate"`
	DriverID string    `json:"driverId"`
	Photo    *Document `json:"photo,omitempty"`
}

type PublishVanRequest struct {
	Name    string    `json:"name"`
	School  string    `json:"school"`
	Commune string    `json:"commune"`
	Price   int64     `json:"price"`
	Plate   string    `json:"plate"`
	Photo   *Document `json:"photo,omitempty"`
}

type PublishVanResponse struct {
	Van Van `json:"van"`
}

type ListVansResponse struct {
	Vans []Van `json:"vans"`
}

type GetMedicalFileRequest struct {
	ChildRUT string `json:"childRut"`
}

type GetMedicalFileResponse struct {
	ChildName    string    `json:"childName"`
	MedicalNotes string    `json:"medicalNotes,omitempty"`
	File         *Document `json:"file,omitempty"`
}

type Application struct {
	ID            string `json:"id"`
	GuardianID    string `json:"guardianId"`
	DriverID      string `json:"driverId"`
	ChildID       string `json:"childId"`
	ChildRecordID string `json:"childRecordId"`
	VanListingID  string `json:"vanListingId"`
	VanPlate      string `json:"vanPlate"`
	School        string `json:"school"`
	VanName       string `json:"vanName"`
	Commune       string `json:"commune"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	AcceptedAt    string `json:"acceptedAt,omitempty"`
}

type SubmitApplicationRequest struct {
	ChildRUT      string `json:"childRut"`
	ChildRecordID string `json:"childRecordId,omitempty"`
	VanListingID  string `json:"vanListingId"`
}

type SubmitApplicationResponse struct {
	Application Application `json:"application"`
}

type ApplicationRef struct {
	ApplicationID string `json:"applicationId"`
}

type Passenger struct {
	ApplicationID string `json:"applicationId"`
	GuardianID    string `json:"guardianId"`
	GuardianName  string `json:"guardianName"`
	ChildID       string `json:"childId"`
	ChildName     string `json:"childName"`
	VanPlate      string `json:"vanPlate"`
	School        string `json:"school"`
	VanName       string `json:"vanName"`
	AcceptedAt    string `json:"acceptedAt"`
	Status        string `json:"status"`
}

type AcceptApplicationResponse struct {
	Passenger Passenger `json:"passenger"`
}

type ListApplicationsRequest struct {
	Status string `json:"status,omitempty"`
}

type ListApplicationsResponse struct {
	Applications []Application `json:"applications"`
}

type Validation struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type ApplicationHistoryResponse struct {
	Validations []Validation `json:"validations"`
}

type ListPassengersRequest struct {
	Plate string `json:"plate"`
}

type ListPassengersResponse struct {
	Passengers []Passenger `json:"passengers"`
}

// ConversationRef names a conversation. Channel is "postulacion" or
// "urgencia".
type ConversationRef struct {
	Channel        string `json:"channel"`
	ConversationID string `json:"conversationId"`
}

type Message struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	SenderID     string   `json:"senderId"`
	ReceiverID   string   `json:"receiverId"`
	Participants []string `json:"participants"`
	Timestamp    string   `json:"timestamp"`
}

// ConversationSnapshot is the full visible state of a conversation.
type ConversationSnapshot struct {
	Channel        string    `json:"channel"`
	ConversationID string    `json:"conversationId"`
	ReceiverID     string    `json:"receiverId"`
	ReceiverName   string    `json:"receiverName"`
	ChildID        string    `json:"childId,omitempty"`
	ChildName      string    `json:"childName,omitempty"`
	Status         string    `json:"status,omitempty"`
	Emergency      bool      `json:"emergency"`
	Messages       []Message `json:"messages"`
}

type SendMessageRequest struct {
	Channel        string `json:"channel"`
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

// SendMessageResponse has Sent false when the message was dropped.
type SendMessageResponse struct {
	Sent    bool     `json:"sent"`
	Message *Message `json:"message,omitempty"`
}

type OpenEmergencyChatRequest struct {
	ChildRUT string `json:"childRut"`
}

type OpenEmergencyChatResponse struct {
	ConversationID string `json:"conversationId"`
	Created        bool   `json:"created"`
	VanPlate       string `json:"vanPlate"`
}

type BroadcastAlertRequest struct {
	Plate       string `json:"plate"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

type BroadcastAlertResponse struct {
	Delivered int `json:"delivered"`
}

type Alert struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Description string            `json:"description"`
	SenderID    string            `json:"senderId,omitempty"`
	TargetRoute string            `json:"targetRoute,omitempty"`
	RouteParams map[string]string `json:"routeParams,omitempty"`
	VanPlate    string            `json:"vanPlate,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	Read        bool              `json:"read"`
}

type ListAlertsResponse struct {
	Alerts []Alert `json:"alerts"`
}

type MarkAlertReadRequest struct {
	AlertID string `json:"alertId"`
}

// GetEmail lets the rate limiter key unauthenticated calls by account.
func (r *RegisterRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

func (r *LoginRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}
