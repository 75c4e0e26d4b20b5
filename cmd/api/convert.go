package main

import (
	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/registry"
	"github.com/PaulBabatuyi/furgo/internal/session"
)

func sessionToWire(s *session.Session) v1.Session {
	return v1.Session{
		UserID:      s.UserID,
		Role:        string(s.Role),
		DisplayName: s.DisplayName,
		ExpiresAt:   s.ExpiresAt,
	}
}

func uploadFromWire(d *v1.Document) *registry.Upload {
	if d == nil {
		return nil
	}
	return &registry.Upload{Base64: d.Base64, MimeType: d.MimeType, FileName: d.FileName}
}

func documentToWire(d *registry.Document) *v1.Document {
	if d == nil {
		return nil
	}
	return &v1.Document{Base64: d.Base64, MimeType: d.MimeType, FileName: d.FileName}
}

func childToWire(c *data.Child) v1.Child {
	out := v1.Child{
		RUT:            c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		BirthDate:      c.BirthDate,
		Age:            c.Age,
		MedicalNotes:   c.MedicalNotes,
		HasMedicalFile: c.MedicalFile != nil,
		Schedule:       make([]v1.ScheduleDay, 0, len(c.Schedule)),
	}
	for _, d := range c.Schedule {
		out.Schedule = append(out.Schedule, v1.ScheduleDay{
			DayID:     d.DayID,
			Label:     d.Label,
			Attends:   d.Attends,
			EntryTime: d.EntryTime,
			ExitTime:  d.ExitTime,
		})
	}
	return out
}

func scheduleFromWire(days []v1.ScheduleDay) []data.ScheduleDay {
	out := make([]data.ScheduleDay, 0, len(days))
	for _, d := range days {
		out = append(out, data.ScheduleDay{
			DayID:     d.DayID,
			Label:     d.Label,
			Attends:   d.Attends,
			EntryTime: d.EntryTime,
			ExitTime:  d.ExitTime,
		})
	}
	return out
}

func vanToWire(v registry.VanView) v1.Van {
	l := v.Listing
	return v1.Van{
		ID:       l.ID,
		Name:     l.Name,
		School:   l.School,
		Commune:  l.Commune,
		Price:    l.Price,
		Plate:    l.Plate,
		DriverID: l.DriverID,
		Photo:    documentToWire(v.Photo),
	}
}

func applicationToWire(a *data.Application) v1.Application {
	return v1.Application{
		ID:            a.ID,
		GuardianID:    a.GuardianID,
		DriverID:      a.DriverID,
		ChildID:       a.ChildID,
		ChildRecordID: a.ChildRecordID,
		VanListingID:  a.VanListingID,
		VanPlate:      a.VanPlate,
		School:        a.School,
		VanName:       a.VanName,
		Commune:       a.Commune,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
		AcceptedAt:    a.AcceptedAt,
	}
}

func passengerToWire(e *data.PassengerListEntry) v1.Passenger {
	return v1.Passenger{
		ApplicationID: e.ApplicationID,
		GuardianID:    e.GuardianID,
		GuardianName:  e.GuardianName,
		ChildID:       e.ChildID,
		ChildName:     e.ChildName,
		VanPlate:      e.VanPlate,
		School:        e.School,
		VanName:       e.VanName,
		AcceptedAt:    e.AcceptedAt,
		Status:        string(e.Status),
	}
}

func messageToWire(m *data.ChatMessage) v1.Message {
	return v1.Message{
		ID:           m.ID,
		Text:         m.Text,
		SenderID:     m.SenderID,
		ReceiverID:   m.ReceiverID,
		Participants: m.Participants,
		Timestamp:    m.Timestamp,
	}
}

func alertToWire(a *data.Alert) v1.Alert {
	return v1.Alert{
		ID:          a.ID,
		Kind:        string(a.Kind),
		Description: a.Description,
		SenderID:    a.SenderID,
		TargetRoute: a.TargetRoute,
		RouteParams: a.RouteParams,
		VanPlate:    a.VanPlate,
		CreatedAt:   a.CreatedAt,
		Read:        a.Read,
	}
}
