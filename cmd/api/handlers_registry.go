package main

import (
	"context"

	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/registry"
)

// SaveChild registers or edits one of the guardian's children.
func (s *Server) SaveChild(ctx context.Context, req *v1.SaveChildRequest) (*v1.SaveChildResponse, error) {
	sess, err := currentSession(ctx, data.RoleGuardian)
	if err != nil {
		return nil, err
	}
	c := req.Child
	child, err := s.registry.SaveChild(ctx, sess.UserID, registry.ChildInput{
		RUT:          c.RUT,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		BirthDate:    c.BirthDate,
		Age:          c.Age,
		Schedule:     scheduleFromWire(c.Schedule),
		MedicalNotes: c.MedicalNotes,
		MedicalFile:  uploadFromWire(req.MedicalFile),
	})
	if err != nil {
		return nil, toStatus(s.logger, "save child", err)
	}
	return &v1.SaveChildResponse{Child: childToWire(child)}, nil
}

func (s *Server) ListChildren(ctx context.Context, _ *v1.Empty) (*v1.ListChildrenResponse, error) {
	sess, err := currentSession(ctx, data.RoleGuardian)
	if err != nil {
		return nil, err
	}
	children, err := s.registry.ListChildren(ctx, sess.UserID)
	if err != nil {
		return nil, toStatus(s.logger, "list children", err)
	}
	resp := &v1.ListChildrenResponse{Children: make([]v1.Child, 0, len(children))}
	for _, c := range children {
		resp.Children = append(resp.Children, childToWire(c))
	}
	return resp, nil
}

// SaveTutor registers a tutor with both sides of the ID card.
func (s *Server) SaveTutor(ctx context.Context, req *v1.SaveTutorRequest) (*v1.SaveTutorResponse, error) {
	sess, err := currentSession(ctx, data.RoleGuardian)
	if err != nil {
		return nil, err
	}
	t := req.Tutor
	tutor, err := s.registry.SaveTutor(ctx, sess.UserID, registry.TutorInput{
		RUT:       t.RUT,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		BirthDate: t.BirthDate,
		Age:       t.Age,
		Address:   t.Address,
		Front:     uploadFromWire(t.Front),
		Back:      uploadFromWire(t.Back),
	})
	if err != nil {
		return nil, toStatus(s.logger, "save tutor", err)
	}
	return &v1.SaveTutorResponse{ID: tutor.ID}, nil
}

func (s *Server) ListTutors(ctx context.Context, _ *v1.Empty) (*v1.ListTutorsResponse, error) {
	sess, err := currentSession(ctx, data.RoleGuardian)
	if err != nil {
		return nil, err
	}
	views, err := s.registry.ListTutors(ctx, sess.UserID)
	if err != nil {
		return nil, toStatus(s.logger, "list tutors", err)
	}
	resp := &v1.ListTutorsResponse{Tutors: make([]v1.Tutor, 0, len(views))}
	for _, v := range views {
		resp.Tutors = append(resp.Tutors, v1.Tutor{
			ID:        v.Tutor.ID,
			RUT:       v.Tutor.RUT,
			FirstName: v.Tutor.FirstName,
			LastName:  v.Tutor.LastName,
			BirthDate: v.Tutor.BirthDate,
			Age:       v.Tutor.Age,
			Address:   v.Tutor.Address,
			Front:     documentToWire(v.Front),
			Back:      documentToWire(v.Back),
		})
	}
	return resp, nil
}

// SaveVehicle registers or edits one of the driver's vehicles.
func (s *Server) SaveVehicle(ctx context.Context, req *v1.SaveVehicleRequest) (*v1.SaveVehicleResponse, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	v, err := s.registry.SaveVehicle(ctx, sess.UserID, registry.VehicleInput{
		Plate: req.Plate,
		Model: req.Model,
		Year:  req.Year,
		Photo: uploadFromWire(req.Photo),
	})
	if err != nil {
		return nil, toStatus(s.logger, "save vehicle", err)
	}
	return &v1.SaveVehicleResponse{ID: v.ID, Plate: v.Plate}, nil
}

// PublishVan publishes a van listing for one of the driver's vehicles.
func (s *Server) PublishVan(ctx context.Context, req *v1.PublishVanRequest) (*v1.PublishVanResponse, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	l, err := s.registry.PublishVan(ctx, sess.UserID, registry.ListingInput{
		Name:    req.Name,
		School:  req.School,
		Commune: req.Commune,
		Price:   req.Price,
		Plate:   req.Plate,
		Photo:   uploadFromWire(req.Photo),
	})
	if err != nil {
		return nil, toStatus(s.logger, "publish van", err)
	}
	return &v1.PublishVanResponse{Van: vanToWire(registry.VanView{Listing: l, Photo: s.registry.VanPhoto(ctx, l)})}, nil
}

// ListVans returns every published van with its photo.
func (s *Server) ListVans(ctx context.Context, _ *v1.Empty) (*v1.ListVansResponse, error) {
	if _, err := currentSession(ctx); err != nil {
		return nil, err
	}
	vans, err := s.registry.ListVans(ctx)
	if err != nil {
		return nil, toStatus(s.logger, "list vans", err)
	}
	resp := &v1.ListVansResponse{Vans: make([]v1.Van, 0, len(vans))}
	for _, v := range vans {
		resp.Vans = append(resp.Vans, vanToWire(v))
	}
	return resp, nil
}

// GetMedicalFile opens the medical file of a child the driver carries.
func (s *Server) GetMedicalFile(ctx context.Context, req *v1.GetMedicalFileRequest) (*v1.GetMedicalFileResponse, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	child, doc, err := s.registry.MedicalFile(ctx, sess.UserID, req.ChildRUT)
	if err != nil {
		return nil, toStatus(s.logger, "medical file", err)
	}
	return &v1.GetMedicalFileResponse{
		ChildName:    child.FullName(),
		MedicalNotes: child.MedicalNotes,
		File:         documentToWire(doc),
	}, nil
}
