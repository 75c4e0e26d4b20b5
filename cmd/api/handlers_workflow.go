package main

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/data"
)

// SubmitApplication applies one of the guardian's children to a van.
func (s *Server) SubmitApplication(ctx context.Context, req *v1.SubmitApplicationRequest) (*v1.SubmitApplicationResponse, error) {
	sess, err := currentSession(ctx, data.RoleGuardian)
	if err != nil {
		return nil, err
	}
	if req.ChildRUT == "" || req.VanListingID == "" {
		return nil, status.Error(codes.InvalidArgument, "childRut and vanListingId are required")
	}
	app, err := s.workflow.Submit(ctx, sess.UserID, req.ChildRUT, req.ChildRecordID, req.VanListingID)
	if err != nil {
		return nil, toStatus(s.logger, "submit application", err)
	}
	return &v1.SubmitApplicationResponse{Application: applicationToWire(app)}, nil
}

// AcceptApplication seats the applicant on the driver's van.
func (s *Server) AcceptApplication(ctx context.Context, req *v1.ApplicationRef) (*v1.AcceptApplicationResponse, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	entry, err := s.workflow.Accept(ctx, req.ApplicationID, sess.UserID)
	if err != nil {
		return nil, toStatus(s.logger, "accept application", err)
	}
	return &v1.AcceptApplicationResponse{Passenger: passengerToWire(entry)}, nil
}

func (s *Server) RejectApplication(ctx context.Context, req *v1.ApplicationRef) (*v1.Empty, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	if err := s.workflow.Reject(ctx, req.ApplicationID, sess.UserID); err != nil {
		return nil, toStatus(s.logger, "reject application", err)
	}
	return &v1.Empty{}, nil
}

// ListApplications lists the applications addressed to the driver.
func (s *Server) ListApplications(ctx context.Context, req *v1.ListApplicationsRequest) (*v1.ListApplicationsResponse, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	apps, err := s.workflow.Applications(ctx, sess.UserID, data.ApplicationStatus(req.Status))
	if err != nil {
		return nil, toStatus(s.logger, "list applications", err)
	}
	resp := &v1.ListApplicationsResponse{Applications: make([]v1.Application, 0, len(apps))}
	for _, a := range apps {
		resp.Applications = append(resp.Applications, applicationToWire(a))
	}
	return resp, nil
}

func (s *Server) GetApplicationHistory(ctx context.Context, req *v1.ApplicationRef) (*v1.ApplicationHistoryResponse, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.workflow.History(ctx, req.ApplicationID, sess.UserID)
	if err != nil {
		return nil, toStatus(s.logger, "application history", err)
	}
	resp := &v1.ApplicationHistoryResponse{Validations: make([]v1.Validation, 0, len(records))}
	for _, r := range records {
		resp.Validations = append(resp.Validations, v1.Validation{Status: string(r.Status), Timestamp: r.Timestamp})
	}
	return resp, nil
}

// ListPassengers returns the passenger list of one of the driver's vans.
func (s *Server) ListPassengers(ctx context.Context, req *v1.ListPassengersRequest) (*v1.ListPassengersResponse, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	seats, err := s.workflow.Passengers(ctx, sess.UserID, req.Plate)
	if err != nil {
		return nil, toStatus(s.logger, "list passengers", err)
	}
	resp := &v1.ListPassengersResponse{Passengers: make([]v1.Passenger, 0, len(seats))}
	for _, e := range seats {
		resp.Passengers = append(resp.Passengers, passengerToWire(e))
	}
	return resp, nil
}
