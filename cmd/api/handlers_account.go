package main

import (
	"context"

	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/registry"
)

// Register creates the account and starts a session for it.
func (s *Server) Register(ctx context.Context, req *v1.RegisterRequest) (*v1.RegisterResponse, error) {
	user, err := s.registry.Register(ctx, registry.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		RUT:       req.RUT,
		Role:      req.Role,
		Password:  req.Password,
	})
	if err != nil {
		return nil, toStatus(s.logger, "register", err)
	}

	token, sess, err := s.sessions.Issue(user)
	if err != nil {
		return nil, toStatus(s.logger, "register", err)
	}
	return &v1.RegisterResponse{Token: token, Session: sessionToWire(sess)}, nil
}

// Login authenticates a user and returns a session token.
func (s *Server) Login(ctx context.Context, req *v1.LoginRequest) (*v1.LoginResponse, error) {
	token, sess, err := s.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(s.logger, "login", err)
	}
	return &v1.LoginResponse{Token: token, Session: sessionToWire(sess)}, nil
}

// Logout revokes the caller's token.
func (s *Server) Logout(ctx context.Context, _ *v1.Empty) (*v1.Empty, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	s.sessions.Logout(sess)
	return &v1.Empty{}, nil
}

// UpdateProfile edits the caller's names, phone and address.
func (s *Server) UpdateProfile(ctx context.Context, req *v1.UpdateProfileRequest) (*v1.Empty, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	_, err = s.registry.UpdateProfile(ctx, sess.UserID, registry.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		return nil, toStatus(s.logger, "update profile", err)
	}
	return &v1.Empty{}, nil
}
