package main

import (
	"log/slog"

	"google.golang.org/grpc"

	"github.com/PaulBabatuyi/furgo/internal/alerts"
	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/chat"
	"github.com/PaulBabatuyi/furgo/internal/registry"
	"github.com/PaulBabatuyi/furgo/internal/session"
	"github.com/PaulBabatuyi/furgo/internal/workflow"
)

// services groups the core services the server dispatches to.
type services struct {
	sessions *session.Manager
	registry *registry.Service
	workflow *workflow.Workflow
	chat     *chat.Router
	alerts   *alerts.Dispatcher
}

// Server implements the Furgo service on top of the core services.
type Server struct {
	v1.UnimplementedFurgoServer
	services

	hub    *ConnectionHub
	logger *slog.Logger
}

// newServer returns a ready-to-use Server.
func newServer(svc services, hub *ConnectionHub, logger *slog.Logger) *Server {
	return &Server{services: svc, hub: hub, logger: logger}
}

// registerService registers the Furgo service on the given gRPC server.
func registerService(s *grpc.Server, srv *Server) {
	v1.RegisterFurgoServer(s, srv)
}
