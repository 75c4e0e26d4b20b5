package main

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PaulBabatuyi/furgo/internal/alerts"
	"github.com/PaulBabatuyi/furgo/internal/chat"
	"github.com/PaulBabatuyi/furgo/internal/registry"
	"github.com/PaulBabatuyi/furgo/internal/session"
	"github.com/PaulBabatuyi/furgo/internal/workflow"
)

// toStatus converts a service error into a gRPC status. Unclassified
// errors are logged and reported as Internal without detail.
func toStatus(logger *slog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *registry.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, "invalid fields: "+fieldList(verr))
	case errors.Is(err, registry.ErrInvalid),
		errors.Is(err, alerts.ErrInvalid),
		errors.Is(err, chat.ErrUnknownChannel):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, registry.ErrDuplicate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, workflow.ErrNotFound),
		errors.Is(err, chat.ErrNotFound),
		errors.Is(err, alerts.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, registry.ErrForbidden),
		errors.Is(err, workflow.ErrForbidden),
		errors.Is(err, chat.ErrNotParticipant),
		errors.Is(err, chat.ErrNotPassenger),
		errors.Is(err, alerts.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, workflow.ErrNotPending),
		errors.Is(err, workflow.ErrEmergency),
		errors.Is(err, workflow.ErrUnresolved):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	logger.Error("request failed", "op", op, "error", err)
	return status.Error(codes.Internal, "internal error")
}

func fieldList(verr *registry.ValidationError) string {
	parts := make([]string, 0, len(verr.Fields))
	for f, msg := range verr.Fields {
		parts = append(parts, f+" "+msg)
	}
	slices.Sort(parts)
	return strings.Join(parts, "; ")
}
