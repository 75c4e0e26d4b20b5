package main

import (
	"context"

	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/data"
)

// BroadcastAlert sends a van alert to every guardian on the plate.
func (s *Server) BroadcastAlert(ctx context.Context, req *v1.BroadcastAlertRequest) (*v1.BroadcastAlertResponse, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	n, err := s.alerts.Broadcast(ctx, sess.UserID, req.Plate, data.AlertKind(req.Kind), req.Description)
	if err != nil && n == 0 {
		return nil, toStatus(s.logger, "broadcast alert", err)
	}
	if err != nil {
		s.logger.Warn("broadcast partially delivered", "plate", req.Plate, "delivered", n, "error", err)
	}
	return &v1.BroadcastAlertResponse{Delivered: n}, nil
}

// ListAlerts returns the caller's latest alerts for the vans they know.
func (s *Server) ListAlerts(ctx context.Context, _ *v1.Empty) (*v1.ListAlertsResponse, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	plates, err := s.alerts.KnownPlates(ctx, sess.UserID, sess.Role)
	if err != nil {
		return nil, toStatus(s.logger, "list alerts", err)
	}
	found, err := s.alerts.ListFor(ctx, sess.UserID, plates)
	if err != nil {
		return nil, toStatus(s.logger, "list alerts", err)
	}
	resp := &v1.ListAlertsResponse{Alerts: make([]v1.Alert, 0, len(found))}
	for _, a := range found {
		resp.Alerts = append(resp.Alerts, alertToWire(a))
	}
	return resp, nil
}

func (s *Server) MarkAlertRead(ctx context.Context, req *v1.MarkAlertReadRequest) (*v1.Empty, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.alerts.MarkRead(ctx, req.AlertID, sess.UserID); err != nil {
		return nil, toStatus(s.logger, "mark alert read", err)
	}
	return &v1.Empty{}, nil
}
