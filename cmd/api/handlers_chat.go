package main

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/chat"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/session"
)

func snapshotToWire(v *chat.View) *v1.ConversationSnapshot {
	c := v.Conversation
	out := &v1.ConversationSnapshot{
		Channel:        string(c.Channel),
		ConversationID: c.ID,
		ReceiverID:     v.Receiver.ID,
		ReceiverName:   v.Receiver.Name,
		ChildID:        c.ChildID,
		ChildName:      c.ChildName,
		Status:         c.Status,
		Emergency:      c.Emergency,
		Messages:       make([]v1.Message, 0, len(v.Messages)),
	}
	for _, m := range v.Messages {
		out.Messages = append(out.Messages, messageToWire(m))
	}
	return out
}

func (s *Server) open(ctx context.Context, sess *session.Session, ref *v1.ConversationRef) (*chat.View, error) {
	v, err := s.chat.Open(ctx, data.Channel(ref.Channel), ref.ConversationID, sess.UserID, sess.Role)
	if err != nil {
		return nil, toStatus(s.logger, "open conversation", err)
	}
	return v, nil
}

// OpenConversation returns the messages the caller can see. Only the two
// parties of the conversation may open it.
func (s *Server) OpenConversation(ctx context.Context, req *v1.ConversationRef) (*v1.ConversationSnapshot, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.open(ctx, sess, req)
	if err != nil {
		return nil, err
	}
	return snapshotToWire(v), nil
}

// SendMessage writes to the caller's counterpart in the conversation.
// Empty text and unresolved receivers are dropped with Sent false.
func (s *Server) SendMessage(ctx context.Context, req *v1.SendMessageRequest) (*v1.SendMessageResponse, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	conv, err := s.chat.Conversation(ctx, data.Channel(req.Channel), req.ConversationID)
	if err != nil {
		return nil, toStatus(s.logger, "send message", err)
	}
	if !chat.Authorize(conv, sess.UserID) {
		return nil, status.Error(codes.PermissionDenied, chat.ErrNotParticipant.Error())
	}
	receiver := s.chat.ResolveParticipants(ctx, conv, sess.UserID, sess.Role)
	msg, err := s.chat.Send(ctx, conv, req.Text, sess.UserID, receiver.ID)
	if err != nil {
		return nil, toStatus(s.logger, "send message", err)
	}
	if msg == nil {
		return &v1.SendMessageResponse{Sent: false}, nil
	}
	wire := messageToWire(msg)
	return &v1.SendMessageResponse{Sent: true, Message: &wire}, nil
}

// WatchConversation pushes the full visible snapshot of the conversation
// now and after every change, until the client goes away.
func (s *Server) WatchConversation(req *v1.ConversationRef, stream grpc.ServerStreamingServer[v1.ConversationSnapshot]) error {
	ctx := stream.Context()
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	// registered before the first read so a change landing in between
	// still signals this watcher
	ch, id := data.Channel(req.Channel), req.ConversationID
	connID, changes := s.hub.Register(ch, id)
	defer s.hub.Unregister(ch, id, connID)

	v, err := s.open(ctx, sess, req)
	if err != nil {
		return err
	}
	s.logger.Debug("watching conversation", "channel", ch, "conversation", id, "watchers", s.hub.Watchers(ch, id))

	for {
		if err := stream.Send(snapshotToWire(v)); err != nil {
			return status.Errorf(codes.Internal, "failed to send snapshot: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		}
		if v, err = s.open(ctx, sess, req); err != nil {
			return err
		}
	}
}

// OpenEmergencyChat opens or reuses the driver's emergency conversation
// about a child on their passenger list and alerts the guardian.
func (s *Server) OpenEmergencyChat(ctx context.Context, req *v1.OpenEmergencyChatRequest) (*v1.OpenEmergencyChatResponse, error) {
	sess, err := currentSession(ctx, data.RoleDriver)
	if err != nil {
		return nil, err
	}
	c, created, err := s.chat.OpenEmergencyChat(ctx, sess.UserID, req.ChildRUT)
	if err != nil {
		return nil, toStatus(s.logger, "open emergency chat", err)
	}
	return &v1.OpenEmergencyChatResponse{ConversationID: c.ID, Created: created, VanPlate: c.VanPlate}, nil
}
