// Package chat routes messages between the two parties of a conversation.
// Application conversations hang off a postulación; emergency
// conversations are opened by a driver about one child.
package chat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/normalize"
	"github.com/PaulBabatuyi/furgo/internal/workflow"
)

var (
	// ErrNotFound is returned for unknown conversations or children.
	ErrNotFound = errors.New("conversation not found")
	// ErrUnknownChannel is returned for a channel other than postulacion or urgencia.
	ErrUnknownChannel = errors.New("unknown chat channel")
	// ErrNotParticipant is returned when the actor is not one of the two parties.
	ErrNotParticipant = errors.New("not a participant of this conversation")
	// ErrNotPassenger is returned when a driver contacts a child not on their list.
	ErrNotPassenger = errors.New("child is not on the driver's passenger list")
)

// Store is the persistence the router needs.
type Store interface {
	workflow.ResolverStore
	GetApplication(ctx context.Context, id string) (*data.Application, error)
	GetEmergencyChat(ctx context.Context, id string) (*data.EmergencyChat, error)
	FindOrCreateEmergencyChat(ctx context.Context, c *data.EmergencyChat) (*data.EmergencyChat, bool, error)
	FindPassengerByChild(ctx context.Context, driverID, childID string) (*data.PassengerListEntry, error)
	GetChild(ctx context.Context, id string) (*data.Child, error)
	GetUserByID(ctx context.Context, id string) (*data.User, error)
}

// MessageStore is one message collection.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *data.ChatMessage) error
	ListMessages(ctx context.Context, conversationID string) ([]*data.ChatMessage, error)
}

// Publisher stores alerts.
type Publisher interface {
	Publish(ctx context.Context, a *data.Alert) error
}

// Notifier is told after a conversation gained a message.
type Notifier interface {
	Notify(channel data.Channel, conversationID string)
}

// Conversation is the two-party view of an application or emergency chat.
// DriverID may be empty for application conversations whose driver could
// not be resolved.
type Conversation struct {
	ID         string
	Channel    data.Channel
	GuardianID string
	DriverID   string
	ChildID    string
	ChildName  string
	VanPlate   string
	Status     string
	Emergency  bool
}

// Members returns the sorted participant pair.
func (c *Conversation) Members() []string {
	return data.Participants(c.GuardianID, c.DriverID)
}

// Party is the other side of a conversation as seen by the actor.
type Party struct {
	ID   string
	Name string
}

// Router is the ChatRouter.
type Router struct {
	store     Store
	app       MessageStore
	emergency MessageStore
	alerts    Publisher
	notifier  Notifier
	resolve   *workflow.Resolver
	logger    *slog.Logger
	now       func() time.Time
}

// New returns a Router. appMsgs and emergencyMsgs back the two channels.
func New(store Store, appMsgs, emergencyMsgs MessageStore, alerts Publisher, logger *slog.Logger) *Router {
	return &Router{
		store:     store,
		app:       appMsgs,
		emergency: emergencyMsgs,
		alerts:    alerts,
		resolve:   workflow.NewResolver(store),
		logger:    logger.With("component", "chat"),
		now:       time.Now,
	}
}

// SetNotifier installs the change listener. It must be called before the
// router is shared.
func (r *Router) SetNotifier(n Notifier) { r.notifier = n }

func (r *Router) messages(ch data.Channel) (MessageStore, error) {
	switch ch {
	case data.ChannelApplication:
		return r.app, nil
	case data.ChannelEmergency:
		return r.emergency, nil
	}
	return nil, ErrUnknownChannel
}

// Conversation loads the conversation id on channel.
func (r *Router) Conversation(ctx context.Context, ch data.Channel, id string) (*Conversation, error) {
	switch ch {
	case data.ChannelApplication:
		app, err := r.store.GetApplication(ctx, id)
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("get application: %w", err)
		}
		driverID, err := r.resolve.Driver(ctx, app)
		if err != nil {
			return nil, err
		}
		return &Conversation{
			ID:         app.ID,
			Channel:    ch,
			GuardianID: app.GuardianID,
			DriverID:   driverID,
			ChildID:    app.ChildID,
			VanPlate:   app.VanPlate,
			Status:     string(app.Status),
			Emergency:  app.Kind == data.KindEmergency,
		}, nil
	case data.ChannelEmergency:
		c, err := r.store.GetEmergencyChat(ctx, id)
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("get emergency chat: %w", err)
		}
		return emergencyConversation(c), nil
	}
	return nil, ErrUnknownChannel
}

func emergencyConversation(c *data.EmergencyChat) *Conversation {
	return &Conversation{
		ID:         c.ID,
		Channel:    data.ChannelEmergency,
		GuardianID: c.GuardianID,
		DriverID:   c.DriverID,
		ChildID:    c.ChildID,
		ChildName:  c.ChildName,
		Status:     c.Status,
		Emergency:  true,
	}
}

// ResolveParticipants returns who the actor is talking to. In application
// chats a driver talks to the guardian and anyone else to the driver; in
// emergency chats it is whichever party the actor is not. The returned ID
// is empty when the other side cannot be resolved.
func (r *Router) ResolveParticipants(ctx context.Context, c *Conversation, actorID string, role data.Role) Party {
	var id string
	switch c.Channel {
	case data.ChannelApplication:
		if role == data.RoleDriver {
			id = c.GuardianID
		} else {
			id = c.DriverID
		}
	case data.ChannelEmergency:
		switch actorID {
		case c.DriverID:
			id = c.GuardianID
		case c.GuardianID:
			id = c.DriverID
		}
	}
	if id == "" {
		return Party{}
	}
	name := id
	if u, err := r.store.GetUserByID(ctx, id); err == nil && u.DisplayName() != "" {
		name = u.DisplayName()
	}
	return Party{ID: id, Name: name}
}

// Authorize reports whether actorID is one of the conversation's parties.
func Authorize(c *Conversation, actorID string) bool {
	return actorID != "" && slices.Contains(c.Members(), actorID)
}

// FilterVisible yields the messages between actorID and receiverID in
// timestamp order. A message is visible when its sender and receiver are
// the pair in either direction, or when it was sent by the system and its
// participants include both. The sequence can be ranged over repeatedly.
func FilterVisible(all []*data.ChatMessage, actorID, receiverID string) iter.Seq[*data.ChatMessage] {
	sorted := slices.Clone(all)
	slices.SortStableFunc(sorted, func(a, b *data.ChatMessage) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return func(yield func(*data.ChatMessage) bool) {
		for _, m := range sorted {
			if visible(m, actorID, receiverID) && !yield(m) {
				return
			}
		}
	}
}

func visible(m *data.ChatMessage, actorID, receiverID string) bool {
	if actorID == "" || receiverID == "" {
		return false
	}
	if m.SenderID == actorID && m.ReceiverID == receiverID ||
		m.SenderID == receiverID && m.ReceiverID == actorID {
		return true
	}
	return m.SenderID == data.SystemSender &&
		slices.Contains(m.Participants, actorID) &&
		slices.Contains(m.Participants, receiverID)
}

// View is what a party sees when opening a conversation.
type View struct {
	Conversation *Conversation
	Receiver     Party
	Messages     []*data.ChatMessage
}

// Open loads a conversation for actorID and returns the visible messages.
// Non-participants get ErrNotParticipant.
func (r *Router) Open(ctx context.Context, ch data.Channel, id, actorID string, role data.Role) (*View, error) {
	c, err := r.Conversation(ctx, ch, id)
	if err != nil {
		return nil, err
	}
	if !Authorize(c, actorID) {
		r.logger.Warn("conversation access denied", "conversation_id", id, "channel", ch, "user_id", actorID)
		return nil, ErrNotParticipant
	}
	receiver := r.ResolveParticipants(ctx, c, actorID, role)
	msgs, err := r.Visible(ctx, c, actorID, receiver.ID)
	if err != nil {
		return nil, err
	}
	return &View{Conversation: c, Receiver: receiver, Messages: msgs}, nil
}

// Visible reads the conversation's messages and returns those the pair
// can see, oldest first.
func (r *Router) Visible(ctx context.Context, c *Conversation, actorID, receiverID string) ([]*data.ChatMessage, error) {
	store, err := r.messages(c.Channel)
	if err != nil {
		return nil, err
	}
	all, err := store.ListMessages(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return slices.Collect(FilterVisible(all, actorID, receiverID)), nil
}

// Send appends a message from senderID to receiverID. It does nothing and
// returns a nil message when the trimmed text is empty, the receiver is
// not the sender's counterpart, or the sender is not a participant.
func (r *Router) Send(ctx context.Context, c *Conversation, text, senderID, receiverID string) (*data.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" || receiverID == "" || receiverID == senderID || !Authorize(c, senderID) || !Authorize(c, receiverID) {
		return nil, nil
	}
	store, err := r.messages(c.Channel)
	if err != nil {
		return nil, err
	}
	msg := &data.ChatMessage{
		ConversationID: c.ID,
		Text:           text,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Participants:   data.Participants(senderID, receiverID),
		Timestamp:      data.Timestamp(r.now()),
	}
	if err := store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	if r.notifier != nil {
		r.notifier.Notify(c.Channel, c.ID)
	}
	return msg, nil
}

// OpenEmergencyChat returns the driver's emergency conversation about a
// child on their passenger list, creating it on first contact, and alerts
// the guardian. created reports whether the conversation is new.
func (r *Router) OpenEmergencyChat(ctx context.Context, driverID, childID string) (c *Conversation, created bool, err error) {
	childID = normalize.RUT(childID)
	child, err := r.store.GetChild(ctx, childID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("get child: %w", err)
	}
	seat, err := r.store.FindPassengerByChild(ctx, driverID, childID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, false, ErrNotPassenger
	}
	if err != nil {
		return nil, false, fmt.Errorf("find passenger: %w", err)
	}

	ec, created, err := r.store.FindOrCreateEmergencyChat(ctx, &data.EmergencyChat{
		DriverID:   driverID,
		GuardianID: child.GuardianID,
		ChildID:    child.ID,
		ChildName:  child.FullName(),
		CreatedAt:  r.now(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("open emergency chat: %w", err)
	}
	c = emergencyConversation(ec)
	c.VanPlate = seat.VanPlate

	err = r.alerts.Publish(ctx, &data.Alert{
		Kind:        data.AlertEmergency,
		Description: "Problema urgente con su hijo " + child.FullName(),
		RecipientID: child.GuardianID,
		SenderID:    driverID,
		TargetRoute: "/chat-urgencia",
		RouteParams: map[string]string{
			"idChat":       ec.ID,
			"rutConductor": driverID,
			"rutApoderado": child.GuardianID,
			"rutHijo":      child.ID,
		},
		VanPlate: seat.VanPlate,
	})
	if err != nil {
		// the conversation stays; the next contact reuses it and alerts again
		r.logger.Error("emergency alert failed", "conversation_id", ec.ID, "error", err)
		return nil, false, fmt.Errorf("publish emergency alert: %w", err)
	}
	r.logger.Info("emergency chat opened", "conversation_id", ec.ID, "driver_id", driverID, "created", created)
	return c, created, nil
}
