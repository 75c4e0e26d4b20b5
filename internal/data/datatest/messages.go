package datatest

import (
	"context"
	"slices"
	"sync"

	"github.com/PaulBabatuyi/furgo/internal/data"
)

// Messages is an in-memory message collection.
type Messages struct {
	mu   sync.Mutex
	msgs []data.ChatMessage

	// Err, when set, fails every call.
	Err error
}

// NewMessages returns an empty collection.
func NewMessages() *Messages {
	return &Messages{}
}

func (m *Messages) SaveMessage(_ context.Context, msg *data.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	msg.ID = data.NewID()
	m.msgs = append(m.msgs, *msg)
	return nil
}

// ListMessages returns the conversation in reverse insertion order so
// callers that forget to sort are caught by tests.
func (m *Messages) ListMessages(_ context.Context, conversationID string) ([]*data.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*data.ChatMessage
	for i := len(m.msgs) - 1; i >= 0; i-- {
		if m.msgs[i].ConversationID == conversationID {
			msg := m.msgs[i]
			out = append(out, &msg)
		}
	}
	return out, nil
}

// All returns every stored message in insertion order.
func (m *Messages) All() []data.ChatMessage {
	return m.clone()
}

func (m *Messages) clone() []data.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.msgs)
}

func (m *Messages) reset(msgs []data.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = msgs
}
