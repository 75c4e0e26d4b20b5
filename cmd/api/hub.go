package main

import (
	"sync"

	"github.com/PaulBabatuyi/furgo/internal/data"
)

// ConnectionHub tracks the open WatchConversation streams per conversation.
// A change is signalled on a one-slot channel so that a burst of messages
// coalesces into one snapshot for a slow watcher.
type ConnectionHub struct {
	mu       sync.RWMutex
	watchers map[string]map[int64]chan struct{}
	nextID   int64
}

// NewConnectionHub creates a new hub instance.
func NewConnectionHub() *ConnectionHub {
	return &ConnectionHub{watchers: make(map[string]map[int64]chan struct{})}
}

func conversationKey(ch data.Channel, conversationID string) string {
	return string(ch) + "/" + conversationID
}

// Register adds a watcher for the conversation and returns its id and the
// channel that is signalled on every change.
func (h *ConnectionHub) Register(ch data.Channel, conversationID string) (int64, <-chan struct{}) {
	key := conversationKey(ch, conversationID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.watchers[key]; !ok {
		h.watchers[key] = make(map[int64]chan struct{})
	}
	h.nextID++
	id := h.nextID
	c := make(chan struct{}, 1)
	h.watchers[key][id] = c
	return id, c
}

// Unregister removes a watcher.
func (h *ConnectionHub) Unregister(ch data.Channel, conversationID string, id int64) {
	key := conversationKey(ch, conversationID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.watchers[key]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(h.watchers, key)
		}
	}
}

// Notify signals every watcher of the conversation without blocking.
func (h *ConnectionHub) Notify(ch data.Channel, conversationID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.watchers[conversationKey(ch, conversationID)] {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}

// Watchers returns how many streams watch the conversation.
func (h *ConnectionHub) Watchers(ch data.Channel, conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[conversationKey(ch, conversationID)])
}
