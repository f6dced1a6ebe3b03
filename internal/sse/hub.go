// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans live conversation events out to connected clients.
package sse

import (
	"sync"

	"github.com/samber/lo"
)

// subscriber is one open event stream of a participant.
type subscriber struct {
	ch     chan string
	userID string
}

// Hub tracks the open event streams per conversation. A user may hold several
// streams for the same conversation (multiple tabs or devices).
type Hub struct {
	subscribers map[string][]subscriber
	mu          sync.RWMutex
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string][]subscriber),
	}
}

// Subscribe opens an event stream for a user on a conversation. The returned
// channel is buffered; a slow consumer drops events instead of blocking the
// publisher.
func (h *Hub) Subscribe(conversationID, userID string) chan string {
	ch := make(chan string, 10)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[conversationID] = append(h.subscribers[conversationID],
		subscriber{ch: ch, userID: userID})
	return ch
}

// Unsubscribe removes a stream from a conversation and closes its channel.
func (h *Hub) Unsubscribe(conversationID string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[conversationID]
	h.subscribers[conversationID] = lo.Filter(subs, func(s subscriber, _ int) bool {
		return s.ch != ch
	})
	if len(h.subscribers[conversationID]) == 0 {
		delete(h.subscribers, conversationID)
	}

	close(ch)
}

// Publish sends an event to every open stream of a conversation.
func (h *Hub) Publish(conversationID, event string) {
	h.mu.RLock()
	subs := h.subscribers[conversationID]
	h.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.ch <- event:
		default:
			// Channel full, skip (prevents blocking)
		}
	}
}

// SubscriberCount returns the total number of open streams.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.subscribers), func(subs []subscriber) int {
		return len(subs)
	})
}

// ConversationCount returns the number of conversations with open streams.
func (h *Hub) ConversationCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}
