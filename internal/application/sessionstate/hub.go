package sessionstate

import (
	"sync"

	"brochure/internal/domain/session"
)

// subscriberBuffer bounds how far a subscriber can fall behind before events are dropped.
const subscriberBuffer = 4

// Hub fans out flag changes to every open tab of the same browser.
// Delivery never blocks the publisher: a full subscriber misses the event and
// catches up on the next one, which carries the full flag state.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	ch   chan session.Change
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers interest in changes for browserID.
// POST: the returned cancel func unsubscribes and closes the channel; it is safe to call twice
func (h *Hub) Subscribe(browserID string) (<-chan session.Change, func()) {
	sub := &subscriber{ch: make(chan session.Change, subscriberBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	set, ok := h.subs[browserID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[browserID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[browserID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, browserID)
			}
		}
		h.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// Publish delivers c to every subscriber of c.BrowserID and returns how many received it.
func (h *Hub) Publish(c session.Change) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for sub := range h.subs[c.BrowserID] {
		select {
		case sub.ch <- c:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of open subscriptions for browserID.
func (h *Hub) Subscribers(browserID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[browserID])
}

// Close closes every subscriber channel. Later subscriptions receive a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for sub := range set {
			sub.close()
		}
		delete(h.subs, id)
	}
}
