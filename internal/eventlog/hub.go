package eventlog

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Hub fans events out to in-process subscribers such as websocket streams.
// A subscriber that falls behind loses events instead of blocking the hub.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
}

// Subscription receives the events of one settlement plus world-wide events.
type Subscription struct {
	settlementID int64
	ch           chan world.Event
	dropped      atomic.Uint64
	once         sync.Once
}

// Events is closed when the subscription is removed from the hub.
func (s *Subscription) Events() <-chan world.Event {
	return s.ch
}

// Dropped counts events lost because the subscriber was too slow.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Subscription) wants(e world.Event) bool {
	return e.SettlementID == s.settlementID || e.SettlementID == world.WorldWide
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: max(buffer, 1),
	}
}

// Subscribe starts receiving events for a settlement.
func (h *Hub) Subscribe(settlementID int64) *Subscription {
	s := &Subscription{
		settlementID: settlementID,
		ch:           make(chan world.Event, h.buffer),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe removes s and closes its channel. Calling it twice is safe.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.once.Do(func() { close(s.ch) })
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish hands e to every interested subscriber without blocking.
func (h *Hub) Publish(_ context.Context, e world.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if !s.wants(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}
