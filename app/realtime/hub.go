// Package realtime fans database change notifications out to streaming clients
package realtime

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amirphl/leadboard/app/services"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Tables that carry change-feed triggers
var WatchedTables = []string{"leads", "categories", "videos"}

// Event is one row change as seen by subscribers
type Event struct {
	Table string    `json:"table"`
	Op    string    `json:"op"`
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
}

// Subscriber receives the events of the tables it asked for
type Subscriber struct {
	actor   uuid.UUID
	tables  map[string]bool
	events  chan Event
	dropped atomic.Int64
}

// Events is closed when the subscriber is removed from the hub
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Dropped counts events discarded because the subscriber was not keeping up
func (s *Subscriber) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Subscriber) wants(table string) bool {
	return len(s.tables) == 0 || s.tables[table]
}

// Hub keeps the live subscribers. Publishing never blocks on a slow subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	buffer int
	writes services.RecentWriteTracker
}

// NewHub accepts a nil tracker, which disables echo suppression
func NewHub(buffer int, writes services.RecentWriteTracker) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		buffer: buffer,
		writes: writes,
	}
}

// ParseTables turns "leads,videos" into a filter; unknown names are ignored and empty means all
func ParseTables(raw string) []string {
	var tables []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		for _, known := range WatchedTables {
			if name == known {
				tables = append(tables, name)
				break
			}
		}
	}
	return tables
}

func (h *Hub) Subscribe(actor uuid.UUID, tables []string) *Subscriber {
	sub := &Subscriber{
		actor:  actor,
		tables: make(map[string]bool, len(tables)),
		events: make(chan Event, h.buffer),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.events)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers ev to every interested subscriber, skipping the one whose own write caused it
func (h *Hub) Publish(ctx context.Context, ev Event) {
	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		if sub.wants(ev.Table) {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	// the tracker may be remote, so it is consulted without holding the lock
	if h.writes != nil {
		echoed := make(map[uuid.UUID]bool)
		kept := targets[:0]
		for _, sub := range targets {
			skip, seen := echoed[sub.actor]
			if !seen {
				skip = h.writes.WasRecent(ctx, sub.actor, ev.Table, ev.ID)
				echoed[sub.actor] = skip
			}
			if !skip {
				kept = append(kept, sub)
			}
		}
		targets = kept
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range targets {
		// unsubscribed in the meantime; its channel is closed
		if _, ok := h.subs[sub]; !ok {
			continue
		}
		select {
		case sub.events <- ev:
		default:
			if sub.dropped.Add(1) == 1 {
				logrus.WithFields(logrus.Fields{"actor": sub.actor, "table": ev.Table}).Warn("realtime subscriber is lagging; dropping events")
			}
		}
	}
}

// Close removes every subscriber, closing their channels
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.events)
	}
}
