package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Hub fans session lifecycle events out to per-user subscribers. Delivery
// within one subscription is in publish order; a subscriber that cannot
// keep up is closed rather than reordered or skipped.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*subscriber]struct{}
	seq         atomic.Uint64
	logger      *zap.Logger
}

type subscriber struct {
	events chan SessionEvent
	once   sync.Once
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[*subscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe registers for the given user's session events. The returned
// cancel func is idempotent and closes the event channel.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan SessionEvent, func()) {
	sub := &subscriber{events: make(chan SessionEvent, subscriberBuffer)}

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[*subscriber]struct{})
	}
	h.subscribers[userID][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[userID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		h.mu.Unlock()
		sub.close()
	}

	return sub.events, cancel
}

// Publish stamps the event and delivers it to every subscriber of the
// event's user. Publish never blocks; a full subscriber is dropped.
func (h *Hub) Publish(event SessionEvent) {
	event.Seq = h.seq.Add(1)
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now()
	}

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers[event.UserID]))
	for sub := range h.subscribers[event.UserID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.events <- event:
		default:
			h.logger.Warn("session event subscriber too slow, dropping",
				zap.String("user_id", event.UserID.String()),
				zap.String("event", string(event.Type)))
			h.drop(event.UserID, sub)
		}
	}
}

// SubscriberCount reports the number of active subscriptions for a user.
func (h *Hub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

func (h *Hub) drop(userID uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	if subs, ok := h.subscribers[userID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, userID)
		}
	}
	h.mu.Unlock()
	sub.close()
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.events) })
}
