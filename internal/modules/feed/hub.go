package feed

import (
	"sync"

	"equiprent/internal/domain"
	"equiprent/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sendBuffer = 32

type subscriber struct {
	id      string
	adminID int64
	send    chan domain.RentalEvent
}

// Hub fans rental events out to every connected admin.
type Hub struct {
	subscribers map[string]*subscriber
	mutex       sync.RWMutex
	closed      bool
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[string]*subscriber),
		log:         log,
	}
}

// subscribe returns nil once the hub is closed.
func (h *Hub) subscribe(adminID int64) *subscriber {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.closed {
		return nil
	}
	s := &subscriber{
		id:      uuid.NewString(),
		adminID: adminID,
		send:    make(chan domain.RentalEvent, sendBuffer),
	}
	h.subscribers[s.id] = s
	metrics.SetFeedSubscribers(len(h.subscribers))
	return s
}

func (h *Hub) unsubscribe(id string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.dropLocked(id)
}

func (h *Hub) dropLocked(id string) {
	if s, ok := h.subscribers[id]; ok {
		close(s.send)
		delete(h.subscribers, id)
		metrics.SetFeedSubscribers(len(h.subscribers))
	}
}

// Publish never blocks: a subscriber whose buffer is full is disconnected.
func (h *Hub) Publish(ev domain.RentalEvent) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, s := range h.subscribers {
		select {
		case s.send <- ev:
		default:
			h.log.Warn("feed subscriber too slow, dropping",
				zap.String("subscriber", id),
				zap.Int64("admin_id", s.adminID),
			)
			h.dropLocked(id)
		}
	}
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subscribers)
}

// Close disconnects everyone and refuses new subscriptions.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.closed = true
	for id := range h.subscribers {
		h.dropLocked(id)
	}
}
