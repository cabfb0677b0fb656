// Package notify carries user-facing messages from background tasks to
// whatever surface shows them.
package notify

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

// Level of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// DefaultCapacity is the number of notifications the hub remembers.
const DefaultCapacity = 50

// Sink receives user-facing messages.
type Sink interface {
	Info(msg string)
	Error(msg string)
}

// Notification is one message shown to the user.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Hub logs every notification and keeps the most recent ones in a ring.
type Hub struct {
	mu       sync.Mutex
	logger   logger.Logger
	items    []Notification
	capacity int
	now      func() time.Time
}

// NewHub creates a hub; capacity <= 0 falls back to DefaultCapacity.
func NewHub(log logger.Logger, capacity int) *Hub {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Hub{
		logger:   log,
		items:    make([]Notification, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

func (h *Hub) Info(msg string) {
	h.logger.Info("notify", logger.String("level", string(LevelInfo)), logger.String("message", msg))
	h.push(LevelInfo, msg)
}

func (h *Hub) Error(msg string) {
	h.logger.Warn("notify", logger.String("level", string(LevelError)), logger.String("message", msg))
	h.push(LevelError, msg)
}

func (h *Hub) push(level Level, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == h.capacity {
		copy(h.items, h.items[1:])
		h.items = h.items[:len(h.items)-1]
	}
	h.items = append(h.items, Notification{Level: level, Message: msg, At: h.now()})
}

// Recent returns the remembered notifications, oldest first.
func (h *Hub) Recent() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notification, len(h.items))
	copy(out, h.items)
	return out
}

// Drain returns the remembered notifications and forgets them.
func (h *Hub) Drain() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := h.items
	h.items = make([]Notification, 0, h.capacity)
	return out
}
