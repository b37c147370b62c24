// Package notifications keeps the transient messages the UI shows as toasts.
package notifications

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a single toast.
type Notification struct {
	ID        int64     `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

const defaultCapacity = 100

// Feed is a bounded, in-memory buffer of notifications with monotonically increasing ids.
// Clients poll with the last id they saw.
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	nextID   int64
	now      func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Feed{capacity: capacity, nextID: 1, now: time.Now}
}

// Notify appends a notification, evicting the oldest when full.
func (f *Feed) Notify(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, Notification{
		ID:        f.nextID,
		Level:     level,
		Message:   message,
		CreatedAt: f.now().UTC(),
	})
	f.nextID++

	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
}

// Since returns notifications with an id greater than after, oldest first.
func (f *Feed) Since(after int64) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, 0)
	for _, n := range f.items {
		if n.ID > after {
			out = append(out, n)
		}
	}
	return out
}

// Latest returns the most recent notification, if any.
func (f *Feed) Latest() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return Notification{}, false
	}
	return f.items[len(f.items)-1], true
}
