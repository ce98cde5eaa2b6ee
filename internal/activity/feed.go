package activity

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event types.
const (
	TypeRegistered   = "registered"
	TypeUnregistered = "unregistered"
	TypeApproved     = "approved"
	TypeRejected     = "rejected"
	TypeVisibility   = "visibility"
	TypeComment      = "comment"
	TypeVersion      = "version"
	TypeImported     = "imported"
	TypeHealth       = "health"
	// TypeError carries a validation or import failure shown to the user.
	TypeError = "error"
)

// Event is a registry change worth showing in the activity panel.
type Event struct {
	// ID is a lexically sortable identifier
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	ItemID   string    `json:"itemId,omitempty"`
	ItemName string    `json:"itemName,omitempty"`
	Kind     string    `json:"kind,omitempty"`
	User     string    `json:"user,omitempty"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

// String returns a one-line rendering of the event.
func (e Event) String() string {
	s := e.Time.Format(time.RFC3339) + " " + e.Type
	if e.ItemName != "" {
		s += " [" + e.ItemName + "]"
	}
	if e.User != "" {
		s += " by " + e.User
	}
	return s + ": " + e.Message
}

// Feed is a bounded queue of events plus a ring buffer of the most recent ones.
type Feed struct {
	queue     chan Event
	recent    []Event
	recentMax int
	mu        sync.RWMutex
	total     int64
	dropped   int64
}

// NewFeed creates a Feed with the given queue size and recent event capacity.
func NewFeed(bufferSize, recentMax int) *Feed {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if recentMax <= 0 {
		recentMax = 100
	}
	return &Feed{
		queue:     make(chan Event, bufferSize),
		recent:    make([]Event, 0, recentMax),
		recentMax: recentMax,
	}
}

// Publish records the event. It never blocks: when no consumer keeps up the
// event is kept in the recent buffer but not queued.
func (f *Feed) Publish(event Event) Event {
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	f.mu.Lock()
	f.total++
	if len(f.recent) >= f.recentMax {
		copy(f.recent, f.recent[1:])
		f.recent[len(f.recent)-1] = event
	} else {
		f.recent = append(f.recent, event)
	}
	f.mu.Unlock()

	select {
	case f.queue <- event:
	default:
		f.mu.Lock()
		f.dropped++
		f.mu.Unlock()
	}
	return event
}

// Next blocks until an event is queued or ctx is cancelled.
func (f *Feed) Next(ctx context.Context) (Event, bool) {
	select {
	case event := <-f.queue:
		return event, true
	case <-ctx.Done():
		return Event{}, false
	}
}

// Total returns the number of events published.
func (f *Feed) Total() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.total
}

// Dropped returns how many events missed the queue.
func (f *Feed) Dropped() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

// Recent returns the last n events, oldest first (all if n <= 0 or n > available).
func (f *Feed) Recent(n int) []Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if n <= 0 || n > len(f.recent) {
		n = len(f.recent)
	}
	result := make([]Event, n)
	copy(result, f.recent[len(f.recent)-n:])
	return result
}
