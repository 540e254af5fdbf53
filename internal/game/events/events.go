// Package events carries notifications and state-change signals from the game
// controller to its subscribers: the persister and the front ends.
package events

import (
	"sync"
	"time"
)

// Kind identifies what changed. State kinds double as persistence triggers.
type Kind string

const (
	KindNotification Kind = "notification"
	KindPlayer       Kind = "player"
	KindEquipment    Kind = "equipment"
	KindInventory    Kind = "inventory"
	KindAchievements Kind = "achievements"
	KindTasks        Kind = "tasks"
	KindSettings     Kind = "settings"
	KindGameState    Kind = "game_state"
	KindStatistics   Kind = "statistics"
	KindFishing      Kind = "fishing"
	KindEnvironment  Kind = "environment"
	// KindRestored follows an import or reset; the whole state was replaced and
	// nothing needs saving.
	KindRestored Kind = "restored"
)

// Severity is the display level of a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one message on the bus.
type Event struct {
	Kind     Kind          `json:"kind"`
	Message  string        `json:"message,omitempty"`
	Severity Severity      `json:"severity,omitempty"`
	TTL      time.Duration `json:"ttl,omitempty"` // display time hint for notifications
	At       time.Time     `json:"at"`
}

// Bus fans events out to subscribers without ever blocking the publisher.
// It is safe for concurrent use.
type Bus struct {
	mu          sync.Mutex
	subscribers map[chan<- Event]struct{}
	now         func() time.Time
}

// NewBus creates a Bus with no subscribers.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[chan<- Event]struct{}), now: time.Now}
}

// Subscribe registers ch to receive every published event.
// If ch is full, the event is dropped for that subscriber.
//
// Precondition: ch must not be nil.
func (b *Bus) Subscribe(ch chan<- Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (b *Bus) Unsubscribe(ch chan<- Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, ch)
}

// Publish delivers ev to every subscriber that has room for it.
// A zero At is stamped with the current time.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	if ev.At.IsZero() {
		ev.At = b.now()
	}
	subs := make([]chan<- Event, 0, len(b.subscribers))
	for ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Changed publishes a state-change event for each kind.
func (b *Bus) Changed(kinds ...Kind) {
	for _, k := range kinds {
		b.Publish(Event{Kind: k})
	}
}
