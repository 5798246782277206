package progress

import (
	"sync"
	"time"

	"github.com/kozaktomas/makeup-coach/internal/constants"
)

// EventType names a kind of progression change.
type EventType string

// EventType constants emitted by Tracker.
const (
	EventExperience          EventType = "experience"
	EventLevelUp             EventType = "level_up"
	EventSkill               EventType = "skill"
	EventStreak              EventType = "streak"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventChallengeAssigned   EventType = "challenge_assigned"
	EventChallengeCompleted  EventType = "challenge_completed"
	EventLookCompleted       EventType = "look_completed"
)

// Event is a progression change for one user.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster fans events out to per-user listeners.
// Slow listeners drop events instead of blocking the publisher.
type Broadcaster struct {
	listeners map[string][]chan Event
	mu        sync.RWMutex
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[string][]chan Event)}
}

// AddListener registers a listener for one user's events.
func (b *Broadcaster) AddListener(userID string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, constants.EventChannelBuffer)
	b.listeners[userID] = append(b.listeners[userID], ch)
	return ch
}

// RemoveListener unregisters and closes a listener.
func (b *Broadcaster) RemoveListener(userID string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	listeners := b.listeners[userID]
	for i, listener := range listeners {
		if listener == ch {
			listeners = append(listeners[:i], listeners[i+1:]...)
			close(ch)
			break
		}
	}
	if len(listeners) == 0 {
		delete(b.listeners, userID)
	} else {
		b.listeners[userID] = listeners
	}
}

// ListenerCount returns the number of listeners for a user.
func (b *Broadcaster) ListenerCount(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[userID])
}

// Publish sends events to all listeners of their user.
func (b *Broadcaster) Publish(events ...Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, event := range events {
		for _, listener := range b.listeners[event.UserID] {
			select {
			case listener <- event:
			default:
				// Listener buffer full, skip.
			}
		}
	}
}
