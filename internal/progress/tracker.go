package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidUser is returned for an empty user id.
var ErrInvalidUser = errors.New("invalid user id")

// Store persists progression states. Load returns nil, nil for an unknown user.
type Store interface {
	Load(ctx context.Context, userID string) (*State, error)
	Save(ctx context.Context, userID string, state *State) error
}

// TrackerOptions configure a Tracker.
type TrackerOptions struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// Location decides calendar days for streaks. Defaults to UTC.
	Location *time.Location
	// Achievements seeds new users. Nil means the built-in catalog.
	Achievements []Achievement
	// Broadcaster receives change events. A new one is created when nil.
	Broadcaster *Broadcaster
}

// Tracker serializes progression mutations per user and persists every change.
//
// Each mutation loads the state (creating it for new users), applies the change
// to a copy, validates it, saves it and only then publishes events. A failed
// mutation leaves the stored state untouched.
type Tracker struct {
	store        Store
	now          func() time.Time
	location     *time.Location
	achievements []Achievement
	events       *Broadcaster

	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewTracker creates a tracker over store.
func NewTracker(store Store, opts TrackerOptions) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Broadcaster == nil {
		opts.Broadcaster = NewBroadcaster()
	}
	return &Tracker{
		store:        store,
		now:          opts.Now,
		location:     opts.Location,
		achievements: opts.Achievements,
		events:       opts.Broadcaster,
		locks:        make(map[string]*userLock),
	}
}

// Events returns the broadcaster that receives this tracker's events.
func (t *Tracker) Events() *Broadcaster {
	return t.events
}

func (t *Tracker) today() time.Time {
	return t.now().In(t.location)
}

func (t *Tracker) lock(userID string) func() {
	t.mu.Lock()
	l, ok := t.locks[userID]
	if !ok {
		l = &userLock{}
		t.locks[userID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, userID)
		}
		t.mu.Unlock()
	}
}

func (t *Tracker) load(ctx context.Context, userID string) (*State, error) {
	state, err := t.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading progress: %w", err)
	}
	if state == nil {
		state = NewState(t.today(), t.achievements)
	}
	return state, nil
}

// Get returns the user's current state; unknown users get a fresh, unsaved state.
func (t *Tracker) Get(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrInvalidUser
	}
	unlock := t.lock(userID)
	defer unlock()

	state, err := t.load(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return state.Snapshot(), nil
}

// mutate applies fn to a copy of the user's state and persists the result.
func (t *Tracker) mutate(ctx context.Context, userID string, fn func(s *State) ([]Event, error)) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrInvalidUser
	}
	unlock := t.lock(userID)
	defer unlock()

	current, err := t.load(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	next := current.Clone()
	events, err := fn(next)
	if err != nil {
		return Snapshot{}, err
	}
	if err := next.Validate(); err != nil {
		return Snapshot{}, err
	}
	if err := t.store.Save(ctx, userID, next); err != nil {
		return Snapshot{}, fmt.Errorf("saving progress: %w", err)
	}

	now := t.now()
	for i := range events {
		events[i].UserID = userID
		events[i].Timestamp = now
	}
	t.events.Publish(events...)
	return next.Snapshot(), nil
}

func levelEvents(before int, s *State) []Event {
	if s.Level <= before {
		return nil
	}
	return []Event{{Type: EventLevelUp, Data: map[string]int{"from": before, "to": s.Level}}}
}

// AddExperience awards experience to a user.
func (t *Tracker) AddExperience(ctx context.Context, userID string, amount int) (Snapshot, error) {
	return t.mutate(ctx, userID, func(s *State) ([]Event, error) {
		before := s.Level
		if err := s.AddExperience(amount); err != nil {
			return nil, err
		}
		events := []Event{{Type: EventExperience, Data: map[string]int{"amount": amount, "experience": s.Experience}}}
		return append(events, levelEvents(before, s)...), nil
	})
}

// UpdateSkill records a practice observation for one of the user's skills.
func (t *Tracker) UpdateSkill(ctx context.Context, userID, skill string, accuracy float64) (Snapshot, error) {
	return t.mutate(ctx, userID, func(s *State) ([]Event, error) {
		if err := s.UpdateSkill(skill, accuracy); err != nil {
			return nil, err
		}
		return []Event{{Type: EventSkill, Data: map[string]any{"skill": skill, "state": s.Skills[skill]}}}, nil
	})
}

// RecordActivity updates the user's streak for today.
func (t *Tracker) RecordActivity(ctx context.Context, userID string) (Snapshot, error) {
	return t.mutate(ctx, userID, func(s *State) ([]Event, error) {
		before := s.Streak
		if err := s.UpdateStreak(t.today()); err != nil {
			return nil, err
		}
		return []Event{{Type: EventStreak, Data: map[string]int{"from": before, "to": s.Streak}}}, nil
	})
}

// UnlockAchievement unlocks an achievement. Unknown or already unlocked ids
// change nothing and emit no event.
func (t *Tracker) UnlockAchievement(ctx context.Context, userID, id string) (Snapshot, bool, error) {
	var unlocked bool
	snap, err := t.mutate(ctx, userID, func(s *State) ([]Event, error) {
		unlocked = s.UnlockAchievement(id, t.now())
		if !unlocked {
			return nil, nil
		}
		return []Event{{Type: EventAchievementUnlocked, Data: map[string]string{"id": id}}}, nil
	})
	return snap, unlocked, err
}

// AssignChallenge sets the user's active daily challenge.
func (t *Tracker) AssignChallenge(ctx context.Context, userID string, ch DailyChallenge) (Snapshot, error) {
	return t.mutate(ctx, userID, func(s *State) ([]Event, error) {
		if err := s.AssignChallenge(ch); err != nil {
			return nil, err
		}
		return []Event{{Type: EventChallengeAssigned, Data: s.DailyChallenge}}, nil
	})
}

// CompleteChallenge completes the active challenge. The bool is false when
// there was nothing to complete.
func (t *Tracker) CompleteChallenge(ctx context.Context, userID string) (Snapshot, bool, error) {
	var completed bool
	snap, err := t.mutate(ctx, userID, func(s *State) ([]Event, error) {
		reward, ok, err := s.CompleteChallenge()
		if err != nil || !ok {
			return nil, err
		}
		completed = true
		return []Event{{Type: EventChallengeCompleted, Data: map[string]any{"id": s.DailyChallenge.ID, "reward": reward}}}, nil
	})
	return snap, completed, err
}

// CompleteLook counts a finished look.
func (t *Tracker) CompleteLook(ctx context.Context, userID string) (Snapshot, error) {
	return t.mutate(ctx, userID, func(s *State) ([]Event, error) {
		n := s.IncrementCompletedLooks()
		return []Event{{Type: EventLookCompleted, Data: map[string]int{"completed_looks": n}}}, nil
	})
}
