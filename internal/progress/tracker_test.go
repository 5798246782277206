package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type failingStore struct {
	*MemoryStore
	saveErr error
}

func (f *failingStore) Save(ctx context.Context, userID string, state *State) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.Save(ctx, userID, state)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTrackerCreatesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tr := NewTracker(store, TrackerOptions{Now: fixedClock(day("2024-01-01"))})

	snap, err := tr.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if snap.Level != 1 {
		t.Errorf("Level = %d, want 1", snap.Level)
	}
	if s, _ := store.Load(ctx, "alice"); s != nil {
		t.Error("Get() should not persist a new state")
	}

	snap, err = tr.AddExperience(ctx, "alice", 1000)
	if err != nil {
		t.Fatalf("AddExperience() error = %v", err)
	}
	if snap.Level != 11 || snap.CurrentLevelExperience != 1000 || snap.NextLevelExperience != 1267 {
		t.Errorf("snapshot = level %d bounds %d..%d", snap.Level, snap.CurrentLevelExperience, snap.NextLevelExperience)
	}

	stored, err := store.Load(ctx, "alice")
	if err != nil || stored == nil {
		t.Fatalf("Load() = %v, %v", stored, err)
	}
	if stored.Experience != 1000 || stored.Level != 11 {
		t.Errorf("stored = xp %d level %d", stored.Experience, stored.Level)
	}
}

func TestTrackerFailedMutationPersistsNothing(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	tr := NewTracker(store, TrackerOptions{})

	if _, err := tr.AddExperience(ctx, "bob", 10); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.AddExperience(ctx, "bob", -10); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("AddExperience(-10) error = %v, want ErrNegativeAmount", err)
	}
	if _, err := tr.UpdateSkill(ctx, "bob", "nails", 0.5); !errors.Is(err, ErrUnknownSkill) {
		t.Errorf("UpdateSkill() error = %v, want ErrUnknownSkill", err)
	}

	store.saveErr = errors.New("disk full")
	if _, err := tr.AddExperience(ctx, "bob", 500); err == nil {
		t.Error("expected save error")
	}

	stored, _ := store.Load(ctx, "bob")
	if stored.Experience != 10 {
		t.Errorf("Experience = %d, want 10", stored.Experience)
	}
}

func TestTrackerRejectsEmptyUser(t *testing.T) {
	tr := NewTracker(NewMemoryStore(), TrackerOptions{})
	if _, err := tr.CompleteLook(context.Background(), ""); !errors.Is(err, ErrInvalidUser) {
		t.Errorf("CompleteLook() error = %v, want ErrInvalidUser", err)
	}
}

func TestTrackerStreakUsesClockAndLocation(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(NewMemoryStore(), TrackerOptions{
		Now:      func() time.Time { return now },
		Location: loc,
	})

	snap, err := tr.RecordActivity(ctx, "carol")
	if err != nil {
		t.Fatal(err)
	}
	if snap.LastActivity != "2024-01-01" || snap.Streak != 0 {
		t.Errorf("after first activity: %s streak %d", snap.LastActivity, snap.Streak)
	}

	// 14:00 UTC is already the next day at UTC+10.
	now = now.Add(2 * time.Hour)
	snap, err = tr.RecordActivity(ctx, "carol")
	if err != nil {
		t.Fatal(err)
	}
	if snap.LastActivity != "2024-01-02" || snap.Streak != 1 {
		t.Errorf("after next-day activity: %s streak %d", snap.LastActivity, snap.Streak)
	}
}

func TestTrackerEvents(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryStore(), TrackerOptions{Now: fixedClock(day("2024-01-01"))})

	ch := tr.Events().AddListener("dave")
	defer tr.Events().RemoveListener("dave", ch)
	other := tr.Events().AddListener("erin")
	defer tr.Events().RemoveListener("erin", other)

	if _, err := tr.AddExperience(ctx, "dave", 150); err != nil {
		t.Fatal(err)
	}
	if _, _, err := tr.UnlockAchievement(ctx, "dave", "first_look"); err != nil {
		t.Fatal(err)
	}
	_, unlocked, err := tr.UnlockAchievement(ctx, "dave", "first_look")
	if err != nil || unlocked {
		t.Errorf("second unlock = %v, %v", unlocked, err)
	}
	if _, err := tr.AssignChallenge(ctx, "dave", DailyChallenge{ID: "c1", Name: "Bold lips", Reward: 20}); err != nil {
		t.Fatal(err)
	}
	snap, completed, err := tr.CompleteChallenge(ctx, "dave")
	if err != nil || !completed {
		t.Fatalf("CompleteChallenge() = %v, %v", completed, err)
	}
	if snap.TotalPoints != 170 {
		t.Errorf("TotalPoints = %d, want 170", snap.TotalPoints)
	}
	if _, err := tr.CompleteLook(ctx, "dave"); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.UpdateSkill(ctx, "dave", "eyeliner", 0.9); err != nil {
		t.Fatal(err)
	}

	want := []EventType{
		EventExperience, EventLevelUp,
		EventAchievementUnlocked,
		EventChallengeAssigned, EventChallengeCompleted,
		EventLookCompleted,
		EventSkill,
	}
	for i, wt := range want {
		select {
		case ev := <-ch:
			if ev.Type != wt {
				t.Errorf("event %d = %s, want %s", i, ev.Type, wt)
			}
			if ev.UserID != "dave" {
				t.Errorf("event %d user = %q", i, ev.UserID)
			}
		default:
			t.Fatalf("missing event %d (%s)", i, wt)
		}
	}
	select {
	case ev := <-ch:
		t.Errorf("unexpected event %s", ev.Type)
	default:
	}
	if len(other) != 0 {
		t.Errorf("other user received %d events", len(other))
	}
}

func TestTrackerConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tr := NewTracker(store, TrackerOptions{})

	const workers = 50
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.AddExperience(ctx, "frank", 100); err != nil {
				t.Errorf("AddExperience() error = %v", err)
			}
			if _, err := tr.UpdateSkill(ctx, "frank", "foundation", float64(i%2)); err != nil {
				t.Errorf("UpdateSkill() error = %v", err)
			}
		}()
	}
	wg.Wait()

	s, _ := store.Load(ctx, "frank")
	if s.Experience != workers*100 {
		t.Errorf("Experience = %d, want %d", s.Experience, workers*100)
	}
	if s.Level != LevelForExperience(s.Experience) {
		t.Errorf("Level = %d, want %d", s.Level, LevelForExperience(s.Experience))
	}
	if got := s.Skills["foundation"].Experience; got != workers/2*10 {
		t.Errorf("skill experience = %d, want %d", got, workers/2*10)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestBroadcasterRemoveListener(t *testing.T) {
	b := NewBroadcaster()
	ch := b.AddListener("u")
	if b.ListenerCount("u") != 1 {
		t.Fatalf("ListenerCount = %d, want 1", b.ListenerCount("u"))
	}
	b.RemoveListener("u", ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
	if b.ListenerCount("u") != 0 {
		t.Errorf("ListenerCount = %d, want 0", b.ListenerCount("u"))
	}
	b.Publish(Event{Type: EventStreak, UserID: "u"})
}
