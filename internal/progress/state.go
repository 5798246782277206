// Package progress implements the gamification engine: experience and levels,
// per-skill accuracy, daily streaks, achievements and daily challenges.
//
// State is a plain value operated on by pure methods; Tracker adds per-user
// serialization, persistence and change notifications on top of it.
package progress

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/makeup-coach/internal/constants"
)

//go:embed achievements.yaml
var achievementsYAML []byte

var (
	// ErrNegativeAmount is returned for negative experience or rewards.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrAmountTooLarge is returned when an award would overflow experience or points.
	ErrAmountTooLarge = errors.New("amount too large")
	// ErrUnknownSkill is returned for a skill name the state does not track.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrAccuracyOutOfRange is returned for accuracy outside [0,1] or NaN.
	ErrAccuracyOutOfRange = errors.New("accuracy must be within [0,1]")
	// ErrInvalidChallenge is returned for a challenge without an id or with a negative reward.
	ErrInvalidChallenge = errors.New("invalid challenge")
	// ErrInvalidState means a state breaks one of its invariants, usually corrupt storage.
	ErrInvalidState = errors.New("invalid progression state")
)

// Skill tracks practice of one technique.
type Skill struct {
	Name       string  `json:"name"`
	Level      int     `json:"level"`
	Experience int     `json:"experience"`
	Accuracy   float64 `json:"accuracy"`
}

// Achievement is an unlockable badge. UnlockedAt is set iff the id is unlocked.
type Achievement struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Badge       string     `json:"badge" yaml:"badge"`
	Category    string     `json:"category" yaml:"category"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty" yaml:"-"`
}

// DailyChallenge is the currently active challenge. Issuing challenges is up to the caller.
type DailyChallenge struct {
	ID          string `json:"id" validate:"required,max=100"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Type        string `json:"type" validate:"max=100"`
	Reward      int    `json:"reward" validate:"gte=0"`
	Completed   bool   `json:"completed"`
}

// State is the progression aggregate of one user.
type State struct {
	Level                int              `json:"level"`
	Experience           int              `json:"experience"`
	TotalPoints          int              `json:"total_points"`
	Streak               int              `json:"streak"`
	LastActivity         string           `json:"last_activity"`
	CompletedLooks       int              `json:"completed_looks"`
	Skills               map[string]Skill `json:"skills"`
	Achievements         []Achievement    `json:"achievements"`
	UnlockedAchievements []string         `json:"unlocked_achievements"`
	DailyChallenge       *DailyChallenge  `json:"daily_challenge,omitempty"`
}

// DefaultSkills returns the skills every new user starts with, keyed by id.
func DefaultSkills() map[string]Skill {
	return map[string]Skill{
		"foundation": {Name: "Foundation", Level: 1},
		"eyeshadow":  {Name: "Eyeshadow", Level: 1},
		"eyeliner":   {Name: "Eyeliner", Level: 1},
		"lipstick":   {Name: "Lipstick", Level: 1},
		"contouring": {Name: "Contouring", Level: 1},
	}
}

// DefaultAchievements returns the built-in achievement catalog.
func DefaultAchievements() []Achievement {
	var f struct {
		Achievements []Achievement `yaml:"achievements"`
	}
	if err := yaml.Unmarshal(achievementsYAML, &f); err != nil {
		panic("failed to parse embedded achievements.yaml: " + err.Error())
	}
	return f.Achievements
}

// NewState creates a level-1 state with default skills. A nil achievement
// catalog means the built-in one.
func NewState(today time.Time, achievements []Achievement) *State {
	if achievements == nil {
		achievements = DefaultAchievements()
	}
	catalog := make([]Achievement, len(achievements))
	for i, a := range achievements {
		a.UnlockedAt = nil
		catalog[i] = a
	}
	return &State{
		Level:                1,
		LastActivity:         today.Format(constants.DateLayout),
		Skills:               DefaultSkills(),
		Achievements:         catalog,
		UnlockedAchievements: []string{},
	}
}

// AddExperience awards experience (and the same amount of points) and recomputes the level.
func (s *State) AddExperience(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	if amount > math.MaxInt-s.Experience || amount > math.MaxInt-s.TotalPoints {
		return fmt.Errorf("%w: %d", ErrAmountTooLarge, amount)
	}
	s.Experience += amount
	s.TotalPoints += amount
	s.Level = LevelForExperience(s.Experience)
	return nil
}

// UpdateSkill records one practice observation for a skill.
func (s *State) UpdateSkill(name string, accuracy float64) error {
	skill, ok := s.Skills[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSkill, name)
	}
	if math.IsNaN(accuracy) || accuracy < 0 || accuracy > 1 {
		return fmt.Errorf("%w: %v", ErrAccuracyOutOfRange, accuracy)
	}

	skill.Experience += int(math.Floor(accuracy * constants.SkillExperiencePerPractice))
	skill.Level = skill.Experience/constants.SkillExperiencePerLevel + 1
	skill.Accuracy = (skill.Accuracy + accuracy) / 2
	s.Skills[name] = skill
	return nil
}

// UpdateStreak records activity on today's calendar date (in today's location).
// Same day keeps the streak, the next day extends it and any gap resets it to 0.
// A last activity in the future (clock skew) leaves the streak alone.
func (s *State) UpdateStreak(today time.Time) error {
	todayDate := calendarDay(today)
	if s.LastActivity != "" {
		last, err := time.ParseInLocation(constants.DateLayout, s.LastActivity, time.UTC)
		if err != nil {
			return fmt.Errorf("%w: last activity %q: %w", ErrInvalidState, s.LastActivity, err)
		}
		switch days := int(todayDate.Sub(last).Hours() / 24); {
		case days == 1:
			s.Streak++
		case days > 1:
			s.Streak = 0
		}
	}
	s.LastActivity = todayDate.Format(constants.DateLayout)
	return nil
}

// calendarDay returns t's local date as midnight UTC, so subtracting two days
// is never skewed by DST transitions.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsUnlocked reports whether the achievement id is unlocked.
func (s *State) IsUnlocked(id string) bool {
	_, found := slices.BinarySearch(s.UnlockedAchievements, id)
	return found
}

// UnlockAchievement unlocks a catalog achievement. It returns false when the id
// is unknown or already unlocked.
func (s *State) UnlockAchievement(id string, now time.Time) bool {
	if s.IsUnlocked(id) {
		return false
	}
	idx := slices.IndexFunc(s.Achievements, func(a Achievement) bool { return a.ID == id })
	if idx < 0 {
		return false
	}

	at := now.UTC()
	s.Achievements[idx].UnlockedAt = &at
	pos, _ := slices.BinarySearch(s.UnlockedAchievements, id)
	s.UnlockedAchievements = slices.Insert(s.UnlockedAchievements, pos, id)
	return true
}

// AssignChallenge makes ch the active challenge, replacing any previous one.
func (s *State) AssignChallenge(ch DailyChallenge) error {
	if ch.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidChallenge)
	}
	if ch.Reward < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChallenge, ErrNegativeAmount)
	}
	ch.Completed = false
	s.DailyChallenge = &ch
	return nil
}

// CompleteChallenge completes the active challenge and awards its reward to
// total points only. It returns the awarded points and false when there is no
// active challenge or it was already completed.
func (s *State) CompleteChallenge() (int, bool, error) {
	if s.DailyChallenge == nil || s.DailyChallenge.Completed {
		return 0, false, nil
	}
	reward := s.DailyChallenge.Reward
	if reward > math.MaxInt-s.TotalPoints {
		return 0, false, fmt.Errorf("%w: reward %d", ErrAmountTooLarge, reward)
	}
	s.DailyChallenge.Completed = true
	s.TotalPoints += reward
	return reward, true, nil
}

// IncrementCompletedLooks counts one more finished look and returns the new total.
func (s *State) IncrementCompletedLooks() int {
	s.CompletedLooks++
	return s.CompletedLooks
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.Skills = make(map[string]Skill, len(s.Skills))
	for k, v := range s.Skills {
		c.Skills[k] = v
	}
	c.Achievements = make([]Achievement, len(s.Achievements))
	for i, a := range s.Achievements {
		if a.UnlockedAt != nil {
			at := *a.UnlockedAt
			a.UnlockedAt = &at
		}
		c.Achievements[i] = a
	}
	c.UnlockedAchievements = slices.Clone(s.UnlockedAchievements)
	if c.UnlockedAchievements == nil {
		c.UnlockedAchievements = []string{}
	}
	if s.DailyChallenge != nil {
		ch := *s.DailyChallenge
		c.DailyChallenge = &ch
	}
	return &c
}

// Snapshot is a read-only view of State with progress-bar bounds.
type Snapshot struct {
	*State
	CurrentLevelExperience int `json:"current_level_experience"`
	NextLevelExperience    int `json:"next_level_experience"`
}

// Snapshot returns a deep copy of the state for display.
func (s *State) Snapshot() Snapshot {
	current, next := LevelBounds(s.Level)
	return Snapshot{
		State:                  s.Clone(),
		CurrentLevelExperience: current,
		NextLevelExperience:    next,
	}
}

// Validate checks every invariant of the state. Stores should refuse to persist
// states that fail it.
func (s *State) Validate() error {
	switch {
	case s.Experience < 0:
		return fmt.Errorf("%w: negative experience", ErrInvalidState)
	case s.Level != LevelForExperience(s.Experience):
		return fmt.Errorf("%w: level %d does not match experience %d", ErrInvalidState, s.Level, s.Experience)
	case s.TotalPoints < 0:
		return fmt.Errorf("%w: negative total points", ErrInvalidState)
	case s.Streak < 0:
		return fmt.Errorf("%w: negative streak", ErrInvalidState)
	case s.CompletedLooks < 0:
		return fmt.Errorf("%w: negative completed looks", ErrInvalidState)
	}
	if s.LastActivity != "" {
		if _, err := time.Parse(constants.DateLayout, s.LastActivity); err != nil {
			return fmt.Errorf("%w: last activity %q", ErrInvalidState, s.LastActivity)
		}
	}

	for id, sk := range s.Skills {
		if sk.Experience < 0 || sk.Level != sk.Experience/constants.SkillExperiencePerLevel+1 {
			return fmt.Errorf("%w: skill %q level %d does not match experience %d", ErrInvalidState, id, sk.Level, sk.Experience)
		}
		if math.IsNaN(sk.Accuracy) || sk.Accuracy < 0 || sk.Accuracy > 1 {
			return fmt.Errorf("%w: skill %q accuracy %v", ErrInvalidState, id, sk.Accuracy)
		}
	}

	if !sort.StringsAreSorted(s.UnlockedAchievements) {
		return fmt.Errorf("%w: unlocked achievements not sorted", ErrInvalidState)
	}
	for i := 1; i < len(s.UnlockedAchievements); i++ {
		if s.UnlockedAchievements[i] == s.UnlockedAchievements[i-1] {
			return fmt.Errorf("%w: achievement %q unlocked twice", ErrInvalidState, s.UnlockedAchievements[i])
		}
	}
	known := make(map[string]struct{}, len(s.Achievements))
	for _, a := range s.Achievements {
		if _, dup := known[a.ID]; dup {
			return fmt.Errorf("%w: duplicate achievement %q", ErrInvalidState, a.ID)
		}
		known[a.ID] = struct{}{}
		if (a.UnlockedAt != nil) != s.IsUnlocked(a.ID) {
			return fmt.Errorf("%w: achievement %q unlock stamp disagrees with unlocked set", ErrInvalidState, a.ID)
		}
	}
	for _, id := range s.UnlockedAchievements {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: unlocked achievement %q not in catalog", ErrInvalidState, id)
		}
	}

	if s.DailyChallenge != nil && s.DailyChallenge.Reward < 0 {
		return fmt.Errorf("%w: negative challenge reward", ErrInvalidState)
	}
	return nil
}
