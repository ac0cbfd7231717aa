// Package memory is an in-process implementation of the repositories, used by the
// development server (database.driver: memory) and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/repository"
)

type checkInKey struct {
	habitID string
	date    entity.Date
}

type storedCheckIn struct {
	entity.CheckIn
	userID string
}

// Store holds all habit-tracker state in memory.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	habits   map[string]entity.Habit
	checkIns map[checkInKey]storedCheckIn
	unlocks  map[string]map[string]entity.UnlockedAchievement
}

// New creates a new Store with empty state.
func New() *Store {
	return &Store{
		now:      time.Now,
		habits:   make(map[string]entity.Habit),
		checkIns: make(map[checkInKey]storedCheckIn),
		unlocks:  make(map[string]map[string]entity.UnlockedAchievement),
	}
}

// WithClock replaces the time source used for check-in write times
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Habits returns the store as a HabitRepository
func (s *Store) Habits() repository.HabitRepository { return habitRepo{s} }

// CheckIns returns the store as a CheckInRepository
func (s *Store) CheckIns() repository.CheckInRepository { return checkInRepo{s} }

// Achievements returns the store as an AchievementRepository
func (s *Store) Achievements() repository.AchievementRepository { return achievementRepo{s} }

type habitRepo struct{ s *Store }

func (r habitRepo) Create(_ context.Context, habit *entity.Habit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.habits[habit.ID]; ok {
		return fmt.Errorf("failed to create habit: duplicate id %s", habit.ID)
	}
	r.s.habits[habit.ID] = cloneHabit(*habit)
	return nil
}

func (r habitRepo) GetByIDAndUserID(_ context.Context, habitID, userID string) (*entity.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.habits[habitID]
	if !ok || h.UserID != userID {
		return nil, fmt.Errorf("habit %s: %w", habitID, entity.ErrNotFound)
	}
	out := cloneHabit(h)
	return &out, nil
}

func (r habitRepo) ListByUserID(_ context.Context, userID string, includeDeleted bool) ([]*entity.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.Habit
	for _, h := range r.s.habits {
		if h.UserID != userID || (!includeDeleted && h.IsDeleted()) {
			continue
		}
		c := cloneHabit(h)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r habitRepo) Update(_ context.Context, habit *entity.Habit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.habits[habit.ID]
	if !ok || h.UserID != habit.UserID {
		return fmt.Errorf("habit %s: %w", habit.ID, entity.ErrNotFound)
	}
	h.Name = habit.Name
	h.Emoji = habit.Emoji
	h.Reminder = habit.Reminder
	h.UpdatedAt = habit.UpdatedAt
	r.s.habits[habit.ID] = cloneHabit(h)
	return nil
}

func (r habitRepo) Delete(_ context.Context, habitID, userID string, on entity.Date) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.habits[habitID]
	if !ok || h.UserID != userID || h.IsDeleted() {
		return fmt.Errorf("habit %s: %w", habitID, entity.ErrNotFound)
	}
	if on.Before(h.CreatedAt) {
		on = h.CreatedAt
	}
	h.DeletedAt = &on
	h.UpdatedAt = r.s.now().UTC()
	r.s.habits[habitID] = h
	return nil
}

func (r habitRepo) ListUserIDsWithActivitySince(_ context.Context, since time.Time) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, c := range r.s.checkIns {
		if c.RecordedAt.After(since) {
			seen[c.userID] = true
		}
	}
	for _, h := range r.s.habits {
		if h.UpdatedAt.After(since) {
			seen[h.UserID] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type checkInRepo struct{ s *Store }

func (r checkInRepo) Upsert(_ context.Context, userID string, checkIn *entity.CheckIn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.habits[checkIn.HabitID]
	if !ok || h.UserID != userID {
		return fmt.Errorf("habit %s: %w", checkIn.HabitID, entity.ErrNotFound)
	}

	checkIn.RecordedAt = r.s.now().UTC()
	r.s.checkIns[checkInKey{checkIn.HabitID, checkIn.Date}] = storedCheckIn{CheckIn: *checkIn, userID: userID}
	return nil
}

func (r checkInRepo) ListByUserID(_ context.Context, userID string, start, end entity.Date) ([]entity.CheckIn, error) {
	return r.list(func(c storedCheckIn) bool {
		return c.userID == userID && !c.Date.Before(start) && !c.Date.After(end)
	}), nil
}

func (r checkInRepo) ListByHabitID(_ context.Context, habitID string, start, end entity.Date) ([]entity.CheckIn, error) {
	return r.list(func(c storedCheckIn) bool {
		return c.HabitID == habitID && !c.Date.Before(start) && !c.Date.After(end)
	}), nil
}

func (r checkInRepo) list(keep func(storedCheckIn) bool) []entity.CheckIn {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []entity.CheckIn
	for _, c := range r.s.checkIns {
		if keep(c) {
			out = append(out, c.CheckIn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		return out[i].HabitID < out[j].HabitID
	})
	return out
}

type achievementRepo struct{ s *Store }

func (r achievementRepo) ListUnlocked(_ context.Context, userID string) ([]entity.UnlockedAchievement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]entity.UnlockedAchievement, 0, len(r.s.unlocks[userID]))
	for _, u := range r.s.unlocks[userID] {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnlockedAt != out[j].UnlockedAt {
			return out[i].UnlockedAt < out[j].UnlockedAt
		}
		return out[i].AchievementID < out[j].AchievementID
	})
	return out, nil
}

func (r achievementRepo) RecordUnlock(_ context.Context, unlock entity.UnlockedAchievement) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byID, ok := r.s.unlocks[unlock.UserID]
	if !ok {
		byID = make(map[string]entity.UnlockedAchievement)
		r.s.unlocks[unlock.UserID] = byID
	}
	if _, exists := byID[unlock.AchievementID]; exists {
		return false, nil
	}
	byID[unlock.AchievementID] = unlock
	return true, nil
}

func cloneHabit(h entity.Habit) entity.Habit {
	if h.Reminder != nil {
		r := *h.Reminder
		h.Reminder = &r
	}
	if h.DeletedAt != nil {
		d := *h.DeletedAt
		h.DeletedAt = &d
	}
	return h
}
