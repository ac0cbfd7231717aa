package progress

import (
	"fmt"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// DefaultWindowDays is the length of the daily-summary and completion-rate window
const DefaultWindowDays = 90

// Snapshot is everything the presentation layer needs to render a user's progress
type Snapshot struct {
	AsOf                   entity.Date                        `json:"asOf"`
	PerHabitStreak         map[string]int                     `json:"perHabitStreak"`
	PerHabitCompletionRate map[string]int                     `json:"perHabitCompletionRate"`
	DailySummaries         []entity.DailySummary              `json:"dailySummaries"`
	AchievementStates      map[string]entity.AchievementState `json:"achievementStates"`

	// TodayCompletionRate is completed/active habits on AsOf
	TodayCompletionRate int `json:"todayCompletionRate"`
	// LongestCurrentStreak is the best per-habit streak on AsOf
	LongestCurrentStreak int `json:"longestCurrentStreak"`
}

// ComputeUserProgressSnapshot runs every engine operation over one user's data.
// Per-habit figures cover habits active on asOf; the completion rate of each habit is
// taken over the last windowDays days, clipped to the habit's creation day.
func ComputeUserProgressSnapshot(catalog []entity.Achievement, habits []entity.Habit, checkIns []entity.CheckIn, asOf entity.Date, windowDays int) (*Snapshot, error) {
	if windowDays < 1 {
		return nil, fmt.Errorf("%w: window of %d days", ErrInvalidRange, windowDays)
	}
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	h, err := buildHistory(habits, checkIns)
	if err != nil {
		return nil, err
	}

	start := asOf.AddDays(-(windowDays - 1))
	snap := &Snapshot{
		AsOf:                   asOf,
		PerHabitStreak:         make(map[string]int),
		PerHabitCompletionRate: make(map[string]int),
		DailySummaries:         h.summaries(start, asOf),
		AchievementStates:      h.timeline(asOf).evaluate(catalog),
	}

	for i := range h.habits {
		habit := &h.habits[i]
		if !habit.ActiveOn(asOf) {
			continue
		}
		log := h.byHabit[habit.ID]

		streak := streakAt(log, asOf)
		snap.PerHabitStreak[habit.ID] = streak
		snap.LongestCurrentStreak = max(snap.LongestCurrentStreak, streak)

		from := start
		if habit.CreatedAt.After(from) {
			from = habit.CreatedAt
		}
		snap.PerHabitCompletionRate[habit.ID] = completionRate(log, from, asOf)
	}

	today := snap.DailySummaries[len(snap.DailySummaries)-1]
	snap.TodayCompletionRate = percent(today.CompletedCount, today.TotalHabits)

	return snap, nil
}

// Engine binds a validated catalog and window so callers can compute snapshots repeatedly.
// It holds no per-user state and is safe for concurrent use.
type Engine struct {
	catalog    []entity.Achievement
	windowDays int
}

// NewEngine validates the catalog and returns an engine using it
func NewEngine(catalog []entity.Achievement, windowDays int) (*Engine, error) {
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}
	if windowDays < 1 {
		windowDays = DefaultWindowDays
	}
	return &Engine{
		catalog:    append([]entity.Achievement(nil), catalog...),
		windowDays: windowDays,
	}, nil
}

// Catalog returns a copy of the engine's achievement catalog
func (e *Engine) Catalog() []entity.Achievement {
	return append([]entity.Achievement(nil), e.catalog...)
}

// WindowDays returns the default summary window
func (e *Engine) WindowDays() int {
	return e.windowDays
}

func (e *Engine) Snapshot(habits []entity.Habit, checkIns []entity.CheckIn, asOf entity.Date) (*Snapshot, error) {
	return ComputeUserProgressSnapshot(e.catalog, habits, checkIns, asOf, e.windowDays)
}

func (e *Engine) Achievements(habits []entity.Habit, checkIns []entity.CheckIn, asOf entity.Date) (map[string]entity.AchievementState, error) {
	return EvaluateAchievements(e.catalog, habits, checkIns, asOf)
}

func (e *Engine) DailySummaries(habits []entity.Habit, checkIns []entity.CheckIn, start, end entity.Date) ([]entity.DailySummary, error) {
	return AggregateDailySummaries(habits, checkIns, start, end)
}

func (e *Engine) HabitStats(habit entity.Habit, checkIns []entity.CheckIn, asOf entity.Date) (HabitStats, error) {
	return ComputeHabitStats(habit, checkIns, asOf)
}
