package progress

import (
	"fmt"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// ComputeStreak returns the number of consecutive completed days ending at asOf.
// A day without a completed check-in at asOf does not break the streak: counting then
// starts from the day before, so a streak earned through yesterday survives until the
// user checks in today.
func ComputeStreak(checkIns []entity.CheckIn, asOf entity.Date) int {
	return streakAt(foldCheckIns(checkIns), asOf)
}

func streakAt(log completionLog, asOf entity.Date) int {
	day := asOf
	if !log[day] {
		day = day.AddDays(-1)
	}

	streak := 0
	for log[day] {
		streak++
		day = day.AddDays(-1)
	}
	return streak
}

// longestStreak returns the longest run of completed days up to and including asOf
func longestStreak(log completionLog, asOf entity.Date) int {
	longest, run := 0, 0
	var prev entity.Date
	for i, d := range log.completedDays(asOf) {
		if i > 0 && prev.AddDays(1) == d {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = d
	}
	return longest
}

// ComputeCompletionRate returns the share of days in the inclusive window [start, end]
// that have a completed check-in, as a rounded percentage.
func ComputeCompletionRate(checkIns []entity.CheckIn, start, end entity.Date) (int, error) {
	if start.After(end) {
		return 0, fmt.Errorf("%w: window start %s is after end %s", ErrInvalidRange, start, end)
	}
	return completionRate(foldCheckIns(checkIns), start, end), nil
}

func completionRate(log completionLog, start, end entity.Date) int {
	done := 0
	for d, completed := range log {
		if completed && !d.Before(start) && !d.After(end) {
			done++
		}
	}
	return percent(done, start.DaysUntil(end)+1)
}

// HabitStats summarizes one habit's history as of a day
type HabitStats struct {
	HabitID        string       `json:"habitId"`
	CurrentStreak  int          `json:"currentStreak"`
	LongestStreak  int          `json:"longestStreak"`
	TotalCompleted int          `json:"totalCompleted"`
	CompletionRate int          `json:"completionRate"`
	FirstCompleted *entity.Date `json:"firstCompleted,omitempty"`
	LastCompleted  *entity.Date `json:"lastCompleted,omitempty"`
}

// ComputeHabitStats derives streaks and totals for a single habit. Check-ins outside the
// habit's active window are ignored; check-ins for any other habit are rejected.
// The completion rate covers every day from creation through asOf (or the deletion day).
func ComputeHabitStats(habit entity.Habit, checkIns []entity.CheckIn, asOf entity.Date) (HabitStats, error) {
	h, err := buildHistory([]entity.Habit{habit}, checkIns)
	if err != nil {
		return HabitStats{}, err
	}
	log := h.byHabit[habit.ID]

	stats := HabitStats{
		HabitID:       habit.ID,
		CurrentStreak: streakAt(log, asOf),
		LongestStreak: longestStreak(log, asOf),
	}

	days := log.completedDays(asOf)
	stats.TotalCompleted = len(days)
	if len(days) > 0 {
		first, last := days[0], days[len(days)-1]
		stats.FirstCompleted = &first
		stats.LastCompleted = &last
	}

	end := asOf
	if habit.DeletedAt != nil && !habit.DeletedAt.After(end) {
		end = habit.DeletedAt.AddDays(-1)
	}
	if !habit.CreatedAt.After(end) {
		stats.CompletionRate = completionRate(log, habit.CreatedAt, end)
	}

	return stats, nil
}
