package progress

import (
	"fmt"
	"math"
	"sort"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// completionLog maps a day to the completed flag of the last check-in seen for it
type completionLog map[entity.Date]bool

// foldCheckIns indexes one habit's check-ins by day. Later records replace earlier ones.
func foldCheckIns(checkIns []entity.CheckIn) completionLog {
	log := make(completionLog, len(checkIns))
	for _, c := range checkIns {
		log[c.Date] = c.Completed
	}
	return log
}

// completedDays returns the completed days up to and including asOf, ascending
func (l completionLog) completedDays(asOf entity.Date) []entity.Date {
	days := make([]entity.Date, 0, len(l))
	for d, done := range l {
		if done && !d.After(asOf) {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// history is the folded view of a user's habits and their eligible check-ins
type history struct {
	habits  []entity.Habit
	byHabit map[string]completionLog
}

// buildHistory folds check-ins across all habits. A check-in for a habit outside the set is
// rejected; one dated outside the habit's active window is ignored.
func buildHistory(habits []entity.Habit, checkIns []entity.CheckIn) (*history, error) {
	h := &history{
		habits:  make([]entity.Habit, 0, len(habits)),
		byHabit: make(map[string]completionLog, len(habits)),
	}

	position := make(map[string]int, len(habits))
	for _, habit := range habits {
		if i, ok := position[habit.ID]; ok {
			h.habits[i] = habit
			continue
		}
		position[habit.ID] = len(h.habits)
		h.habits = append(h.habits, habit)
		h.byHabit[habit.ID] = completionLog{}
	}

	for _, c := range checkIns {
		i, ok := position[c.HabitID]
		if !ok {
			return nil, fmt.Errorf("%w: habit %q on %s is not in the habit set", ErrMalformedCheckIn, c.HabitID, c.Date)
		}
		if !h.habits[i].ActiveOn(c.Date) {
			continue
		}
		h.byHabit[c.HabitID][c.Date] = c.Completed
	}

	return h, nil
}

func (h *history) completed(habitID string, d entity.Date) bool {
	return h.byHabit[habitID][d]
}

// summary counts the habits active on d and how many of them were completed
func (h *history) summary(d entity.Date) entity.DailySummary {
	s := entity.DailySummary{Date: d}
	for i := range h.habits {
		habit := &h.habits[i]
		if !habit.ActiveOn(d) {
			continue
		}
		s.TotalHabits++
		if h.completed(habit.ID, d) {
			s.CompletedCount++
		}
	}
	return s
}

// earliest returns the first day any habit existed
func (h *history) earliest() (entity.Date, bool) {
	if len(h.habits) == 0 {
		return 0, false
	}
	first := h.habits[0].CreatedAt
	for _, habit := range h.habits[1:] {
		if habit.CreatedAt.Before(first) {
			first = habit.CreatedAt
		}
	}
	return first, true
}

// percent returns round(n/d*100) capped to [0, 100]
func percent(n, d int) int {
	if d <= 0 || n <= 0 {
		return 0
	}
	p := int(math.Round(float64(n) * 100 / float64(d)))
	return min(p, 100)
}
