package progress

import (
	"fmt"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// AggregateDailySummaries returns one summary per day in [start, end], ascending.
// Days on which no habit existed are reported as 0/0 rather than skipped.
func AggregateDailySummaries(habits []entity.Habit, checkIns []entity.CheckIn, start, end entity.Date) ([]entity.DailySummary, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start, end)
	}

	h, err := buildHistory(habits, checkIns)
	if err != nil {
		return nil, err
	}

	return h.summaries(start, end), nil
}

func (h *history) summaries(start, end entity.Date) []entity.DailySummary {
	out := make([]entity.DailySummary, 0, start.DaysUntil(end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		out = append(out, h.summary(d))
	}
	return out
}
