package progress

import (
	"fmt"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// ValidateCatalog checks that every entry has an ID, a positive requirement and a known rule.
func ValidateCatalog(catalog []entity.Achievement) error {
	seen := make(map[string]bool, len(catalog))
	for _, a := range catalog {
		if a.ID == "" {
			return fmt.Errorf("%w: achievement %q has no id", ErrUnknownAchievementRule, a.Name)
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate achievement id %q", ErrUnknownAchievementRule, a.ID)
		}
		seen[a.ID] = true

		switch a.Rule {
		case entity.RuleConsecutiveDays, entity.RuleSimultaneousHabits, entity.RuleCumulativeDays:
		default:
			return fmt.Errorf("%w: %q (achievement %s)", ErrUnknownAchievementRule, a.Rule, a.ID)
		}
		if a.Requirement < 1 {
			return fmt.Errorf("%w: achievement %s requires a positive requirement, got %d", ErrUnknownAchievementRule, a.ID, a.Requirement)
		}
	}
	return nil
}

// EvaluateAchievements computes the user's state for every catalog entry as of asOf.
//
// Each rule records the first day its threshold was met, so an unlock stays put when the
// history grows and UnlockedAt never drifts toward "now".
//
// consecutive_days counts perfect days: days on which every habit active that day was
// completed. A day with no active habits breaks the run.
func EvaluateAchievements(catalog []entity.Achievement, habits []entity.Habit, checkIns []entity.CheckIn, asOf entity.Date) (map[string]entity.AchievementState, error) {
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	h, err := buildHistory(habits, checkIns)
	if err != nil {
		return nil, err
	}

	return h.timeline(asOf).evaluate(catalog), nil
}

// timeline holds milestones found by a single forward scan of the history.
// Index k of each slice is the first day the metric reached k+1.
type timeline struct {
	perfectRun    []entity.Date
	heldHabits    []entity.Date
	completedDays []entity.Date

	currentPerfect int
	maxHeld        int
}

func (h *history) timeline(asOf entity.Date) *timeline {
	t := &timeline{}

	first, ok := h.earliest()
	if !ok || first.After(asOf) {
		return t
	}

	run, prevRun := 0, 0
	for d := first; !d.After(asOf); d = d.AddDays(1) {
		s := h.summary(d)

		prevRun = run
		if s.TotalHabits > 0 && s.CompletedCount == s.TotalHabits {
			run++
			if run > len(t.perfectRun) {
				t.perfectRun = append(t.perfectRun, d)
			}
		} else {
			run = 0
		}

		for len(t.heldHabits) < s.TotalHabits {
			t.heldHabits = append(t.heldHabits, d)
		}

		if s.CompletedCount > 0 {
			t.completedDays = append(t.completedDays, d)
		}
	}

	// run ends at asOf; prevRun ends the day before and covers an unchecked today
	if run > 0 {
		t.currentPerfect = run
	} else {
		t.currentPerfect = prevRun
	}
	t.maxHeld = len(t.heldHabits)

	return t
}

func (t *timeline) evaluate(catalog []entity.Achievement) map[string]entity.AchievementState {
	states := make(map[string]entity.AchievementState, len(catalog))
	for _, a := range catalog {
		var milestones []entity.Date
		var current int

		switch a.Rule {
		case entity.RuleConsecutiveDays:
			milestones, current = t.perfectRun, t.currentPerfect
		case entity.RuleSimultaneousHabits:
			milestones, current = t.heldHabits, t.maxHeld
		case entity.RuleCumulativeDays:
			milestones, current = t.completedDays, len(t.completedDays)
		}

		state := entity.AchievementState{Progress: percent(current, a.Requirement)}
		if len(milestones) >= a.Requirement {
			at := milestones[a.Requirement-1]
			state.Unlocked = true
			state.UnlockedAt = &at
			state.Progress = 100
		}
		states[a.ID] = state
	}
	return states
}
