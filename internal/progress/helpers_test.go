package progress

import (
	"math/rand"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

func day(s string) entity.Date {
	return entity.MustParseDate(s)
}

func datePtr(s string) *entity.Date {
	d := day(s)
	return &d
}

func habit(id, created string) entity.Habit {
	return entity.Habit{ID: id, Name: id, Emoji: "✅", CreatedAt: day(created)}
}

// completedRun returns completed check-ins for every day in [from, to]
func completedRun(habitID, from, to string) []entity.CheckIn {
	var out []entity.CheckIn
	for d := day(from); !d.After(day(to)); d = d.AddDays(1) {
		out = append(out, entity.CheckIn{HabitID: habitID, Date: d, Completed: true})
	}
	return out
}

func checkIn(habitID, date string, completed bool) entity.CheckIn {
	return entity.CheckIn{HabitID: habitID, Date: day(date), Completed: completed}
}

func concat(parts ...[]entity.CheckIn) []entity.CheckIn {
	var out []entity.CheckIn
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// randomHistory builds a deterministic pseudo-random set of habits and check-ins
// spanning the 60 days starting at base.
func randomHistory(seed int64, base entity.Date) ([]entity.Habit, []entity.CheckIn) {
	rng := rand.New(rand.NewSource(seed))

	habits := make([]entity.Habit, 1+rng.Intn(4))
	for i := range habits {
		habits[i] = entity.Habit{
			ID:        string(rune('a' + i)),
			Name:      "habit",
			CreatedAt: base.AddDays(rng.Intn(20)),
		}
		if rng.Intn(4) == 0 {
			deleted := habits[i].CreatedAt.AddDays(10 + rng.Intn(30))
			habits[i].DeletedAt = &deleted
		}
	}

	var checkIns []entity.CheckIn
	for n := 0; n < 120; n++ {
		h := habits[rng.Intn(len(habits))]
		checkIns = append(checkIns, entity.CheckIn{
			HabitID:   h.ID,
			Date:      base.AddDays(rng.Intn(60)),
			Completed: rng.Intn(5) != 0,
		})
	}

	return habits, checkIns
}

var testCatalog = []entity.Achievement{
	{ID: "beginner", Name: "Beginner", Requirement: 7, Rule: entity.RuleCumulativeDays},
	{ID: "perfect-week", Name: "Perfect Week", Requirement: 7, Rule: entity.RuleConsecutiveDays},
	{ID: "trio", Name: "Trio Master", Requirement: 3, Rule: entity.RuleSimultaneousHabits},
}
