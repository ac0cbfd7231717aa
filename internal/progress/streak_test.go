package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

func TestComputeStreak(t *testing.T) {
	gapped := concat(
		completedRun("h1", "2024-01-01", "2024-01-06"),
		completedRun("h1", "2024-01-08", "2024-01-08"),
	)

	tests := []struct {
		name     string
		checkIns []entity.CheckIn
		asOf     string
		want     int
	}{
		{
			name: "no check-ins",
			asOf: "2024-01-08",
			want: 0,
		},
		{
			name:     "gap before today resets the streak",
			checkIns: gapped,
			asOf:     "2024-01-08",
			want:     1,
		},
		{
			name:     "unchecked today keeps the streak through yesterday",
			checkIns: gapped,
			asOf:     "2024-01-07",
			want:     6,
		},
		{
			name:     "only yesterday completed",
			checkIns: completedRun("h1", "2024-01-07", "2024-01-07"),
			asOf:     "2024-01-08",
			want:     1,
		},
		{
			name:     "today and yesterday completed",
			checkIns: completedRun("h1", "2024-01-07", "2024-01-08"),
			asOf:     "2024-01-08",
			want:     2,
		},
		{
			name: "today explicitly not completed still gets grace",
			checkIns: concat(
				completedRun("h1", "2024-01-05", "2024-01-07"),
				[]entity.CheckIn{checkIn("h1", "2024-01-08", false)},
			),
			asOf: "2024-01-08",
			want: 3,
		},
		{
			name:     "last completion two days ago",
			checkIns: completedRun("h1", "2024-01-01", "2024-01-06"),
			asOf:     "2024-01-08",
			want:     0,
		},
		{
			name: "not completed yesterday stops the walk",
			checkIns: concat(
				completedRun("h1", "2024-01-01", "2024-01-06"),
				[]entity.CheckIn{checkIn("h1", "2024-01-07", false)},
			),
			asOf: "2024-01-08",
			want: 0,
		},
		{
			name: "later duplicate wins",
			checkIns: concat(
				completedRun("h1", "2024-01-05", "2024-01-08"),
				[]entity.CheckIn{checkIn("h1", "2024-01-06", false)},
			),
			asOf: "2024-01-08",
			want: 2,
		},
		{
			name:     "check-ins after asOf are ignored",
			checkIns: completedRun("h1", "2024-01-09", "2024-01-12"),
			asOf:     "2024-01-08",
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStreak(tt.checkIns, day(tt.asOf)))
		})
	}
}

func TestComputeStreak_Idempotent(t *testing.T) {
	checkIns := completedRun("h1", "2024-01-01", "2024-01-20")
	first := ComputeStreak(checkIns, day("2024-01-21"))
	second := ComputeStreak(checkIns, day("2024-01-21"))

	assert.Equal(t, first, second)
	assert.Equal(t, 20, first)
}

func TestHabitStreak_BoundedByAge(t *testing.T) {
	base := day("2024-01-01")
	for seed := int64(1); seed <= 50; seed++ {
		habits, checkIns := randomHistory(seed, base)
		for _, h := range habits {
			var own []entity.CheckIn
			for _, c := range checkIns {
				if c.HabitID == h.ID {
					own = append(own, c)
				}
			}

			for offset := 0; offset < 70; offset += 7 {
				asOf := base.AddDays(offset)
				stats, err := ComputeHabitStats(h, own, asOf)
				require.NoError(t, err)

				assert.GreaterOrEqual(t, stats.CurrentStreak, 0)
				assert.LessOrEqual(t, stats.CurrentStreak, max(0, h.CreatedAt.DaysUntil(asOf)+1),
					"seed %d habit %s asOf %s", seed, h.ID, asOf)
			}
		}
	}
}

func TestComputeCompletionRate(t *testing.T) {
	tests := []struct {
		name     string
		checkIns []entity.CheckIn
		start    string
		end      string
		want     int
	}{
		{
			name:     "half of a ten day window",
			checkIns: completedRun("h1", "2024-01-01", "2024-01-05"),
			start:    "2024-01-01",
			end:      "2024-01-10",
			want:     50,
		},
		{
			name:     "one of three rounds down",
			checkIns: completedRun("h1", "2024-01-02", "2024-01-02"),
			start:    "2024-01-01",
			end:      "2024-01-03",
			want:     33,
		},
		{
			name:     "two of three rounds up",
			checkIns: completedRun("h1", "2024-01-02", "2024-01-03"),
			start:    "2024-01-01",
			end:      "2024-01-03",
			want:     67,
		},
		{
			name:     "single day window",
			checkIns: completedRun("h1", "2024-01-02", "2024-01-02"),
			start:    "2024-01-02",
			end:      "2024-01-02",
			want:     100,
		},
		{
			name: "incomplete check-ins do not count",
			checkIns: []entity.CheckIn{
				checkIn("h1", "2024-01-01", false),
				checkIn("h1", "2024-01-02", true),
			},
			start: "2024-01-01",
			end:   "2024-01-04",
			want:  25,
		},
		{
			name:     "completions outside the window do not count",
			checkIns: completedRun("h1", "2023-12-25", "2024-01-01"),
			start:    "2024-01-01",
			end:      "2024-01-02",
			want:     50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeCompletionRate(tt.checkIns, day(tt.start), day(tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeCompletionRate_InvalidRange(t *testing.T) {
	_, err := ComputeCompletionRate(nil, day("2024-01-05"), day("2024-01-04"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestComputeHabitStats(t *testing.T) {
	h := habit("h1", "2024-01-01")
	checkIns := concat(
		completedRun("h1", "2023-12-30", "2023-12-31"), // before creation
		completedRun("h1", "2024-01-01", "2024-01-04"),
		completedRun("h1", "2024-01-07", "2024-01-09"),
	)

	stats, err := ComputeHabitStats(h, checkIns, day("2024-01-10"))
	require.NoError(t, err)

	assert.Equal(t, "h1", stats.HabitID)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 4, stats.LongestStreak)
	assert.Equal(t, 7, stats.TotalCompleted)
	assert.Equal(t, 70, stats.CompletionRate)
	assert.Equal(t, datePtr("2024-01-01"), stats.FirstCompleted)
	assert.Equal(t, datePtr("2024-01-09"), stats.LastCompleted)
}

func TestComputeHabitStats_DeletedHabit(t *testing.T) {
	h := habit("h1", "2024-01-01")
	h.DeletedAt = datePtr("2024-01-05")

	stats, err := ComputeHabitStats(h, completedRun("h1", "2024-01-01", "2024-01-08"), day("2024-01-10"))
	require.NoError(t, err)

	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 4, stats.LongestStreak)
	assert.Equal(t, 4, stats.TotalCompleted)
	assert.Equal(t, 100, stats.CompletionRate)
}

func TestComputeHabitStats_ForeignCheckIn(t *testing.T) {
	_, err := ComputeHabitStats(habit("h1", "2024-01-01"), completedRun("h2", "2024-01-01", "2024-01-02"), day("2024-01-02"))
	assert.ErrorIs(t, err, ErrMalformedCheckIn)
}
