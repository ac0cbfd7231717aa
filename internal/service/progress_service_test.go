package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tedrenliv/habit-tracker/internal/catalog"
	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/memory"
	"github.com/tedrenliv/habit-tracker/internal/progress"
	"github.com/tedrenliv/habit-tracker/internal/testutil"
)

// weekOfReading sets up one habit completed every day from 2024-01-02 to 2024-01-08
func weekOfReading(t *testing.T) (*fixture, *entity.Habit) {
	t.Helper()
	f := newFixture(t, at("2024-01-02", 10))
	habit, err := f.habits.CreateHabit(context.Background(), "u1", "Read", "📚", nil)
	require.NoError(t, err)
	f.checkInDaily(t, "u1", habit.ID, "2024-01-02", "2024-01-08")
	return f, habit
}

func TestSnapshot_UnlocksAndRecords(t *testing.T) {
	ctx := context.Background()
	f, habit := weekOfReading(t)

	snap, err := f.progress.Snapshot(ctx, "u1", day("2024-01-08"))
	require.NoError(t, err)

	assert.Equal(t, 7, snap.PerHabitStreak[habit.ID])
	assert.Equal(t, 100, snap.TodayCompletionRate)

	for _, id := range []string{"beginner", "perfect-week"} {
		st := snap.AchievementStates[id]
		require.True(t, st.Unlocked, id)
		assert.Equal(t, day("2024-01-08"), *st.UnlockedAt, id)
	}
	assert.False(t, snap.AchievementStates["trio-master"].Unlocked)
	assert.Equal(t, 33, snap.AchievementStates["trio-master"].Progress)

	stored, err := f.store.Achievements().ListUnlocked(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	unlocked := f.events.ofType(entity.EventAchievementUnlocked)
	require.Len(t, unlocked, 2)
	assert.Equal(t, "beginner", unlocked[0].Attributes["achievement_id"])
	assert.Equal(t, "perfect-week", unlocked[1].Attributes["achievement_id"])

	// same inputs: served from cache, nothing new to record
	_, err = f.progress.Snapshot(ctx, "u1", day("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)
	assert.Len(t, f.events.ofType(entity.EventAchievementUnlocked), 2)
}

func TestSnapshot_UnlockSurvivesRewrittenHistory(t *testing.T) {
	ctx := context.Background()
	f, habit := weekOfReading(t)

	_, err := f.progress.Snapshot(ctx, "u1", day("2024-01-08"))
	require.NoError(t, err)

	_, err = f.habits.RecordCheckIn(ctx, "u1", habit.ID, day("2024-01-05"), false)
	require.NoError(t, err)

	snap, err := f.progress.Snapshot(ctx, "u1", day("2024-01-08"))
	require.NoError(t, err)

	assert.Equal(t, 3, snap.PerHabitStreak[habit.ID])
	for _, id := range []string{"beginner", "perfect-week"} {
		st := snap.AchievementStates[id]
		assert.True(t, st.Unlocked, id)
		assert.Equal(t, 100, st.Progress, id)
		assert.Equal(t, day("2024-01-08"), *st.UnlockedAt, id)
	}

	// a stored unlock does not apply before the day it happened
	earlier, err := f.progress.Snapshot(ctx, "u1", day("2024-01-06"))
	require.NoError(t, err)
	assert.False(t, earlier.AchievementStates["beginner"].Unlocked)
	assert.Nil(t, earlier.AchievementStates["beginner"].UnlockedAt)

	assert.Len(t, f.events.ofType(entity.EventAchievementUnlocked), 2)
}

func TestSnapshot_CacheFailureFallsBack(t *testing.T) {
	f, habit := weekOfReading(t)
	f.cache.err = errCacheDown

	snap, err := f.progress.Snapshot(context.Background(), "u1", day("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 7, snap.PerHabitStreak[habit.ID])
	assert.Equal(t, 1, f.cache.gets)
	assert.Zero(t, f.cache.hits)
}

func TestSnapshot_WithoutCache(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewStubClock(at("2024-01-02", 10))
	store := memory.New().WithClock(clock.Now)
	engine, err := progress.NewEngine(catalog.Default(), 30)
	require.NoError(t, err)

	habits := NewHabitService(store.Habits(), store.CheckIns(), NopPublisher{}, clock, time.UTC)
	svc := NewProgressService(engine, store.Habits(), store.CheckIns(), store.Achievements(), nil, NopPublisher{}, clock, time.UTC)

	h, err := habits.CreateHabit(ctx, "u1", "Walk", "🚶", nil)
	require.NoError(t, err)
	_, err = habits.RecordCheckIn(ctx, "u1", h.ID, day("2024-01-02"), true)
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, "u1", day("2024-01-02"))
	require.NoError(t, err)
	assert.Len(t, snap.DailySummaries, 30)
	assert.Equal(t, 1, snap.PerHabitStreak[h.ID])
}

func TestSnapshot_NoHabits(t *testing.T) {
	f := newFixture(t, at("2024-01-02", 10))

	snap, err := f.progress.Snapshot(context.Background(), "nobody", day("2024-01-02"))
	require.NoError(t, err)
	assert.Empty(t, snap.PerHabitStreak)
	assert.Zero(t, snap.TodayCompletionRate)
	assert.Empty(t, f.events.ofType(entity.EventAchievementUnlocked))
}

func TestSnapshot_RequiresUser(t *testing.T) {
	f := newFixture(t, at("2024-01-02", 10))
	_, err := f.progress.Snapshot(context.Background(), " ", day("2024-01-02"))
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestProgress_RejectsFarFutureAsOf(t *testing.T) {
	ctx := context.Background()
	f, habit := weekOfReading(t)

	_, err := f.progress.Snapshot(ctx, "u1", day("9999-12-31"))
	assert.ErrorIs(t, err, entity.ErrValidation)
	_, err = f.progress.Achievements(ctx, "u1", day("2024-01-10"))
	assert.ErrorIs(t, err, entity.ErrValidation)
	_, err = f.progress.HabitStats(ctx, "u1", habit.ID, day("2024-01-10"))
	assert.ErrorIs(t, err, entity.ErrValidation)
	assert.Zero(t, f.cache.gets)

	// tomorrow is still accepted
	_, err = f.progress.Snapshot(ctx, "u1", day("2024-01-09"))
	assert.NoError(t, err)
}

func TestAchievements_CatalogOrder(t *testing.T) {
	f, _ := weekOfReading(t)

	list, err := f.progress.Achievements(context.Background(), "u1", day("2024-01-08"))
	require.NoError(t, err)

	require.Len(t, list, len(catalog.Default()))
	for i, a := range catalog.Default() {
		assert.Equal(t, a.ID, list[i].ID)
	}
	assert.True(t, list[0].Unlocked)
	assert.Equal(t, 23, list[1].Progress) // persister: 7 of 30
}

func TestSweepUser(t *testing.T) {
	ctx := context.Background()
	f, _ := weekOfReading(t)

	recorded, err := f.progress.SweepUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	assert.Equal(t, "beginner", recorded[0].AchievementID)
	assert.Equal(t, "perfect-week", recorded[1].AchievementID)
	assert.Equal(t, day("2024-01-08"), recorded[0].UnlockedAt)

	recorded, err = f.progress.SweepUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, recorded)
	assert.Len(t, f.events.ofType(entity.EventAchievementUnlocked), 2)
}

func TestDailySummaries(t *testing.T) {
	ctx := context.Background()
	f, _ := weekOfReading(t)

	got, err := f.progress.DailySummaries(ctx, "u1", day("2024-01-01"), day("2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, []entity.DailySummary{
		{Date: day("2024-01-01"), CompletedCount: 0, TotalHabits: 0},
		{Date: day("2024-01-02"), CompletedCount: 1, TotalHabits: 1},
		{Date: day("2024-01-03"), CompletedCount: 1, TotalHabits: 1},
	}, got)

	_, err = f.progress.DailySummaries(ctx, "u1", day("2024-01-03"), day("2024-01-01"))
	assert.ErrorIs(t, err, progress.ErrInvalidRange)

	start := day("2000-01-01")
	_, err = f.progress.DailySummaries(ctx, "u1", start, start.AddDays(maxSummaryDays))
	assert.ErrorIs(t, err, progress.ErrInvalidRange)
}

func TestHabitStats(t *testing.T) {
	ctx := context.Background()
	f, habit := weekOfReading(t)

	stats, err := f.progress.HabitStats(ctx, "u1", habit.ID, day("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 7, stats.CurrentStreak)
	assert.Equal(t, 7, stats.LongestStreak)
	assert.Equal(t, 7, stats.TotalCompleted)
	assert.Equal(t, 100, stats.CompletionRate)

	_, err = f.progress.HabitStats(ctx, "u2", habit.ID, day("2024-01-08"))
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestMergeUnlocks(t *testing.T) {
	jan8 := day("2024-01-08")
	states := map[string]entity.AchievementState{
		"beginner":     {Progress: 100, Unlocked: true, UnlockedAt: &jan8},
		"perfect-week": {Progress: 40},
		"trio-master":  {Progress: 100, Unlocked: true, UnlockedAt: &jan8},
	}
	persisted := []entity.UnlockedAchievement{
		{UserID: "u1", AchievementID: "perfect-week", UnlockedAt: day("2024-01-03")},
		{UserID: "u1", AchievementID: "trio-master", UnlockedAt: day("2024-01-05")},
		{UserID: "u1", AchievementID: "warrior", UnlockedAt: day("2024-01-09")},
		{UserID: "u1", AchievementID: "retired", UnlockedAt: day("2024-01-01")},
	}

	fresh := mergeUnlocks("u1", states, persisted, jan8)

	assert.Equal(t, []entity.UnlockedAchievement{
		{UserID: "u1", AchievementID: "beginner", UnlockedAt: jan8},
	}, fresh)
	assert.True(t, states["perfect-week"].Unlocked)
	assert.Equal(t, 100, states["perfect-week"].Progress)
	assert.Equal(t, day("2024-01-03"), *states["perfect-week"].UnlockedAt)
	assert.Equal(t, day("2024-01-05"), *states["trio-master"].UnlockedAt)
	assert.NotContains(t, states, "retired")
	assert.NotContains(t, states, "warrior")
}

func TestFingerprint_ChangesWithInputs(t *testing.T) {
	cat := catalog.Default()
	habits := []entity.Habit{{ID: "h1", CreatedAt: day("2024-01-01")}}
	checkIns := []entity.CheckIn{{HabitID: "h1", Date: day("2024-01-01"), Completed: true}}

	base, err := fingerprint(day("2024-01-02"), 90, cat, habits, checkIns)
	require.NoError(t, err)

	same, err := fingerprint(day("2024-01-02"), 90, cat, habits, checkIns)
	require.NoError(t, err)
	assert.Equal(t, base, same)

	otherDay, err := fingerprint(day("2024-01-03"), 90, cat, habits, checkIns)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherDay)

	flipped := []entity.CheckIn{{HabitID: "h1", Date: day("2024-01-01"), Completed: false}}
	otherHistory, err := fingerprint(day("2024-01-02"), 90, cat, habits, flipped)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherHistory)
}
