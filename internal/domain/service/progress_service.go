package service

import (
	"context"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/progress"
)

// ProgressService defines the interface for derived progress: summaries, streaks and achievements
type ProgressService interface {
	// Today returns the current calendar day in the configured timezone
	Today() entity.Date

	// Snapshot computes the user's full progress view as of a day
	Snapshot(ctx context.Context, userID string, asOf entity.Date) (*progress.Snapshot, error)

	// DailySummaries returns one summary per day in [start, end]
	DailySummaries(ctx context.Context, userID string, start, end entity.Date) ([]entity.DailySummary, error)

	// Achievements returns every catalog entry joined with the user's state
	Achievements(ctx context.Context, userID string, asOf entity.Date) ([]entity.AchievementStatus, error)

	// HabitStats returns streak and completion figures for one habit
	HabitStats(ctx context.Context, userID, habitID string, asOf entity.Date) (*progress.HabitStats, error)

	// SweepUser evaluates achievements as of today and records new unlocks
	SweepUser(ctx context.Context, userID string) ([]entity.UnlockedAchievement, error)
}
