package repository

import (
	"context"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// AchievementRepository stores unlock records. Records are never removed.
type AchievementRepository interface {
	// ListUnlocked retrieves every achievement the user has unlocked
	ListUnlocked(ctx context.Context, userID string) ([]entity.UnlockedAchievement, error)

	// RecordUnlock stores an unlock; it returns false when the user already had it
	RecordUnlock(ctx context.Context, unlock entity.UnlockedAchievement) (bool, error)
}
