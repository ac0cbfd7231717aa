package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/repository"
)

type achievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository creates a new PostgreSQL unlock repository
func NewAchievementRepository(pool *pgxpool.Pool) repository.AchievementRepository {
	return &achievementRepository{pool: pool}
}

func (r *achievementRepository) ListUnlocked(ctx context.Context, userID string) ([]entity.UnlockedAchievement, error) {
	query := `
		SELECT achievement_id, unlocked_on
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_on ASC, achievement_id ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unlocked achievements: %w", err)
	}
	defer rows.Close()

	var unlocked []entity.UnlockedAchievement
	for rows.Next() {
		var on time.Time
		u := entity.UnlockedAchievement{UserID: userID}
		if err := rows.Scan(&u.AchievementID, &on); err != nil {
			return nil, fmt.Errorf("failed to scan unlocked achievement: %w", err)
		}
		u.UnlockedAt = entity.DateOf(on)
		unlocked = append(unlocked, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unlocked achievements: %w", err)
	}

	return unlocked, nil
}

func (r *achievementRepository) RecordUnlock(ctx context.Context, unlock entity.UnlockedAchievement) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_on)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, unlock.UserID, unlock.AchievementID, unlock.UnlockedAt.Time())
	if err != nil {
		return false, fmt.Errorf("failed to record unlock: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
