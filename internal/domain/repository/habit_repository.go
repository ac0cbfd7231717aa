package repository

import (
	"context"
	"time"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// HabitRepository defines the interface for habit persistence
type HabitRepository interface {
	// Create creates a new habit
	Create(ctx context.Context, habit *entity.Habit) error

	// GetByIDAndUserID retrieves a habit by ID and user ID (for authorization).
	// Soft-deleted habits are returned too; entity.ErrNotFound when absent.
	GetByIDAndUserID(ctx context.Context, habitID, userID string) (*entity.Habit, error)

	// ListByUserID retrieves a user's habits ordered by creation day
	ListByUserID(ctx context.Context, userID string, includeDeleted bool) ([]*entity.Habit, error)

	// Update updates display fields and reminder
	Update(ctx context.Context, habit *entity.Habit) error

	// Delete soft deletes a habit (sets deleted_at to the given day)
	Delete(ctx context.Context, habitID, userID string, on entity.Date) error

	// ListUserIDsWithActivitySince returns users with check-ins or habit changes after since
	ListUserIDsWithActivitySince(ctx context.Context, since time.Time) ([]string, error)
}
