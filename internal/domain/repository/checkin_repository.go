package repository

import (
	"context"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// CheckInRepository defines the interface for check-in persistence.
// Each habit has at most one stored check-in per day; writes replace it.
type CheckInRepository interface {
	// Upsert inserts or replaces the check-in for (habit, day) and sets RecordedAt
	Upsert(ctx context.Context, userID string, checkIn *entity.CheckIn) error

	// ListByUserID retrieves the user's check-ins dated in [start, end], ordered by day then write time
	ListByUserID(ctx context.Context, userID string, start, end entity.Date) ([]entity.CheckIn, error)

	// ListByHabitID retrieves one habit's check-ins dated in [start, end]
	ListByHabitID(ctx context.Context, habitID string, start, end entity.Date) ([]entity.CheckIn, error)
}
