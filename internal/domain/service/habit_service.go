package service

import (
	"context"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// HabitService defines the interface for habit and check-in business logic
type HabitService interface {
	// CreateHabit creates a new habit starting today
	CreateHabit(ctx context.Context, userID, name, emoji string, reminder *string) (*entity.Habit, error)

	// GetHabit retrieves a habit by ID
	GetHabit(ctx context.Context, habitID, userID string) (*entity.Habit, error)

	// ListHabits retrieves the user's habits
	ListHabits(ctx context.Context, userID string, includeDeleted bool) ([]*entity.Habit, error)

	// UpdateHabit changes display fields; nil leaves a field unchanged, an empty reminder clears it
	UpdateHabit(ctx context.Context, habitID, userID string, name, emoji, reminder *string) (*entity.Habit, error)

	// DeleteHabit soft deletes a habit; its history is kept
	DeleteHabit(ctx context.Context, habitID, userID string) error

	// RecordCheckIn stores the completion flag of a habit for a day, replacing any earlier one
	RecordCheckIn(ctx context.Context, userID, habitID string, date entity.Date, completed bool) (*entity.CheckIn, error)

	// ListCheckIns retrieves one habit's check-ins in [start, end]
	ListCheckIns(ctx context.Context, userID, habitID string, start, end entity.Date) ([]entity.CheckIn, error)
}
