package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/repository"
	"github.com/tedrenliv/habit-tracker/internal/domain/service"
	"github.com/tedrenliv/habit-tracker/internal/logger"
)

type habitService struct {
	habitRepo   repository.HabitRepository
	checkInRepo repository.CheckInRepository
	events      EventPublisher
	cal         calendar
}

// NewHabitService creates a new habit service. Days are calendar days in loc.
func NewHabitService(
	habitRepo repository.HabitRepository,
	checkInRepo repository.CheckInRepository,
	events EventPublisher,
	clock Clock,
	loc *time.Location,
) service.HabitService {
	return &habitService{
		habitRepo:   habitRepo,
		checkInRepo: checkInRepo,
		events:      events,
		cal:         newCalendar(clock, loc),
	}
}

func (s *habitService) CreateHabit(ctx context.Context, userID, name, emoji string, reminder *string) (*entity.Habit, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	emoji, err = normalizeEmoji(emoji)
	if err != nil {
		return nil, err
	}
	reminder, err = normalizeReminder(reminder)
	if err != nil {
		return nil, err
	}

	habit := &entity.Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Emoji:     emoji,
		Reminder:  reminder,
		CreatedAt: s.cal.today(),
		UpdatedAt: s.cal.now(),
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	logger.Info("Habit created", "user_id", userID, "habit_id", habit.ID)
	publish(ctx, s.events, entity.Event{
		Type:       entity.EventHabitCreated,
		UserID:     userID,
		OccurredAt: habit.UpdatedAt,
		Attributes: map[string]any{"habit_id": habit.ID, "name": habit.Name},
	})

	return habit, nil
}

func (s *habitService) GetHabit(ctx context.Context, habitID, userID string) (*entity.Habit, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *habitService) ListHabits(ctx context.Context, userID string, includeDeleted bool) ([]*entity.Habit, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	return s.habitRepo.ListByUserID(ctx, userID, includeDeleted)
}

func (s *habitService) UpdateHabit(ctx context.Context, habitID, userID string, name, emoji, reminder *string) (*entity.Habit, error) {
	habit, err := s.GetHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	if habit.IsDeleted() {
		return nil, fmt.Errorf("%w: habit %s is deleted", entity.ErrValidation, habitID)
	}

	// Update fields if provided
	if name != nil {
		if habit.Name, err = normalizeName(*name); err != nil {
			return nil, err
		}
	}

	if emoji != nil {
		if habit.Emoji, err = normalizeEmoji(*emoji); err != nil {
			return nil, err
		}
	}

	if reminder != nil {
		if habit.Reminder, err = normalizeReminder(reminder); err != nil {
			return nil, err
		}
	}

	habit.UpdatedAt = s.cal.now()

	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	publish(ctx, s.events, entity.Event{
		Type:       entity.EventHabitUpdated,
		UserID:     userID,
		OccurredAt: habit.UpdatedAt,
		Attributes: map[string]any{"habit_id": habit.ID},
	})

	return habit, nil
}

func (s *habitService) DeleteHabit(ctx context.Context, habitID, userID string) error {
	// Verify ownership
	if _, err := s.GetHabit(ctx, habitID, userID); err != nil {
		return err
	}

	today := s.cal.today()
	if err := s.habitRepo.Delete(ctx, habitID, userID, today); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	logger.Info("Habit deleted", "user_id", userID, "habit_id", habitID, "on", today)
	publish(ctx, s.events, entity.Event{
		Type:       entity.EventHabitDeleted,
		UserID:     userID,
		OccurredAt: s.cal.now(),
		Attributes: map[string]any{"habit_id": habitID, "deleted_on": today.String()},
	})

	return nil
}

func (s *habitService) RecordCheckIn(ctx context.Context, userID, habitID string, date entity.Date, completed bool) (*entity.CheckIn, error) {
	habit, err := s.GetHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	if date.After(s.cal.latest()) {
		return nil, fmt.Errorf("%w: cannot check in for future date %s", entity.ErrValidation, date)
	}
	if !habit.ActiveOn(date) {
		return nil, fmt.Errorf("%w: habit %s is not active on %s", entity.ErrValidation, habitID, date)
	}

	checkIn := &entity.CheckIn{
		HabitID:   habitID,
		Date:      date,
		Completed: completed,
	}

	if err := s.checkInRepo.Upsert(ctx, userID, checkIn); err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}

	logger.Debug("Check-in recorded", "user_id", userID, "habit_id", habitID, "date", date, "completed", completed)
	publish(ctx, s.events, entity.Event{
		Type:       entity.EventCheckInRecorded,
		UserID:     userID,
		OccurredAt: checkIn.RecordedAt,
		Attributes: map[string]any{
			"habit_id":  habitID,
			"date":      date.String(),
			"completed": completed,
		},
	})

	return checkIn, nil
}

func (s *habitService) ListCheckIns(ctx context.Context, userID, habitID string, start, end entity.Date) ([]entity.CheckIn, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", entity.ErrValidation, start, end)
	}

	// Verify ownership
	if _, err := s.GetHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}

	return s.checkInRepo.ListByHabitID(ctx, habitID, start, end)
}
