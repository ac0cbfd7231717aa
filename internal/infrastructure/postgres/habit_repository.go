package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/repository"
)

const habitColumns = `id, user_id, name, emoji, reminder, created_on, deleted_on, updated_at`

type habitRepository struct {
	pool *pgxpool.Pool
}

// NewHabitRepository creates a new PostgreSQL habit repository
func NewHabitRepository(pool *pgxpool.Pool) repository.HabitRepository {
	return &habitRepository{pool: pool}
}

func (r *habitRepository) Create(ctx context.Context, habit *entity.Habit) error {
	id, err := uuid.Parse(habit.ID)
	if err != nil {
		return fmt.Errorf("invalid habit id %q: %w", habit.ID, err)
	}

	query := `
		INSERT INTO habits (
			id, user_id, name, emoji, reminder, created_on, deleted_on, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $8
		)
	`

	_, err = r.pool.Exec(ctx, query,
		id, habit.UserID, habit.Name, habit.Emoji, habit.Reminder,
		habit.CreatedAt.Time(), dateParam(habit.DeletedAt), habit.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	return nil
}

func (r *habitRepository) GetByIDAndUserID(ctx context.Context, habitID, userID string) (*entity.Habit, error) {
	id, err := uuid.Parse(habitID)
	if err != nil {
		return nil, fmt.Errorf("habit %q: %w", habitID, entity.ErrNotFound)
	}

	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	habit, err := scanHabit(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit %s: %w", habitID, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

func (r *habitRepository) ListByUserID(ctx context.Context, userID string, includeDeleted bool) ([]*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`

	if !includeDeleted {
		query += " AND deleted_on IS NULL"
	}

	query += " ORDER BY created_on ASC, created_at ASC"

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}
	defer rows.Close()

	var habits []*entity.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return habits, nil
}

func (r *habitRepository) Update(ctx context.Context, habit *entity.Habit) error {
	id, err := uuid.Parse(habit.ID)
	if err != nil {
		return fmt.Errorf("habit %q: %w", habit.ID, entity.ErrNotFound)
	}

	query := `
		UPDATE habits SET
			name = $1,
			emoji = $2,
			reminder = $3,
			updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		habit.Name, habit.Emoji, habit.Reminder, habit.UpdatedAt, id, habit.UserID,
	)

	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit %s: %w", habit.ID, entity.ErrNotFound)
	}

	return nil
}

func (r *habitRepository) Delete(ctx context.Context, habitID, userID string, on entity.Date) error {
	id, err := uuid.Parse(habitID)
	if err != nil {
		return fmt.Errorf("habit %q: %w", habitID, entity.ErrNotFound)
	}

	// GREATEST keeps deleted_on >= created_on for a habit created "tomorrow" in another zone
	query := `
		UPDATE habits SET
			deleted_on = GREATEST($1::date, created_on),
			updated_at = $2
		WHERE id = $3 AND user_id = $4 AND deleted_on IS NULL
	`

	result, err := r.pool.Exec(ctx, query, on.Time(), time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit %s: %w", habitID, entity.ErrNotFound)
	}

	return nil
}

func (r *habitRepository) ListUserIDsWithActivitySince(ctx context.Context, since time.Time) ([]string, error) {
	query := `
		SELECT user_id FROM check_ins WHERE recorded_at > $1
		UNION
		SELECT user_id FROM habits WHERE created_at > $1 OR updated_at > $1
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get active users: %w", err)
	}
	defer rows.Close()

	userIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan active users: %w", err)
	}

	return userIDs, nil
}

func scanHabit(row pgx.Row) (*entity.Habit, error) {
	var (
		id        uuid.UUID
		createdOn time.Time
		deletedOn *time.Time
	)

	habit := &entity.Habit{}
	err := row.Scan(
		&id, &habit.UserID, &habit.Name, &habit.Emoji, &habit.Reminder,
		&createdOn, &deletedOn, &habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	habit.ID = id.String()
	habit.CreatedAt = entity.DateOf(createdOn)
	if deletedOn != nil {
		d := entity.DateOf(*deletedOn)
		habit.DeletedAt = &d
	}

	return habit, nil
}

func dateParam(d *entity.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time()
	return &t
}
