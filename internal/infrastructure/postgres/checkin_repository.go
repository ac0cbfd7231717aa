package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/repository"
)

type checkInRepository struct {
	pool *pgxpool.Pool
}

// NewCheckInRepository creates a new PostgreSQL check-in repository
func NewCheckInRepository(pool *pgxpool.Pool) repository.CheckInRepository {
	return &checkInRepository{pool: pool}
}

func (r *checkInRepository) Upsert(ctx context.Context, userID string, checkIn *entity.CheckIn) error {
	habitID, err := uuid.Parse(checkIn.HabitID)
	if err != nil {
		return fmt.Errorf("habit %q: %w", checkIn.HabitID, entity.ErrNotFound)
	}

	query := `
		INSERT INTO check_ins (habit_id, user_id, check_in_date, completed, recorded_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (habit_id, check_in_date) DO UPDATE SET
			completed = EXCLUDED.completed,
			recorded_at = EXCLUDED.recorded_at
		RETURNING recorded_at
	`

	err = r.pool.QueryRow(ctx, query, habitID, userID, checkIn.Date.Time(), checkIn.Completed).
		Scan(&checkIn.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert check-in: %w", err)
	}

	return nil
}

func (r *checkInRepository) ListByUserID(ctx context.Context, userID string, start, end entity.Date) ([]entity.CheckIn, error) {
	query := `
		SELECT habit_id, check_in_date, completed, recorded_at
		FROM check_ins
		WHERE user_id = $1 AND check_in_date BETWEEN $2 AND $3
		ORDER BY check_in_date ASC, recorded_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID, start.Time(), end.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to get check-ins: %w", err)
	}

	return collectCheckIns(rows)
}

func (r *checkInRepository) ListByHabitID(ctx context.Context, habitID string, start, end entity.Date) ([]entity.CheckIn, error) {
	id, err := uuid.Parse(habitID)
	if err != nil {
		return nil, fmt.Errorf("habit %q: %w", habitID, entity.ErrNotFound)
	}

	query := `
		SELECT habit_id, check_in_date, completed, recorded_at
		FROM check_ins
		WHERE habit_id = $1 AND check_in_date BETWEEN $2 AND $3
		ORDER BY check_in_date ASC
	`

	rows, err := r.pool.Query(ctx, query, id, start.Time(), end.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to get habit check-ins: %w", err)
	}

	return collectCheckIns(rows)
}

func collectCheckIns(rows pgx.Rows) ([]entity.CheckIn, error) {
	defer rows.Close()

	var checkIns []entity.CheckIn
	for rows.Next() {
		var (
			habitID uuid.UUID
			day     time.Time
			c       entity.CheckIn
		)
		if err := rows.Scan(&habitID, &day, &c.Completed, &c.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		c.HabitID = habitID.String()
		c.Date = entity.DateOf(day)
		checkIns = append(checkIns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-ins: %w", err)
	}

	return checkIns, nil
}
