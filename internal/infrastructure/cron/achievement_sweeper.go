package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/repository"
	"github.com/tedrenliv/habit-tracker/internal/domain/service"
	"github.com/tedrenliv/habit-tracker/internal/logger"
)

// ActivitySource lists users whose habits or check-ins changed since a point in time
type ActivitySource interface {
	ListUserIDsWithActivitySince(ctx context.Context, since time.Time) ([]string, error)
}

// UserSweeper records the achievements a user has unlocked as of today
type UserSweeper interface {
	SweepUser(ctx context.Context, userID string) ([]entity.UnlockedAchievement, error)
}

var (
	_ ActivitySource = (repository.HabitRepository)(nil)
	_ UserSweeper    = (service.ProgressService)(nil)
)

// AchievementSweeper periodically records achievements unlocked by recent check-ins,
// so unlock events go out even for users who never open the app
type AchievementSweeper struct {
	activity ActivitySource
	progress UserSweeper
	cron     *cron.Cron
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	lastRun time.Time
	// users whose last sweep failed; retried until they succeed
	pending map[string]struct{}
}

// NewAchievementSweeper creates a new achievement sweeper
func NewAchievementSweeper(activity ActivitySource, progress UserSweeper, checkInterval time.Duration) *AchievementSweeper {
	return &AchievementSweeper{
		activity: activity,
		progress: progress,
		cron:     cron.New(),
		interval: checkInterval,
		now:      time.Now,
		pending:  make(map[string]struct{}),
	}
}

// Start starts the achievement sweeper
func (s *AchievementSweeper) Start() error {
	cronExpr := fmt.Sprintf("@every %s", s.interval.String())

	logger.Info("Starting achievement sweeper", "interval", s.interval)

	_, err := s.cron.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := s.Sweep(ctx); err != nil {
			logger.Error("Achievement sweep failed", "err", err)
		}
	})

	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the achievement sweeper and waits for a running sweep to finish
func (s *AchievementSweeper) Stop() {
	logger.Info("Stopping achievement sweeper")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Achievement sweeper stopped")
}

// Sweep checks every user active since the previous sweep and returns how many
// achievements were newly unlocked. A failing user is logged and retried on the next sweep.
func (s *AchievementSweeper) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	since := s.lastRun
	if since.IsZero() {
		since = started.Add(-s.interval)
	}

	userIDs, err := s.activity.ListUserIDsWithActivitySince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}
	userIDs = s.withPending(userIDs)

	unlocked := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return unlocked, err
		}

		recorded, err := s.progress.SweepUser(ctx, userID)
		if err != nil {
			logger.Error("Failed to sweep user", "user_id", userID, "err", err)
			s.pending[userID] = struct{}{}
			continue
		}
		delete(s.pending, userID)
		unlocked += len(recorded)
	}

	s.lastRun = started
	logger.Debug("Achievement sweep completed", "users", len(userIDs), "unlocked", unlocked)

	return unlocked, nil
}

// withPending adds users left over from failed sweeps, keeping the list sorted and unique
func (s *AchievementSweeper) withPending(userIDs []string) []string {
	if len(s.pending) == 0 {
		return userIDs
	}

	seen := make(map[string]struct{}, len(userIDs)+len(s.pending))
	out := make([]string, 0, len(userIDs)+len(s.pending))
	for _, id := range userIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for id := range s.pending {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
