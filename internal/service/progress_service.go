package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/repository"
	"github.com/tedrenliv/habit-tracker/internal/domain/service"
	"github.com/tedrenliv/habit-tracker/internal/logger"
	"github.com/tedrenliv/habit-tracker/internal/progress"
)

// maxSummaryDays bounds a single daily-summaries request (about ten years)
const maxSummaryDays = 3660

type progressService struct {
	engine          *progress.Engine
	habitRepo       repository.HabitRepository
	checkInRepo     repository.CheckInRepository
	achievementRepo repository.AchievementRepository
	cache           SnapshotCache
	events          EventPublisher
	cal             calendar
}

// NewProgressService creates a new progress service. cache may be nil.
func NewProgressService(
	engine *progress.Engine,
	habitRepo repository.HabitRepository,
	checkInRepo repository.CheckInRepository,
	achievementRepo repository.AchievementRepository,
	cache SnapshotCache,
	events EventPublisher,
	clock Clock,
	loc *time.Location,
) service.ProgressService {
	return &progressService{
		engine:          engine,
		habitRepo:       habitRepo,
		checkInRepo:     checkInRepo,
		achievementRepo: achievementRepo,
		cache:           cache,
		events:          events,
		cal:             newCalendar(clock, loc),
	}
}

func (s *progressService) Today() entity.Date {
	return s.cal.today()
}

func (s *progressService) Snapshot(ctx context.Context, userID string, asOf entity.Date) (*progress.Snapshot, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateAsOf(asOf, s.cal.latest()); err != nil {
		return nil, err
	}

	habits, checkIns, err := s.load(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	snap, err := s.computeSnapshot(ctx, userID, habits, checkIns, asOf)
	if err != nil {
		return nil, err
	}

	if err := s.settleUnlocks(ctx, userID, snap.AchievementStates, asOf); err != nil {
		return nil, err
	}

	return snap, nil
}

func (s *progressService) DailySummaries(ctx context.Context, userID string, start, end entity.Date) ([]entity.DailySummary, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", progress.ErrInvalidRange, start, end)
	}
	if start.DaysUntil(end) >= maxSummaryDays {
		return nil, fmt.Errorf("%w: at most %d days per request", progress.ErrInvalidRange, maxSummaryDays)
	}

	habits, err := s.habits(ctx, userID)
	if err != nil {
		return nil, err
	}

	checkIns, err := s.checkInRepo.ListByUserID(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	return s.engine.DailySummaries(habits, checkIns, start, end)
}

func (s *progressService) Achievements(ctx context.Context, userID string, asOf entity.Date) ([]entity.AchievementStatus, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateAsOf(asOf, s.cal.latest()); err != nil {
		return nil, err
	}

	habits, checkIns, err := s.load(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	states, err := s.engine.Achievements(habits, checkIns, asOf)
	if err != nil {
		return nil, err
	}

	if err := s.settleUnlocks(ctx, userID, states, asOf); err != nil {
		return nil, err
	}

	catalog := s.engine.Catalog()
	out := make([]entity.AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, entity.AchievementStatus{Achievement: a, AchievementState: states[a.ID]})
	}

	return out, nil
}

func (s *progressService) HabitStats(ctx context.Context, userID, habitID string, asOf entity.Date) (*progress.HabitStats, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateAsOf(asOf, s.cal.latest()); err != nil {
		return nil, err
	}

	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	var checkIns []entity.CheckIn
	if !habit.CreatedAt.After(asOf) {
		checkIns, err = s.checkInRepo.ListByHabitID(ctx, habitID, habit.CreatedAt, asOf)
		if err != nil {
			return nil, err
		}
	}

	stats, err := s.engine.HabitStats(*habit, checkIns, asOf)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// SweepUser is run by the scheduler so unlocks are recorded even when no client asks
func (s *progressService) SweepUser(ctx context.Context, userID string) ([]entity.UnlockedAchievement, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	asOf := s.cal.today()
	habits, checkIns, err := s.load(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	states, err := s.engine.Achievements(habits, checkIns, asOf)
	if err != nil {
		return nil, err
	}

	persisted, err := s.achievementRepo.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}

	return s.recordUnlocks(ctx, mergeUnlocks(userID, states, persisted, asOf))
}

// load returns every habit of the user (deleted ones included) and all check-ins up to asOf
func (s *progressService) load(ctx context.Context, userID string, asOf entity.Date) ([]entity.Habit, []entity.CheckIn, error) {
	habits, err := s.habits(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(habits) == 0 {
		return habits, nil, nil
	}

	earliest := habits[0].CreatedAt
	for _, h := range habits[1:] {
		if h.CreatedAt.Before(earliest) {
			earliest = h.CreatedAt
		}
	}
	if earliest.After(asOf) {
		return habits, nil, nil
	}

	checkIns, err := s.checkInRepo.ListByUserID(ctx, userID, earliest, asOf)
	if err != nil {
		return nil, nil, err
	}

	return habits, checkIns, nil
}

func (s *progressService) habits(ctx context.Context, userID string) ([]entity.Habit, error) {
	ptrs, err := s.habitRepo.ListByUserID(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	habits := make([]entity.Habit, 0, len(ptrs))
	for _, h := range ptrs {
		habits = append(habits, *h)
	}
	return habits, nil
}

// computeSnapshot runs the engine, memoized by a fingerprint of its inputs
func (s *progressService) computeSnapshot(ctx context.Context, userID string, habits []entity.Habit, checkIns []entity.CheckIn, asOf entity.Date) (*progress.Snapshot, error) {
	if s.cache == nil {
		return s.engine.Snapshot(habits, checkIns, asOf)
	}

	fp, err := fingerprint(asOf, s.engine.WindowDays(), s.engine.Catalog(), habits, checkIns)
	if err != nil {
		return nil, err
	}

	snap, ok, err := s.cache.Get(ctx, userID, fp)
	if err != nil {
		logger.Warn("Snapshot cache read failed", "user_id", userID, "err", err)
	} else if ok {
		return snap, nil
	}

	snap, err = s.engine.Snapshot(habits, checkIns, asOf)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, userID, fp, snap); err != nil {
		logger.Warn("Snapshot cache write failed", "user_id", userID, "err", err)
	}

	return snap, nil
}

// settleUnlocks folds stored unlocks into states and stores the new ones. A failure to
// store is logged: the states returned are still correct for the history given.
func (s *progressService) settleUnlocks(ctx context.Context, userID string, states map[string]entity.AchievementState, asOf entity.Date) error {
	persisted, err := s.achievementRepo.ListUnlocked(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load unlocked achievements: %w", err)
	}

	fresh := mergeUnlocks(userID, states, persisted, asOf)
	if _, err := s.recordUnlocks(ctx, fresh); err != nil {
		logger.Error("Failed to record unlocks", "user_id", userID, "err", err)
	}

	return nil
}

func (s *progressService) recordUnlocks(ctx context.Context, fresh []entity.UnlockedAchievement) ([]entity.UnlockedAchievement, error) {
	var recorded []entity.UnlockedAchievement
	for _, u := range fresh {
		inserted, err := s.achievementRepo.RecordUnlock(ctx, u)
		if err != nil {
			return recorded, err
		}
		if !inserted {
			continue
		}

		recorded = append(recorded, u)
		logger.Info("Achievement unlocked", "user_id", u.UserID, "achievement_id", u.AchievementID, "on", u.UnlockedAt)
		publish(ctx, s.events, entity.Event{
			Type:       entity.EventAchievementUnlocked,
			UserID:     u.UserID,
			OccurredAt: s.cal.now(),
			Attributes: map[string]any{
				"achievement_id": u.AchievementID,
				"unlocked_at":    u.UnlockedAt.String(),
			},
		})
	}
	return recorded, nil
}

// mergeUnlocks applies stored unlocks dated on or before asOf to states, so an achievement
// never locks again after history is rewritten. It returns computed unlocks not yet stored.
func mergeUnlocks(userID string, states map[string]entity.AchievementState, persisted []entity.UnlockedAchievement, asOf entity.Date) []entity.UnlockedAchievement {
	stored := make(map[string]bool, len(persisted))
	for _, p := range persisted {
		stored[p.AchievementID] = true

		st, ok := states[p.AchievementID]
		if !ok || p.UnlockedAt.After(asOf) {
			continue
		}
		if !st.Unlocked || p.UnlockedAt.Before(*st.UnlockedAt) {
			at := p.UnlockedAt
			states[p.AchievementID] = entity.AchievementState{Progress: 100, Unlocked: true, UnlockedAt: &at}
		}
	}

	var fresh []entity.UnlockedAchievement
	for id, st := range states {
		if st.Unlocked && !stored[id] {
			fresh = append(fresh, entity.UnlockedAchievement{UserID: userID, AchievementID: id, UnlockedAt: *st.UnlockedAt})
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].AchievementID < fresh[j].AchievementID })

	return fresh
}

// fingerprint hashes everything a snapshot depends on
func fingerprint(asOf entity.Date, windowDays int, catalog []entity.Achievement, habits []entity.Habit, checkIns []entity.CheckIn) (string, error) {
	type habitKey struct {
		ID        string       `json:"i"`
		CreatedAt entity.Date  `json:"c"`
		DeletedAt *entity.Date `json:"d,omitempty"`
	}
	type checkInKey struct {
		HabitID   string      `json:"h"`
		Date      entity.Date `json:"d"`
		Completed bool        `json:"x"`
	}

	payload := struct {
		AsOf     entity.Date          `json:"asOf"`
		Window   int                  `json:"window"`
		Catalog  []entity.Achievement `json:"catalog"`
		Habits   []habitKey           `json:"habits"`
		CheckIns []checkInKey         `json:"checkIns"`
	}{
		AsOf:     asOf,
		Window:   windowDays,
		Catalog:  catalog,
		Habits:   make([]habitKey, 0, len(habits)),
		CheckIns: make([]checkInKey, 0, len(checkIns)),
	}
	for _, h := range habits {
		payload.Habits = append(payload.Habits, habitKey{h.ID, h.CreatedAt, h.DeletedAt})
	}
	for _, c := range checkIns {
		payload.CheckIns = append(payload.CheckIns, checkInKey{c.HabitID, c.Date, c.Completed})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint snapshot inputs: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
