package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tedrenliv/habit-tracker/internal/catalog"
	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/postgres"
	"github.com/tedrenliv/habit-tracker/internal/progress"
	"github.com/tedrenliv/habit-tracker/internal/service"
)

type SnapshotCmd struct {
	User string `help:"User ID." required:""`
	AsOf string `help:"Evaluation day (YYYY-MM-DD); defaults to today in the configured timezone." name:"as-of"`
}

func (c *SnapshotCmd) Run(ctx *Context) error {
	cfg, err := ctx.Config()
	if err != nil {
		return err
	}
	loc, err := cfg.Progress.Location()
	if err != nil {
		return err
	}

	achievements, err := catalog.Load(cfg.Progress.CatalogPath)
	if err != nil {
		return err
	}
	engine, err := progress.NewEngine(achievements, cfg.Progress.WindowDays)
	if err != nil {
		return err
	}

	pool, err := ctx.connect(context.Background())
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := service.NewProgressService(engine,
		postgres.NewHabitRepository(pool),
		postgres.NewCheckInRepository(pool),
		postgres.NewAchievementRepository(pool),
		nil, service.NopPublisher{}, service.RealClock{}, loc)

	asOf := svc.Today()
	if c.AsOf != "" {
		if asOf, err = entity.ParseDate(c.AsOf); err != nil {
			return err
		}
	}

	snap, err := svc.Snapshot(context.Background(), c.User, asOf)
	if err != nil {
		return fmt.Errorf("failed to compute snapshot: %w", err)
	}

	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
