package service

import (
	"context"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/logger"
	"github.com/tedrenliv/habit-tracker/internal/progress"
)

// EventPublisher delivers change notifications (Kafka in production)
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event) error
}

// SnapshotCache memoizes snapshots by user and input fingerprint (Redis in production)
type SnapshotCache interface {
	Get(ctx context.Context, userID, fingerprint string) (*progress.Snapshot, bool, error)
	Set(ctx context.Context, userID, fingerprint string, snap *progress.Snapshot) error
}

// NopPublisher drops every event; used when Kafka is disabled
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, entity.Event) error { return nil }

// publish delivers an event without failing the caller: the change is already stored
func publish(ctx context.Context, events EventPublisher, event entity.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "type", event.Type, "user_id", event.UserID, "err", err)
	}
}
