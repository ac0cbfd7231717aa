package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/kafka"
)

type eventLine struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	UserID     string         `json:"userId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type EventsTailCmd struct {
	Group string `help:"Consumer group ID." default:"progressctl-tail"`
}

// Run prints each progress event as a JSON line until interrupted
func (c *EventsTailCmd) Run(ctx *Context) error {
	cfg, err := ctx.Config()
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka is disabled in %s", ctx.ConfigPath)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(ctx.Out)
	consumer := kafka.NewConsumer(&cfg.Kafka, c.Group)
	return consumer.Consume(sigCtx, func(_ context.Context, event entity.Event) error {
		return enc.Encode(eventLine{
			ID:         event.ID,
			Type:       string(event.Type),
			UserID:     event.UserID,
			OccurredAt: event.OccurredAt,
			Attributes: event.Attributes,
		})
	})
}
