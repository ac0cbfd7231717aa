package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tedrenliv/habit-tracker/internal/config"
	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/logger"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// EventHandler receives each decoded event; an error is logged and consumption continues
type EventHandler func(ctx context.Context, event entity.Event) error

// Consumer reads progress events from Kafka
type Consumer struct {
	reader messageReader
}

// NewConsumer creates a new Kafka consumer joining groupID
func NewConsumer(cfg *config.KafkaConfig, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        groupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	return &Consumer{
		reader: reader,
	}
}

// Consume delivers events to handle until ctx is done, then closes the reader
func (c *Consumer) Consume(ctx context.Context, handle EventHandler) error {
	defer c.Close()

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			// the reader returns io.EOF once closed
			if errors.Is(err, io.EOF) {
				return nil
			}
			logger.Warn("Error reading message", "err", err)
			continue
		}

		event, err := DecodeEvent(message)
		if err != nil {
			logger.Warn("Skipping undecodable message", "offset", message.Offset, "err", err)
			continue
		}

		if err := handle(ctx, event); err != nil {
			logger.Error("Error processing event", "type", event.Type, "event_id", event.ID, "err", err)
		}
	}
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
