package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tedrenliv/habit-tracker/internal/config"
	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/logger"
)

const (
	headerEventID   = "event_id"
	headerEventType = "event_type"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing change events to Kafka
type Producer struct {
	writer messageWriter
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg *config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // keyed by user so a user's events stay ordered
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}

	return &Producer{
		writer: writer,
	}
}

// Publish encodes and writes one event
func (p *Producer) Publish(ctx context.Context, event entity.Event) error {
	if event.ID == "" {
		event.ID = NewEventID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	message, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	logger.Debug("Published event", "type", event.Type, "user_id", event.UserID, "event_id", event.ID)
	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// EncodeEvent builds the Kafka message for an event: identity in headers, body as a protobuf Struct
func EncodeEvent(event entity.Event) (kafka.Message, error) {
	body := map[string]any{
		"user_id":     event.UserID,
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if len(event.Attributes) > 0 {
		body["attributes"] = event.Attributes
	}

	payload, err := structpb.NewStruct(body)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to build %s payload: %w", event.Type, err)
	}

	data, err := proto.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(event.ID)},
			{Key: headerEventType, Value: []byte(event.Type)},
		},
	}, nil
}

// DecodeEvent is the inverse of EncodeEvent, for consumers
func DecodeEvent(message kafka.Message) (entity.Event, error) {
	var payload structpb.Struct
	if err := proto.Unmarshal(message.Value, &payload); err != nil {
		return entity.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	body := payload.AsMap()
	event := entity.Event{}
	for _, h := range message.Headers {
		switch h.Key {
		case headerEventID:
			event.ID = string(h.Value)
		case headerEventType:
			event.Type = entity.EventType(h.Value)
		}
	}

	event.UserID, _ = body["user_id"].(string)
	if raw, ok := body["occurred_at"].(string); ok {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return entity.Event{}, fmt.Errorf("invalid occurred_at %q: %w", raw, err)
		}
		event.OccurredAt = t
	}
	if attrs, ok := body["attributes"].(map[string]any); ok {
		event.Attributes = attrs
	}

	return event, nil
}

// NewEventID creates a unique event ID
func NewEventID() string {
	return uuid.New().String()
}
