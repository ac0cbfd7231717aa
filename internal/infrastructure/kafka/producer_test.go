package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestEncodeDecodeEvent(t *testing.T) {
	occurred := time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)
	event := entity.Event{
		ID:         "evt-1",
		Type:       entity.EventAchievementUnlocked,
		UserID:     "u1",
		OccurredAt: occurred,
		Attributes: map[string]any{
			"achievement_id": "perfect-week",
			"unlocked_at":    "2024-01-08",
		},
	}

	msg, err := EncodeEvent(event)
	require.NoError(t, err)
	assert.Equal(t, []byte("u1"), msg.Key)

	got, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.Type, got.Type)
	assert.Equal(t, event.UserID, got.UserID)
	assert.True(t, occurred.Equal(got.OccurredAt))
	assert.Equal(t, event.Attributes, got.Attributes)
}

func TestDecodeEvent_Garbage(t *testing.T) {
	_, err := DecodeEvent(kafka.Message{Value: []byte{0xff, 0xff, 0xff}})
	assert.Error(t, err)
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	err := p.Publish(context.Background(), entity.Event{Type: entity.EventHabitCreated, UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	got, err := DecodeEvent(w.messages[0])
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID, "event id is generated")
	assert.False(t, got.OccurredAt.IsZero())
	assert.Nil(t, got.Attributes)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducerPublish_WriteError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.Publish(context.Background(), entity.Event{Type: entity.EventCheckInRecorded, UserID: "u1"})
	assert.ErrorContains(t, err, "broker down")
}
