package entity

import "time"

// EventType identifies a change notification
type EventType string

const (
	EventHabitCreated        EventType = "habit.created"
	EventHabitUpdated        EventType = "habit.updated"
	EventHabitDeleted        EventType = "habit.deleted"
	EventCheckInRecorded     EventType = "checkin.recorded"
	EventAchievementUnlocked EventType = "achievement.unlocked"
)

// Event is a change notification published for real-time consumers
type Event struct {
	ID         string
	Type       EventType
	UserID     string
	OccurredAt time.Time

	// Attributes holds JSON-compatible values (string, float64, bool, nil)
	Attributes map[string]any
}
