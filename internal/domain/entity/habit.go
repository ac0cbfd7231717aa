package entity

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist for the caller
	ErrNotFound = errors.New("not found")

	// ErrValidation marks errors caused by invalid caller input
	ErrValidation = errors.New("validation failed")
)

// ReminderLayout is the time-of-day format of a habit reminder
const ReminderLayout = "15:04"

// Habit represents a user's habit
type Habit struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	// Display fields
	Name     string  `json:"name"`
	Emoji    string  `json:"emoji"`
	Reminder *string `json:"reminder,omitempty"` // HH:MM

	// CreatedAt is the day the habit starts counting toward totals
	CreatedAt Date `json:"createdAt"`

	// DeletedAt is set by a soft delete; the habit stops counting from that day on
	DeletedAt *Date `json:"deletedAt,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// IsDeleted returns true if the habit has been soft deleted
func (h *Habit) IsDeleted() bool {
	return h.DeletedAt != nil
}

// ActiveOn reports whether the habit existed on day d
func (h *Habit) ActiveOn(d Date) bool {
	if d.Before(h.CreatedAt) {
		return false
	}
	return h.DeletedAt == nil || d.Before(*h.DeletedAt)
}
