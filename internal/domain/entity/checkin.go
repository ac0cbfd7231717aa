package entity

import "time"

// CheckIn is a habit's completion record for one calendar day
type CheckIn struct {
	HabitID   string `json:"habitId"`
	Date      Date   `json:"date"`
	Completed bool   `json:"completed"`

	// RecordedAt is the storage timestamp of the last write, zero when unknown
	RecordedAt time.Time `json:"recordedAt,omitzero"`
}

// DailySummary aggregates a user's check-ins for one day
type DailySummary struct {
	Date           Date `json:"date"`
	CompletedCount int  `json:"completed"`
	TotalHabits    int  `json:"total"`
}
