package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

const (
	maxNameLength  = 100
	maxEmojiLength = 16 // bytes; matches the column width
)

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId is required", entity.ErrValidation)
	}
	return nil
}

func validateAsOf(asOf, latest entity.Date) error {
	if asOf.After(latest) {
		return fmt.Errorf("%w: asOf %s is after %s", entity.ErrValidation, asOf, latest)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", entity.ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", entity.ErrValidation, maxNameLength)
	}
	return name, nil
}

func normalizeEmoji(emoji string) (string, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return "", fmt.Errorf("%w: emoji is required", entity.ErrValidation)
	}
	if len(emoji) > maxEmojiLength {
		return "", fmt.Errorf("%w: emoji is too long", entity.ErrValidation)
	}
	return emoji, nil
}

// normalizeReminder returns nil for an empty reminder
func normalizeReminder(reminder *string) (*string, error) {
	if reminder == nil {
		return nil, nil
	}
	r := strings.TrimSpace(*reminder)
	if r == "" {
		return nil, nil
	}
	t, err := time.Parse(entity.ReminderLayout, r)
	if err != nil {
		return nil, fmt.Errorf("%w: reminder must be HH:MM, got %q", entity.ErrValidation, r)
	}
	r = t.Format(entity.ReminderLayout)
	return &r, nil
}
