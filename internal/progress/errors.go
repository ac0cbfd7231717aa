package progress

import "errors"

var (
	// ErrInvalidRange is returned when a date range starts after it ends or a window is empty
	ErrInvalidRange = errors.New("invalid range")

	// ErrUnknownAchievementRule is returned for catalog entries the evaluator cannot interpret
	ErrUnknownAchievementRule = errors.New("unknown achievement rule")

	// ErrMalformedCheckIn is returned for a check-in whose habit is not in the supplied habit set
	ErrMalformedCheckIn = errors.New("malformed check-in")
)
