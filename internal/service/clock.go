package service

import (
	"time"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// calendar turns instants into calendar days of one timezone
type calendar struct {
	clock Clock
	loc   *time.Location
}

func newCalendar(clock Clock, loc *time.Location) calendar {
	if clock == nil {
		clock = RealClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return calendar{clock: clock, loc: loc}
}

func (c calendar) today() entity.Date {
	return entity.DateOf(c.clock.Now().In(c.loc))
}

// latest is the last day the service accepts: tomorrow, for clients ahead of the service timezone
func (c calendar) latest() entity.Date {
	return c.today().AddDays(1)
}

func (c calendar) now() time.Time {
	return c.clock.Now().UTC()
}
