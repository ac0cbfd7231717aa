package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tedrenliv/habit-tracker/internal/catalog"
	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/service"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/memory"
	"github.com/tedrenliv/habit-tracker/internal/progress"
	"github.com/tedrenliv/habit-tracker/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(t entity.EventType) []entity.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entity.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// jsonCache stores snapshots serialized, like the Redis cache does
type jsonCache struct {
	entries    map[string][]byte
	gets, hits int
	err        error
}

func newJSONCache() *jsonCache {
	return &jsonCache{entries: make(map[string][]byte)}
}

func (c *jsonCache) Get(_ context.Context, userID, fingerprint string) (*progress.Snapshot, bool, error) {
	c.gets++
	if c.err != nil {
		return nil, false, c.err
	}
	data, ok := c.entries[userID+":"+fingerprint]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	var snap progress.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

func (c *jsonCache) Set(_ context.Context, userID, fingerprint string, snap *progress.Snapshot) error {
	if c.err != nil {
		return c.err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	c.entries[userID+":"+fingerprint] = data
	return nil
}

var errCacheDown = errors.New("cache down")

type fixture struct {
	clock    *testutil.StubClock
	store    *memory.Store
	events   *recordingPublisher
	cache    *jsonCache
	habits   service.HabitService
	progress service.ProgressService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	engine, err := progress.NewEngine(catalog.Default(), progress.DefaultWindowDays)
	require.NoError(t, err)

	f := &fixture{
		clock:  testutil.NewStubClock(now),
		events: &recordingPublisher{},
		cache:  newJSONCache(),
	}
	f.store = memory.New().WithClock(f.clock.Now)
	f.habits = NewHabitService(f.store.Habits(), f.store.CheckIns(), f.events, f.clock, time.UTC)
	f.progress = NewProgressService(engine, f.store.Habits(), f.store.CheckIns(), f.store.Achievements(),
		f.cache, f.events, f.clock, time.UTC)

	return f
}

func at(date string, hour int) time.Time {
	return entity.MustParseDate(date).Time().Add(time.Duration(hour) * time.Hour)
}

func day(s string) entity.Date {
	return entity.MustParseDate(s)
}

// checkInDaily records a completed check-in on each day of [from, to], moving the clock along
func (f *fixture) checkInDaily(t *testing.T, userID, habitID, from, to string) {
	t.Helper()
	for d := day(from); !d.After(day(to)); d = d.AddDays(1) {
		f.clock.Set(d.Time().Add(20 * time.Hour))
		_, err := f.habits.RecordCheckIn(context.Background(), userID, habitID, d, true)
		require.NoError(t, err)
	}
}
