package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tedrenliv/habit-tracker/internal/catalog"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/memory"
	"github.com/tedrenliv/habit-tracker/internal/middleware"
	"github.com/tedrenliv/habit-tracker/internal/progress"
	"github.com/tedrenliv/habit-tracker/internal/service"
	"github.com/tedrenliv/habit-tracker/internal/testutil"
	"github.com/tedrenliv/habit-tracker/pkg/jwt"
)

type testServer struct {
	handler http.Handler
	clock   *testutil.StubClock
}

func newTestServer(t *testing.T, tokens *jwt.TokenManager) *testServer {
	t.Helper()

	clock := testutil.NewStubClock(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	store := memory.New().WithClock(clock.Now)
	engine, err := progress.NewEngine(catalog.Default(), progress.DefaultWindowDays)
	require.NoError(t, err)

	habits := service.NewHabitService(store.Habits(), store.CheckIns(), service.NopPublisher{}, clock, time.UTC)
	progressSvc := service.NewProgressService(engine, store.Habits(), store.CheckIns(), store.Achievements(),
		nil, service.NopPublisher{}, clock, time.UTC)

	h := NewHandler(habits, progressSvc, middleware.NewAuthMiddleware(tokens))
	return &testServer{
		handler: NewRouter(h, RouterOptions{}),
		clock:   clock,
	}
}

func (s *testServer) do(t *testing.T, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	DateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"dateRange"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (s *testServer) createHabit(t *testing.T, userID, name string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/habits", map[string]any{"userId": userID, "name": name, "emoji": "✅"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var habit struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &habit))
	return habit.ID
}

func TestHabitLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createHabit(t, "u1", "Meditate")

	rec := s.do(t, http.MethodPost, "/api/daily-data", map[string]any{"userId": "u1", "habitId": id, "date": "2024-01-02", "completed": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Daily check-in recorded successfully", env.Message)

	rec = s.do(t, http.MethodGet, "/api/habits?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Streak int    `json:"streak"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Meditate", list[0].Name)
	assert.Equal(t, 1, list[0].Streak)

	rec = s.do(t, http.MethodPatch, "/api/habits/"+id, map[string]any{"userId": "u1", "name": "Meditate 10m"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/habits/"+id+"?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), "Meditate 10m")

	rec = s.do(t, http.MethodGet, "/api/habits/"+id+"/stats?userId=u1&asOf=2024-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"currentStreak":1`)

	rec = s.do(t, http.MethodDelete, "/api/habits/"+id+"?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/habits?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decode(t, rec).Data))

	rec = s.do(t, http.MethodDelete, "/api/habits/"+id+"?userId=u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLegacyBodyRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createHabit(t, "u1", "Read")

	rec := s.do(t, http.MethodPut, "/api/habits", map[string]any{"userId": "u1", "habitId": id, "emoji": "📚"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(decode(t, rec).Data), "📚")

	rec = s.do(t, http.MethodPut, "/api/habits", map[string]any{"userId": "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "habitId is required", decode(t, rec).Error)

	rec = s.do(t, http.MethodDelete, "/api/habits", map[string]any{"userId": "u1", "habitId": id})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDailyData(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createHabit(t, "u1", "Run")

	rec := s.do(t, http.MethodPost, "/api/daily-data", map[string]any{"userId": "u1", "habitId": id, "date": "2024-01-02"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/daily-data?userId=u1&startDate=2024-01-01&endDate=2024-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "2024-01-01", env.DateRange.Start)
	assert.Equal(t, "2024-01-02", env.DateRange.End)
	assert.JSONEq(t, `[{"date":"2024-01-01","completed":0,"total":0},{"date":"2024-01-02","completed":1,"total":1}]`, string(env.Data))

	rec = s.do(t, http.MethodGet, "/api/daily-data?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode(t, rec)
	assert.Equal(t, "2023-10-05", env.DateRange.Start)
	assert.Equal(t, "2024-01-02", env.DateRange.End)

	rec = s.do(t, http.MethodGet, "/api/daily-data?userId=u1&startDate=2024-01-05&endDate=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAchievementsAndProgress(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createHabit(t, "u1", "Stretch")
	for d := 2; d <= 8; d++ {
		s.clock.Set(time.Date(2024, 1, d, 21, 0, 0, 0, time.UTC))
		date := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		rec := s.do(t, http.MethodPost, "/api/daily-data", map[string]any{"userId": "u1", "habitId": id, "date": date, "completed": true})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/achievements?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var achievements []struct {
		ID         string  `json:"id"`
		Progress   int     `json:"progress"`
		IsUnlocked bool    `json:"isUnlocked"`
		UnlockedAt *string `json:"unlockedAt"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &achievements))
	require.Len(t, achievements, 6)
	assert.Equal(t, "beginner", achievements[0].ID)
	assert.True(t, achievements[0].IsUnlocked)
	require.NotNil(t, achievements[0].UnlockedAt)
	assert.Equal(t, "2024-01-08", *achievements[0].UnlockedAt)
	assert.False(t, achievements[2].IsUnlocked)
	assert.Nil(t, achievements[2].UnlockedAt)

	rec = s.do(t, http.MethodGet, "/api/progress?userId=u1&asOf=2024-01-08", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap struct {
		AsOf           string         `json:"asOf"`
		PerHabitStreak map[string]int `json:"perHabitStreak"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &snap))
	assert.Equal(t, "2024-01-08", snap.AsOf)
	assert.Equal(t, 7, snap.PerHabitStreak[id])

	rec = s.do(t, http.MethodGet, "/api/progress?userId=u1&asOf=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, target := range []string{
		"/api/progress?userId=u1&asOf=9999-12-31",
		"/api/achievements?userId=u1&asOf=2024-01-10",
		"/api/habits/" + id + "/stats?userId=u1&asOf=2030-01-01",
	} {
		rec = s.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec = s.do(t, http.MethodGet, "/api/progress?userId=u1&asOf=2024-01-09", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createHabit(t, "u1", "Journal")

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
		wantError  string
	}{
		{name: "missing user on list", method: http.MethodGet, target: "/api/habits", wantStatus: http.StatusBadRequest, wantError: "userId is required"},
		{name: "missing name", method: http.MethodPost, target: "/api/habits", body: map[string]any{"userId": "u1", "emoji": "✅"}, wantStatus: http.StatusBadRequest, wantError: "name and emoji are required"},
		{name: "bad reminder", method: http.MethodPost, target: "/api/habits", body: map[string]any{"userId": "u1", "name": "x", "emoji": "✅", "reminder": "noon"}, wantStatus: http.StatusBadRequest},
		{name: "check-in without date", method: http.MethodPost, target: "/api/daily-data", body: map[string]any{"userId": "u1", "habitId": id}, wantStatus: http.StatusBadRequest, wantError: "habitId and date are required"},
		{name: "check-in bad date", method: http.MethodPost, target: "/api/daily-data", body: map[string]any{"userId": "u1", "habitId": id, "date": "01/02/2024"}, wantStatus: http.StatusBadRequest},
		{name: "check-in far future", method: http.MethodPost, target: "/api/daily-data", body: map[string]any{"userId": "u1", "habitId": id, "date": "2024-02-01"}, wantStatus: http.StatusBadRequest},
		{name: "check-in unknown habit", method: http.MethodPost, target: "/api/daily-data", body: map[string]any{"userId": "u1", "habitId": "nope", "date": "2024-01-02"}, wantStatus: http.StatusNotFound},
		{name: "other user's habit", method: http.MethodGet, target: "/api/habits/" + id + "?userId=u2", wantStatus: http.StatusNotFound},
		{name: "method not allowed", method: http.MethodPut, target: "/api/achievements?userId=u1", wantStatus: http.StatusMethodNotAllowed, wantError: "Method not allowed"},
		{name: "unknown route", method: http.MethodGet, target: "/api/nothing", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, env.Error)
			}
		})
	}
}

func TestAuthEnabled(t *testing.T) {
	tokens := jwt.NewTokenManager("secret", time.Hour, "habit-tracker")
	s := newTestServer(t, tokens)

	rec := s.do(t, http.MethodGet, "/api/habits?userId=u1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := tokens.GenerateAccessToken("u9")
	require.NoError(t, err)
	bearer := "Bearer " + token

	rec = s.do(t, http.MethodPost, "/api/habits", map[string]any{"userId": "someone-else", "name": "Swim", "emoji": "🏊"}, "Authorization", bearer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, string(decode(t, rec).Data), `"userId":"u9"`)

	rec = s.do(t, http.MethodGet, "/api/habits", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), "Swim")
}

func TestHealthAndCORS(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = s.do(t, http.MethodOptions, "/api/habits", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
