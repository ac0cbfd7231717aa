package http

import (
	"net/http"
	"strings"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/domain/service"
	"github.com/tedrenliv/habit-tracker/internal/middleware"
)

// defaultRangeDays is the daily-data range used when the client gives no start date
const defaultRangeDays = 90

// Handler handles the habit and progress HTTP API
type Handler struct {
	habits   service.HabitService
	progress service.ProgressService
	auth     *middleware.AuthMiddleware
}

// NewHandler creates a new handler
func NewHandler(habits service.HabitService, progress service.ProgressService, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		habits:   habits,
		progress: progress,
		auth:     auth,
	}
}

// userID resolves the caller. With auth enabled it comes from the token; otherwise from
// the userId query parameter or, failing that, the request body. It writes the error
// response and returns false when no user can be determined.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request, fromBody string) (string, bool) {
	if h.auth.Enabled() {
		userID := middleware.GetUserID(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return "", false
		}
		return userID, true
	}

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		userID = strings.TrimSpace(fromBody)
	}
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return "", false
	}
	return userID, true
}

// dateParam parses an optional YYYY-MM-DD query parameter
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string, fallback entity.Date) (entity.Date, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}

	d, err := entity.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a date in YYYY-MM-DD format")
		return 0, false
	}
	return d, true
}
