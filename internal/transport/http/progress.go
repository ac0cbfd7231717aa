package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

type dateRange struct {
	Start entity.Date `json:"start"`
	End   entity.Date `json:"end"`
}

type dailyDataResponse struct {
	Success   bool                  `json:"success"`
	Data      []entity.DailySummary `json:"data"`
	DateRange dateRange             `json:"dateRange"`
	Message   string                `json:"message"`
}

type checkInRequest struct {
	UserID    string `json:"userId"`
	HabitID   string `json:"habitId"`
	Date      string `json:"date"`
	Completed *bool  `json:"completed"`
}

type checkInView struct {
	UserID    string      `json:"userId"`
	HabitID   string      `json:"habitId"`
	Date      entity.Date `json:"date"`
	Completed bool        `json:"completed"`
	Timestamp string      `json:"timestamp"`
}

// DailyData returns per-day completed and active habit counts
// @Summary Daily summaries
// @Description Completed and active habit counts for each day of the range. Defaults to the last 90 days.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User ID (when auth is disabled)"
// @Param startDate query string false "First day (YYYY-MM-DD)"
// @Param endDate query string false "Last day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} object{success=bool,data=[]object{date=string,completed=int,total=int},dateRange=object{start=string,end=string},message=string}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string,message=string}
// @Router /api/daily-data [get]
func (h *Handler) DailyData(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, "")
	if !ok {
		return
	}

	end, ok := h.dateParam(w, r, "endDate", h.progress.Today())
	if !ok {
		return
	}
	start, ok := h.dateParam(w, r, "startDate", end.AddDays(-(defaultRangeDays - 1)))
	if !ok {
		return
	}

	summaries, err := h.progress.DailySummaries(r.Context(), userID, start, end)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dailyDataResponse{
		Success:   true,
		Data:      summaries,
		DateRange: dateRange{Start: start, End: end},
		Message:   "Daily data fetched successfully",
	})
}

// RecordCheckIn records whether a habit was done on a day. A later check-in for the
// same habit and day replaces the earlier one.
// @Summary Record a daily check-in
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{userId=string,habitId=string,date=string,completed=bool} true "Check-in"
// @Success 201 {object} object{success=bool,data=object,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/daily-data [post]
func (h *Handler) RecordCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, ok := h.userID(w, r, req.UserID)
	if !ok {
		return
	}
	if strings.TrimSpace(req.HabitID) == "" || strings.TrimSpace(req.Date) == "" {
		writeError(w, http.StatusBadRequest, "habitId and date are required")
		return
	}

	date, err := entity.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	checkIn, err := h.habits.RecordCheckIn(r.Context(), userID, req.HabitID, date, completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, checkInView{
		UserID:    userID,
		HabitID:   checkIn.HabitID,
		Date:      checkIn.Date,
		Completed: checkIn.Completed,
		Timestamp: checkIn.RecordedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}, "Daily check-in recorded successfully")
}

// Achievements lists every catalog achievement with the caller's progress
// @Summary Achievements
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User ID (when auth is disabled)"
// @Param asOf query string false "Evaluation day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} object{success=bool,data=[]object{id=string,name=string,emoji=string,description=string,requirement=int,progress=int,isUnlocked=bool,unlockedAt=string},message=string}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string,message=string}
// @Router /api/achievements [get]
func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, "")
	if !ok {
		return
	}
	asOf, ok := h.dateParam(w, r, "asOf", h.progress.Today())
	if !ok {
		return
	}

	achievements, err := h.progress.Achievements(r.Context(), userID, asOf)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, achievements, "Achievements fetched successfully")
}

// Progress returns the full progress snapshot
// @Summary Progress snapshot
// @Description Streaks, completion rates, daily summaries and achievement states as of a day
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User ID (when auth is disabled)"
// @Param asOf query string false "Evaluation day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string,message=string}
// @Router /api/progress [get]
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, "")
	if !ok {
		return
	}
	asOf, ok := h.dateParam(w, r, "asOf", h.progress.Today())
	if !ok {
		return
	}

	snap, err := h.progress.Snapshot(r.Context(), userID, asOf)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, snap, "")
}
