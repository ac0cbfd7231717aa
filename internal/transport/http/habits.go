package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
)

type habitView struct {
	*entity.Habit
	Streak int `json:"streak"`
}

type createHabitRequest struct {
	UserID   string  `json:"userId"`
	Name     string  `json:"name"`
	Emoji    string  `json:"emoji"`
	Reminder *string `json:"reminder"`
}

type updateHabitRequest struct {
	UserID   string  `json:"userId"`
	HabitID  string  `json:"habitId"`
	Name     *string `json:"name"`
	Emoji    *string `json:"emoji"`
	Reminder *string `json:"reminder"`
}

type habitRefRequest struct {
	UserID  string `json:"userId"`
	HabitID string `json:"habitId"`
}

// ListHabits lists the caller's habits with their current streaks
// @Summary List habits
// @Description List the user's habits. Deleted habits are included when includeDeleted=true.
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User ID (when auth is disabled)"
// @Param includeDeleted query boolean false "Include soft-deleted habits"
// @Success 200 {object} object{success=bool,data=[]object,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string,message=string}
// @Router /api/habits [get]
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, "")
	if !ok {
		return
	}

	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"
	habits, err := h.habits.ListHabits(r.Context(), userID, includeDeleted)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	snap, err := h.progress.Snapshot(r.Context(), userID, h.progress.Today())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	views := make([]habitView, 0, len(habits))
	for _, habit := range habits {
		views = append(views, habitView{Habit: habit, Streak: snap.PerHabitStreak[habit.ID]})
	}

	writeSuccess(w, http.StatusOK, views, "Habits fetched successfully")
}

// CreateHabit creates a habit starting today
// @Summary Create a habit
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{userId=string,name=string,emoji=string,reminder=string} true "Create habit request"
// @Success 201 {object} object{success=bool,data=object,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string,message=string}
// @Router /api/habits [post]
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, ok := h.userID(w, r, req.UserID)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Emoji) == "" {
		writeError(w, http.StatusBadRequest, "name and emoji are required")
		return
	}

	habit, err := h.habits.CreateHabit(r.Context(), userID, req.Name, req.Emoji, req.Reminder)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, habitView{Habit: habit}, "Habit created successfully")
}

// GetHabit returns one habit
// @Summary Get habit by ID
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param userId query string false "User ID (when auth is disabled)"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/habits/{id} [get]
func (h *Handler) GetHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, "")
	if !ok {
		return
	}

	habit, err := h.habits.GetHabit(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, habitView{Habit: habit}, "")
}

// UpdateHabit changes a habit's display fields
// @Summary Update a habit
// @Description Update name, emoji or reminder. An empty reminder clears it.
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param request body object{userId=string,name=string,emoji=string,reminder=string} true "Fields to change"
// @Success 200 {object} object{success=bool,data=object,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/habits/{id} [patch]
func (h *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req updateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	habitID := chi.URLParam(r, "id")
	if habitID == "" {
		habitID = req.HabitID
	}
	if habitID == "" {
		writeError(w, http.StatusBadRequest, "habitId is required")
		return
	}

	userID, ok := h.userID(w, r, req.UserID)
	if !ok {
		return
	}

	habit, err := h.habits.UpdateHabit(r.Context(), habitID, userID, req.Name, req.Emoji, req.Reminder)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, habitView{Habit: habit}, "Habit updated successfully")
}

// DeleteHabit soft-deletes a habit; its history keeps counting for past days
// @Summary Delete a habit
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param userId query string false "User ID (when auth is disabled)"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/habits/{id} [delete]
func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRefRequest
	habitID := chi.URLParam(r, "id")
	if habitID == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		habitID = req.HabitID
	}
	if habitID == "" {
		writeError(w, http.StatusBadRequest, "habitId is required")
		return
	}

	userID, ok := h.userID(w, r, req.UserID)
	if !ok {
		return
	}

	if err := h.habits.DeleteHabit(r.Context(), habitID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Habit deleted successfully")
}

// HabitStats returns streaks and totals for one habit
// @Summary Habit statistics
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param asOf query string false "Evaluation day (YYYY-MM-DD), defaults to today"
// @Param userId query string false "User ID (when auth is disabled)"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/habits/{id}/stats [get]
func (h *Handler) HabitStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, "")
	if !ok {
		return
	}
	asOf, ok := h.dateParam(w, r, "asOf", h.progress.Today())
	if !ok {
		return
	}

	stats, err := h.progress.HabitStats(r.Context(), userID, chi.URLParam(r, "id"), asOf)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats, "")
}
