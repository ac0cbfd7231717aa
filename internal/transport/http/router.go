package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tedrenliv/habit-tracker/internal/middleware"
)

// RouterOptions selects the optional parts of the HTTP stack
type RouterOptions struct {
	RateLimiter    *middleware.RateLimiter
	SwaggerEnabled bool
}

// NewRouter sets up HTTP routes
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS)
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Handler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if opts.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.auth.Auth)

		r.Route("/habits", func(r chi.Router) {
			r.Get("/", h.ListHabits)
			r.Post("/", h.CreateHabit)
			r.Put("/", h.UpdateHabit)
			r.Delete("/", h.DeleteHabit)

			r.Get("/{id}", h.GetHabit)
			r.Patch("/{id}", h.UpdateHabit)
			r.Delete("/{id}", h.DeleteHabit)
			r.Get("/{id}/stats", h.HabitStats)
		})

		r.Get("/daily-data", h.DailyData)
		r.Post("/daily-data", h.RecordCheckIn)
		r.Get("/achievements", h.Achievements)
		r.Get("/progress", h.Progress)
	})

	return r
}
