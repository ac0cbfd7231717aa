package main

import (
	"github.com/tedrenliv/habit-tracker/internal/app"
	"github.com/tedrenliv/habit-tracker/internal/logger"

	_ "github.com/tedrenliv/habit-tracker/docs" // Import generated docs
)

// @title Habit Tracker Progress API
// @version 1.0
// @description Habits, daily check-ins, streaks, daily summaries and achievements.
// @description With JWT auth disabled, callers pass userId as a query or body field.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	application, err := app.New()
	if err != nil {
		logger.Fatal("Failed to create application", "err", err)
	}

	if err := application.Run(); err != nil {
		logger.Fatal("Failed to run application", "err", err)
	}
}
