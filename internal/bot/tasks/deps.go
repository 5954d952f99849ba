// Package tasks implements the scheduled background jobs for MealMate:
// the weekly meal digest and SQLite maintenance.
package tasks

import (
	"context"
	"log/slog"

	"github.com/mealmate-bot/mealmate/internal/config"
	"github.com/mealmate-bot/mealmate/internal/database"
	"github.com/mealmate-bot/mealmate/internal/gemini"
)

// Pusher delivers proactive push messages keyed by user ID. Unlike reply
// tokens, pushes are not time-constrained.
type Pusher interface {
	PushText(ctx context.Context, userID, text string) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Gemini gemini.Client
	Pusher Pusher
	Config *config.Config
}
