package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mealmate-bot/mealmate/internal/gemini"
)

// newWeeklyDigestTask returns the task that summarizes each known user's
// recent meals and pushes the summary. Failures are isolated per user:
// one user's failed query or push never aborts the rest of the batch.
// Generation failure is a silent skip rather than a fallback push, so a
// proactive message is never the apology string.
func newWeeklyDigestTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := deps.Logger.With("task", "weekly_digest")

		window := deps.Config.Bot.DigestWindow
		if window <= 0 {
			window = 7 * 24 * time.Hour
		}
		since := time.Now().UTC().Add(-window)

		profiles, err := deps.Store.GetAllUserProfiles(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan user store: %w", err)
		}

		pushed := 0
		for _, profile := range profiles {
			meals, err := deps.Store.GetMealsSince(ctx, profile.UserID, since)
			if err != nil {
				log.ErrorContext(ctx, "Failed to query meals for user, skipping",
					"user_id", profile.UserID, "error", err)
				continue
			}
			if len(meals) == 0 {
				log.DebugContext(ctx, "No meals in window, skipping user", "user_id", profile.UserID)
				continue
			}

			summary, err := deps.Gemini.Generate(ctx, gemini.DigestPrompt(meals))
			if err != nil || strings.TrimSpace(summary) == "" {
				log.WarnContext(ctx, "Digest generation yielded nothing, skipping user",
					"user_id", profile.UserID, "error", err)
				continue
			}

			if err := deps.Pusher.PushText(ctx, profile.UserID, summary); err != nil {
				log.ErrorContext(ctx, "Failed to push digest", "user_id", profile.UserID, "error", err)
				continue
			}
			pushed++
		}

		log.InfoContext(ctx, "Weekly digest completed", "users", len(profiles), "pushed", pushed)
		return nil
	}
}
