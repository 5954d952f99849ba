package bot

import (
	"context"
	"errors"
	"time"

	"github.com/mealmate-bot/mealmate/internal/database"
	"github.com/mealmate-bot/mealmate/internal/gemini"
	"github.com/mealmate-bot/mealmate/internal/nutrition"
)

// dispatchImage routes an interpreted image event to exactly one domain
// handler, with priority food > person > other. A food classification
// without labels cannot name the food, so it falls back to the generic
// photo handler. Each handler performs its side effects and returns the
// prompt for reply generation.
func (r *Router) dispatchImage(ctx context.Context, ev Event, interp Interpretation) string {
	switch {
	case interp.IsFood:
		if len(interp.Labels) == 0 {
			r.log.WarnContext(ctx, "Food classification without labels, handling as generic photo",
				"user_id", ev.UserID)
			return r.handleOtherPhoto(ctx, interp)
		}
		return r.handleFood(ctx, ev, interp)
	case interp.IsPerson:
		return r.handlePersonPhoto(ctx, ev, interp)
	default:
		return r.handleOtherPhoto(ctx, interp)
	}
}

// handleFood logs an eating event: nutrition lookup keyed by the first
// label, then an append-only meal record. Neither failure prevents the
// reply; a failed lookup just leaves the payload empty and a failed
// insert is logged.
func (r *Router) handleFood(ctx context.Context, ev Event, interp Interpretation) string {
	foodName := interp.Labels[0]
	log := r.log.With("handler", "food", "user_id", ev.UserID, "food", foodName)

	var payload []byte
	switch data, err := r.deps.Nutrition.Lookup(ctx, foodName); {
	case errors.Is(err, nutrition.ErrNotFound):
		log.DebugContext(ctx, "No nutrition data for food")
	case err != nil:
		log.WarnContext(ctx, "Nutrition lookup failed, proceeding without payload", "error", err)
	default:
		payload = data
	}

	meal := &database.Meal{
		UserID:     ev.UserID,
		Food:       foodName,
		Nutrition:  string(payload),
		RecordedAt: time.Now().UTC(),
	}
	if err := r.deps.Store.SaveMeal(ctx, meal); err != nil {
		log.ErrorContext(ctx, "Failed to persist meal record", "error", err)
	}

	return gemini.FoodPrompt(foodName, payload)
}

// handlePersonPhoto upserts the user profile: the photo counter increment
// is atomic at the store level, the feature snapshot is last-write-wins.
func (r *Router) handlePersonPhoto(ctx context.Context, ev Event, interp Interpretation) string {
	log := r.log.With("handler", "person", "user_id", ev.UserID)

	if err := r.deps.Store.RecordUserPhoto(ctx, ev.UserID, time.Now().UTC(), interp.Labels, interp.Objects); err != nil {
		log.ErrorContext(ctx, "Failed to upsert user profile", "error", err)
	}

	return gemini.PersonPrompt(interp.Labels)
}

// handleOtherPhoto acknowledges a photo that is neither food nor a person.
// No persistence.
func (r *Router) handleOtherPhoto(ctx context.Context, interp Interpretation) string {
	return gemini.PhotoPrompt(interp.Labels)
}
