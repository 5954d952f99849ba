package bot

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mealmate-bot/mealmate/internal/config"
	"github.com/mealmate-bot/mealmate/internal/database"
	"github.com/mealmate-bot/mealmate/internal/gemini"
	"github.com/mealmate-bot/mealmate/internal/vision"
)

// Messenger delivers reply messages keyed by reply token.
type Messenger interface {
	ReplyText(ctx context.Context, replyToken, text string) error
}

// ContentFetcher retrieves raw message content (image bytes) keyed by
// message ID.
type ContentFetcher interface {
	GetMessageContent(ctx context.Context, messageID string) ([]byte, error)
}

// ImageAnnotator runs image classification and returns labeled regions.
type ImageAnnotator interface {
	Annotate(ctx context.Context, image []byte) (*vision.Annotation, error)
}

// NutritionLookup performs a keyed lookup of nutrition data by food name.
type NutritionLookup interface {
	Lookup(ctx context.Context, food string) (json.RawMessage, error)
}

// Deps provides the external collaborators of the event pipeline. All of
// them are passed in explicitly so tests can substitute fakes.
type Deps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Messenger Messenger
	Content   ContentFetcher
	Vision    ImageAnnotator
	Nutrition NutritionLookup
	Gateway   *gemini.Gateway
}
