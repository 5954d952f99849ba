package gemini

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Gateway wraps a Client and masks every generation failure with a fixed
// fallback reply, so callers always receive a non-empty string and never
// need to branch on generation errors.
type Gateway struct {
	client   Client
	fallback string
	log      *slog.Logger
}

// NewGateway creates a Gateway around the given client. fallback must be a
// non-empty string; it is returned whenever generation fails or yields an
// empty completion.
func NewGateway(client Client, fallback string, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{
		client:   client,
		fallback: fallback,
		log:      log.With("component", "generation_gateway"),
	}
}

// Compose generates a reply for the given prompt. On any failure (network,
// backend error, empty completion) it returns the fallback reply instead of
// an error.
func (g *Gateway) Compose(ctx context.Context, prompt string) string {
	text, err := g.client.Generate(ctx, prompt)
	if err != nil {
		g.log.WarnContext(ctx, "Generation failed, using fallback reply", "error", err)
		return g.fallback
	}
	if strings.TrimSpace(text) == "" {
		g.log.WarnContext(ctx, "Generation returned empty text, using fallback reply")
		return g.fallback
	}
	return text
}
