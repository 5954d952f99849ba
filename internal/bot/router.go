// Package bot implements the core event interpretation and
// response-orchestration pipeline for MealMate: routing inbound webhook
// events, classifying image content, dispatching to domain handlers, and
// guaranteeing at most one reply per event.
package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mealmate-bot/mealmate/internal/gemini"
)

// Router inspects inbound events and drives each one through the correct
// handler chain. Events within a batch are processed concurrently and
// independently; a failure in one event's pipeline never affects its
// siblings.
type Router struct {
	deps      Deps
	log       *slog.Logger
	staleness time.Duration
}

// NewRouter creates a Router from its dependencies. The staleness
// threshold for reply tokens comes from the bot configuration.
func NewRouter(deps Deps) *Router {
	return &Router{
		deps:      deps,
		log:       deps.Logger.With("component", "router"),
		staleness: deps.Config.Bot.StalenessThreshold,
	}
}

// Process handles one webhook delivery's event batch and returns one
// outcome per event, in batch order. It blocks until every event's
// pipeline has run to completion or failure.
func (r *Router) Process(ctx context.Context, events []Event) []Outcome {
	outcomes := make([]Outcome, len(events))

	var wg sync.WaitGroup
	for i, ev := range events {
		wg.Add(1)
		go func(i int, ev Event) {
			defer wg.Done()
			outcomes[i] = r.processEvent(ctx, ev)
		}(i, ev)
	}
	wg.Wait()

	replied, skipped, failed := 0, 0, 0
	for _, o := range outcomes {
		switch o.Status {
		case StatusReplied:
			replied++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	r.log.InfoContext(ctx, "Processed event batch",
		"events", len(events), "replied", replied, "skipped", skipped, "failed", failed)

	return outcomes
}

// processEvent runs one event's full pipeline. Staleness is evaluated
// exactly once, before any downstream call, so the verdict is independent
// of how long classification, lookups, or persistence take.
func (r *Router) processEvent(ctx context.Context, ev Event) Outcome {
	if ev.Kind != KindText && ev.Kind != KindImage {
		r.log.DebugContext(ctx, "Ignoring unsupported event", "user_id", ev.UserID)
		return Outcome{Status: StatusSkipped, Kind: ev.Kind, Reason: "unsupported"}
	}

	stale := time.Since(ev.Timestamp) > r.staleness

	var prompt string
	switch ev.Kind {
	case KindText:
		if stale {
			r.log.InfoContext(ctx, "Reply token stale, skipping text event",
				"user_id", ev.UserID, "age", time.Since(ev.Timestamp))
			return Outcome{Status: StatusSkipped, Kind: ev.Kind, Reason: "stale_token"}
		}
		prompt = gemini.TextPrompt(ev.Text)

	case KindImage:
		// Side effects (persistence) run even for stale events; only the
		// reply dispatch is skipped.
		interp := r.interpretImage(ctx, ev)
		prompt = r.dispatchImage(ctx, ev, interp)
		if stale {
			r.log.InfoContext(ctx, "Reply token stale, side effects applied without reply",
				"user_id", ev.UserID, "age", time.Since(ev.Timestamp))
			return Outcome{Status: StatusSkipped, Kind: ev.Kind, Reason: "stale_token"}
		}
	}

	reply := r.deps.Gateway.Compose(ctx, prompt)
	if err := r.deps.Messenger.ReplyText(ctx, ev.ReplyToken, reply); err != nil {
		r.log.ErrorContext(ctx, "Reply dispatch failed", "user_id", ev.UserID, "error", err)
		return Outcome{Status: StatusFailed, Kind: ev.Kind, Reason: "send_failed", Err: err}
	}

	return Outcome{Status: StatusReplied, Kind: ev.Kind}
}

// interpretImage fetches the image content and classifies it. Any failure
// downgrades the event to a generic photo with an empty interpretation
// instead of dropping the reply.
func (r *Router) interpretImage(ctx context.Context, ev Event) Interpretation {
	content, err := r.deps.Content.GetMessageContent(ctx, ev.MessageID)
	if err != nil {
		r.log.WarnContext(ctx, "Image content retrieval failed, degrading to generic photo",
			"message_id", ev.MessageID, "error", err)
		return Interpretation{}
	}

	ann, err := r.deps.Vision.Annotate(ctx, content)
	if err != nil {
		r.log.WarnContext(ctx, "Image classification failed, degrading to generic photo",
			"message_id", ev.MessageID, "error", err)
		return Interpretation{}
	}

	return Interpret(ann)
}
