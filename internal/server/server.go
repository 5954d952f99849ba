// Package server exposes the inbound webhook HTTP endpoint. The endpoint
// acknowledges every verified delivery immediately and processes the event
// batch in the background, so platform-facing latency stays constant
// regardless of downstream latency.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/mealmate-bot/mealmate/internal/bot"
	"github.com/mealmate-bot/mealmate/internal/config"
	"github.com/mealmate-bot/mealmate/internal/line"
	"github.com/mealmate-bot/mealmate/internal/logger"
)

// Server is the webhook HTTP server.
type Server struct {
	httpServer    *http.Server
	router        *bot.Router
	channelSecret string
	log           *slog.Logger
}

// New creates the webhook server with /webhook and /healthz routes.
func New(cfg config.ServerConfig, channelSecret string, router *bot.Router, log *slog.Logger) *Server {
	s := &Server{
		router:        router,
		channelSecret: channelSecret,
		log:           log.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      logger.HTTPMiddleware(s.log)(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// ListenAndServe starts serving HTTP requests and blocks until the server
// stops.
func (s *Server) ListenAndServe() error {
	s.log.Info("Webhook server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleWebhook verifies the delivery signature, acknowledges with 200
// immediately, and hands the batch to the router on a detached context.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	cb, err := webhook.ParseRequest(s.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			s.log.WarnContext(r.Context(), "Webhook delivery with invalid signature rejected")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.log.ErrorContext(r.Context(), "Failed to parse webhook delivery", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Acknowledge before processing; the platform never waits on the
	// per-event pipelines.
	w.WriteHeader(http.StatusOK)

	events := line.ConvertEvents(cb.Events)
	if len(events) == 0 {
		return
	}

	go func(ctx context.Context) {
		s.router.Process(ctx, events)
	}(context.WithoutCancel(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
