package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// WebhookServer is the HTTP server the orchestrator drives. Implemented
// by internal/server.
type WebhookServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Bot manages the lifecycle of the application components: the webhook
// server and the task scheduler.
type Bot struct {
	logger    *slog.Logger
	server    WebhookServer
	scheduler *Scheduler
}

// NewBot creates the application orchestrator.
func NewBot(logger *slog.Logger, server WebhookServer, scheduler *Scheduler) *Bot {
	return &Bot{
		logger:    logger.With("component", "orchestrator"),
		server:    server,
		scheduler: scheduler,
	}
}

// Run starts the webhook server and the scheduler and blocks until the
// context is cancelled or a component fails. Shutdown is graceful: the
// server stops accepting requests and the scheduler waits for running
// jobs.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting webhook server...")
		if err := b.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Error("Webhook server stopped with error", "error", err)
			return fmt.Errorf("webhook server failed: %w", err)
		}
		b.logger.Info("Webhook server stopped.")
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping components...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := b.server.Shutdown(shutdownCtx); err != nil {
			b.logger.Error("Error shutting down webhook server", "error", err)
		}

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Orchestrator stopped gracefully.")
	return nil
}
