// Package main contains the entrypoint for the MealMate webhook service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mealmate-bot/mealmate/internal/bot"
	"github.com/mealmate-bot/mealmate/internal/bot/tasks"
	"github.com/mealmate-bot/mealmate/internal/config"
	"github.com/mealmate-bot/mealmate/internal/database"
	"github.com/mealmate-bot/mealmate/internal/gemini"
	"github.com/mealmate-bot/mealmate/internal/line"
	"github.com/mealmate-bot/mealmate/internal/logger"
	"github.com/mealmate-bot/mealmate/internal/nutrition"
	"github.com/mealmate-bot/mealmate/internal/server"
	"github.com/mealmate-bot/mealmate/internal/vision"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// db, API clients, router, scheduler, server), handles graceful shutdown,
// and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}
	gateway := gemini.NewGateway(gemClient, cfg.Gemini.FallbackReply, log)

	visionClient, err := vision.NewClient(ctx, cfg.Vision, log)
	if err != nil {
		log.Error("Failed to initialize Vision client", "error", err)
		return 1
	}
	defer func() {
		if err := visionClient.Close(); err != nil {
			log.Error("Error closing Vision client", "error", err)
		}
	}()

	nutritionClient := nutrition.NewClient(cfg.Nutrition, log)

	lineClient, err := line.NewClient(cfg.Line.ChannelToken, log)
	if err != nil {
		log.Error("Failed to create LINE client", "error", err)
		return 1
	}

	router := bot.NewRouter(bot.Deps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Messenger: lineClient,
		Content:   lineClient,
		Vision:    visionClient,
		Nutrition: nutritionClient,
		Gateway:   gateway,
	})

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Gemini: gemClient,
		Pusher: lineClient,
		Config: cfg,
	})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	srv := server.New(cfg.Server, cfg.Line.ChannelSecret, router, log)
	app := bot.NewBot(log, srv, sched)

	log.Info("Starting MealMate...")
	runErr := app.Run(ctx)
	log.Info("Run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
