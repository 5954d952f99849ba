package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations. Methods accept a
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMeal inserts a new meal record. Meals are append-only.
	SaveMeal(ctx context.Context, meal *Meal) error

	// GetMealsSince retrieves the meals recorded for a user at or after
	// the given time, in chronological order.
	GetMealsSince(ctx context.Context, userID string, since time.Time) ([]*Meal, error)

	// RecordUserPhoto upserts the user profile for a person-photo event:
	// photo_count is incremented atomically at the store level and the
	// snapshot fields are overwritten.
	RecordUserPhoto(ctx context.Context, userID string, at time.Time, labels, objects []string) error

	// GetAllUserProfiles retrieves every known user profile.
	GetAllUserProfiles(ctx context.Context) ([]*UserProfile, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveMeal inserts a new meal record.
func (s *sqlxStore) SaveMeal(ctx context.Context, meal *Meal) error {
	if meal == nil {
		return fmt.Errorf("cannot save nil meal")
	}
	if meal.UserID == "" {
		return fmt.Errorf("meal must have a non-empty user_id")
	}
	if meal.Food == "" {
		return fmt.Errorf("meal must have a non-empty food name")
	}
	if meal.RecordedAt.IsZero() {
		return fmt.Errorf("meal must have a non-zero recorded_at")
	}

	meal.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO meals (created_at, user_id, food, nutrition, recorded_at)
        VALUES (:created_at, :user_id, :food, :nutrition, :recorded_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, meal)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving meal", "user_id", meal.UserID, "food", meal.Food, "error", err)
		return fmt.Errorf("failed to save meal for user %s: %w", meal.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		meal.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving meal",
			"user_id", meal.UserID, "error", err)
	}

	s.logger.DebugContext(ctx, "Meal saved", "user_id", meal.UserID, "food", meal.Food, "meal_id", meal.ID)
	return nil
}

// GetMealsSince retrieves the meals recorded for a user at or after the
// given time, ordered chronologically.
func (s *sqlxStore) GetMealsSince(ctx context.Context, userID string, since time.Time) ([]*Meal, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var meals []*Meal
	query := `
        SELECT id, created_at, user_id, food, nutrition, recorded_at
        FROM meals
        WHERE user_id = ? AND recorded_at >= ?
        ORDER BY recorded_at ASC;
    `

	if err := s.db.SelectContext(ctx, &meals, query, userID, since); err != nil {
		s.logger.ErrorContext(ctx, "Error getting meals", "user_id", userID, "since", since, "error", err)
		return nil, fmt.Errorf("failed to get meals for user %s: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Fetched meals", "user_id", userID, "count", len(meals))
	return meals, nil
}

// RecordUserPhoto upserts the user profile in a single statement so that
// the photo_count increment cannot be lost under concurrent upserts for
// the same user.
func (s *sqlxStore) RecordUserPhoto(ctx context.Context, userID string, at time.Time, labels, objects []string) error {
	if userID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO user_profiles (user_id, photo_count, last_photo_at, last_labels, last_objects, created_at, updated_at)
        VALUES (?, 1, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            photo_count   = photo_count + 1,
            last_photo_at = excluded.last_photo_at,
            last_labels   = excluded.last_labels,
            last_objects  = excluded.last_objects,
            updated_at    = excluded.updated_at;
    `

	result, err := s.db.ExecContext(ctx, query,
		userID, at, strings.Join(labels, ","), strings.Join(objects, ","), now, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording user photo", "user_id", userID, "error", err)
		return fmt.Errorf("failed to record photo for user %s: %w", userID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when recording user photo",
			"user_id", userID, "affected", affected)
	}

	s.logger.DebugContext(ctx, "User photo recorded", "user_id", userID)
	return nil
}

// GetAllUserProfiles retrieves every known user profile.
func (s *sqlxStore) GetAllUserProfiles(ctx context.Context) ([]*UserProfile, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var profiles []*UserProfile
	query := `
        SELECT user_id, photo_count, last_photo_at, last_labels, last_objects, created_at, updated_at
        FROM user_profiles;
    `

	if err := s.db.SelectContext(ctx, &profiles, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting all user profiles", "error", err)
		return nil, fmt.Errorf("failed to get all user profiles: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched all user profiles", "count", len(profiles))
	return profiles, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
// VACUUM must run outside a transaction in SQLite.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
