package database

import (
	"time"
)

// Meal represents one logged eating event derived from a food-classified
// image message. Meal rows are append-only and are never mutated after
// creation.
type Meal struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	UserID string `db:"user_id"`
	Food   string `db:"food"`
	// Nutrition holds the raw payload returned by the nutrition lookup
	// service. No schema is enforced; empty when the lookup failed.
	Nutrition  string    `db:"nutrition"`
	RecordedAt time.Time `db:"recorded_at"`
}

// UserProfile accumulates per-user photo statistics. PhotoCount only ever
// increases; the snapshot fields are overwritten on every person-photo
// event (last write wins).
type UserProfile struct {
	UserID      string    `db:"user_id"`
	PhotoCount  int64     `db:"photo_count"`
	LastPhotoAt time.Time `db:"last_photo_at"`
	LastLabels  string    `db:"last_labels"`
	LastObjects string    `db:"last_objects"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
