package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore opens a fresh on-disk SQLite database in a temp dir with
// all migrations applied.
func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSaveMealAndGetMealsSince(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	meals := []*Meal{
		{UserID: "U1", Food: "pancakes", RecordedAt: base},
		{UserID: "U1", Food: "salad", Nutrition: `{"calories":120}`, RecordedAt: base.Add(24 * time.Hour)},
		{UserID: "U1", Food: "ramen", RecordedAt: base.Add(48 * time.Hour)},
		{UserID: "U2", Food: "toast", RecordedAt: base.Add(24 * time.Hour)},
	}
	for _, m := range meals {
		if err := store.SaveMeal(ctx, m); err != nil {
			t.Fatalf("SaveMeal(%q) error = %v", m.Food, err)
		}
	}

	got, err := store.GetMealsSince(ctx, "U1", base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetMealsSince() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetMealsSince() returned %d meals, want 2", len(got))
	}
	if got[0].Food != "salad" || got[1].Food != "ramen" {
		t.Errorf("meals = [%s, %s], want chronological [salad, ramen]", got[0].Food, got[1].Food)
	}
	if got[0].Nutrition != `{"calories":120}` {
		t.Errorf("nutrition = %q, want the stored payload", got[0].Nutrition)
	}
	for _, m := range got {
		if m.UserID != "U1" {
			t.Errorf("got meal for user %q, want only U1", m.UserID)
		}
	}
}

func TestGetMealsSinceEmptyWindow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveMeal(ctx, &Meal{UserID: "U1", Food: "pizza", RecordedAt: time.Now().UTC().Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("SaveMeal() error = %v", err)
	}

	got, err := store.GetMealsSince(ctx, "U1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetMealsSince() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetMealsSince() returned %d meals, want 0", len(got))
	}
}

func TestSaveMealValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		name string
		meal *Meal
	}{
		{"nil meal", nil},
		{"missing user", &Meal{Food: "pizza", RecordedAt: now}},
		{"missing food", &Meal{UserID: "U1", RecordedAt: now}},
		{"zero recorded_at", &Meal{UserID: "U1", Food: "pizza"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.SaveMeal(ctx, tc.meal); err == nil {
				t.Error("SaveMeal() error = nil, want validation error")
			}
		})
	}
}

func TestRecordUserPhotoUpsert(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	if err := store.RecordUserPhoto(ctx, "U1", first, []string{"Person", "Smile"}, []string{"Person"}); err != nil {
		t.Fatalf("RecordUserPhoto() first call error = %v", err)
	}
	second := first.Add(time.Hour)
	if err := store.RecordUserPhoto(ctx, "U1", second, []string{"Person", "Hat"}, nil); err != nil {
		t.Fatalf("RecordUserPhoto() second call error = %v", err)
	}

	profiles, err := store.GetAllUserProfiles(ctx)
	if err != nil {
		t.Fatalf("GetAllUserProfiles() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(profiles))
	}

	p := profiles[0]
	if p.UserID != "U1" {
		t.Errorf("user_id = %q, want U1", p.UserID)
	}
	if p.PhotoCount != 2 {
		t.Errorf("photo_count = %d, want 2 after two upserts", p.PhotoCount)
	}
	if p.LastLabels != "Person,Hat" {
		t.Errorf("last_labels = %q, want snapshot from the latest photo", p.LastLabels)
	}
	if p.LastObjects != "" {
		t.Errorf("last_objects = %q, want overwritten to empty", p.LastObjects)
	}
	if !p.LastPhotoAt.Equal(second) {
		t.Errorf("last_photo_at = %v, want %v", p.LastPhotoAt, second)
	}
}

func TestRecordUserPhotoRequiresUserID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.RecordUserPhoto(context.Background(), "", time.Now().UTC(), nil, nil); err == nil {
		t.Error("RecordUserPhoto() error = nil, want error for empty user_id")
	}
}

func TestGetAllUserProfilesMultipleUsers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, userID := range []string{"U1", "U2", "U3"} {
		if err := store.RecordUserPhoto(ctx, userID, now, []string{"Person"}, nil); err != nil {
			t.Fatalf("RecordUserPhoto(%s) error = %v", userID, err)
		}
	}

	profiles, err := store.GetAllUserProfiles(ctx)
	if err != nil {
		t.Fatalf("GetAllUserProfiles() error = %v", err)
	}
	if len(profiles) != 3 {
		t.Errorf("got %d profiles, want 3", len(profiles))
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Errorf("RunSQLMaintenance() error = %v", err)
	}
}
