package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"reel/internal/db"
)

func newRepositoryForTest(t *testing.T) *Repository {
	t.Helper()

	database, err := db.Bootstrap(filepath.Join(t.TempDir(), "reel.db"))
	if err != nil {
		t.Fatalf("bootstrap db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewRepository(database)
}

func TestPositionRoundTripAndOverwrite(t *testing.T) {
	t.Parallel()

	repo := newRepositoryForTest(t)
	ctx := context.Background()

	if err := repo.SavePosition(ctx, " 76979871 ", 12.5); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SavePosition(ctx, "76979871", 30); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	seconds, err := repo.Position(ctx, "76979871")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if seconds != 30 {
		t.Fatalf("expected 30, got %v", seconds)
	}
}

func TestPositionMissingAndCleared(t *testing.T) {
	t.Parallel()

	repo := newRepositoryForTest(t)
	ctx := context.Background()

	if _, err := repo.Position(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.SavePosition(ctx, "https://vimeo.com/1", 4); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.ClearPosition(ctx, "https://vimeo.com/1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := repo.Position(ctx, "https://vimeo.com/1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestSavePositionRequiresVideo(t *testing.T) {
	t.Parallel()

	repo := newRepositoryForTest(t)
	if err := repo.SavePosition(context.Background(), "  ", 1); err == nil {
		t.Fatalf("expected an error for an empty video")
	}
}
