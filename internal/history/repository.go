package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("resume position not found")

// Repository stores the last known playback position per video.
type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

func (r *Repository) SavePosition(ctx context.Context, video string, seconds float64) error {
	key, err := normalizeVideo(video)
	if err != nil {
		return err
	}
	if seconds < 0 {
		seconds = 0
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO resume_positions(video, position_seconds, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(video) DO UPDATE SET
			position_seconds = excluded.position_seconds,
			updated_at = excluded.updated_at
	`, key, seconds, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save resume position %q: %w", key, err)
	}

	return nil
}

func (r *Repository) Position(ctx context.Context, video string) (float64, error) {
	key, err := normalizeVideo(video)
	if err != nil {
		return 0, err
	}

	var seconds float64
	err = r.db.QueryRowContext(ctx, "SELECT position_seconds FROM resume_positions WHERE video = ?", key).Scan(&seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read resume position %q: %w", key, err)
	}

	return seconds, nil
}

func (r *Repository) ClearPosition(ctx context.Context, video string) error {
	key, err := normalizeVideo(video)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM resume_positions WHERE video = ?", key); err != nil {
		return fmt.Errorf("clear resume position %q: %w", key, err)
	}

	return nil
}

func normalizeVideo(video string) (string, error) {
	trimmed := strings.TrimSpace(video)
	if trimmed == "" {
		return "", errors.New("video is required")
	}
	return trimmed, nil
}
