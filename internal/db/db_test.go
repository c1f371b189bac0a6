package db

import (
	"path/filepath"
	"testing"
)

func TestBootstrapIsRepeatable(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "reel.db")

	for i := 0; i < 2; i++ {
		database, err := Bootstrap(dbPath)
		if err != nil {
			t.Fatalf("bootstrap %d: %v", i, err)
		}

		var count int
		if err := database.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&count); err != nil {
			database.Close()
			t.Fatalf("count migrations: %v", err)
		}
		database.Close()

		if count != 1 {
			t.Fatalf("expected one recorded migration, got %d", count)
		}
	}
}
