package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA busy_timeout=5000;",
}

// Bootstrap opens the database at dbPath and brings its schema up to date.
func Bootstrap(dbPath string) (*sql.DB, error) {
	database, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(database); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// resume positions are written from player callbacks on several
	// goroutines; a single connection keeps writes serialized
	database.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", pragma, err)
		}
	}

	return database, nil
}
