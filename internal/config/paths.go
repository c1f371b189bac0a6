package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	BaseDir    string
	DBPath     string
	ConfigPath string
}

// ResolvePaths returns the per-user locations for appSlug, creating the base
// directory when needed.
func ResolvePaths(appSlug string) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
	}

	baseDir := filepath.Join(configDir, appSlug)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create app config dir: %w", err)
	}

	return Paths{
		BaseDir:    baseDir,
		DBPath:     filepath.Join(baseDir, "history.db"),
		ConfigPath: filepath.Join(baseDir, "config.toml"),
	}, nil
}
