package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"reel/internal/vimeo"
)

const defaultLogLevel = "info"

// Config captures the application settings read from config.toml.
type Config struct {
	LogLevel string
	Resume   bool
	Player   Player
}

// Player holds default property values applied to every render. Unset
// fields leave the player's own defaults in place.
type Player struct {
	Autopause    *bool    `toml:"autopause"`
	Autoplay     *bool    `toml:"autoplay"`
	Color        string   `toml:"color"`
	Controls     *bool    `toml:"controls"`
	Loop         *bool    `toml:"loop"`
	Muted        *bool    `toml:"muted"`
	DNT          *bool    `toml:"dnt"`
	Keyboard     *bool    `toml:"keyboard"`
	Quality      string   `toml:"quality"`
	TextTrack    string   `toml:"text_track"`
	Volume       *float64 `toml:"volume"`
	PlaybackRate *float64 `toml:"playback_rate"`
	Width        string   `toml:"width"`
	Height       string   `toml:"height"`
}

func Default() Config {
	return Config{LogLevel: defaultLogLevel, Resume: true}
}

// Load parses the config at path, falling back to defaults when it is
// missing.
func Load(path string) (Config, error) {
	cfg := Default()

	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return Parse(bytes)
}

// Parse decodes config.toml contents on top of the defaults.
func Parse(data []byte) (Config, error) {
	var raw struct {
		LogLevel string `toml:"log_level"`
		Resume   *bool  `toml:"resume"`
		Player   Player `toml:"player"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if level := strings.ToLower(strings.TrimSpace(raw.LogLevel)); level != "" {
		cfg.LogLevel = level
	}
	if raw.Resume != nil {
		cfg.Resume = *raw.Resume
	}
	cfg.Player = raw.Player
	cfg.Player.Color = strings.TrimPrefix(strings.TrimSpace(cfg.Player.Color), "#")
	cfg.Player.Quality = strings.TrimSpace(cfg.Player.Quality)
	cfg.Player.TextTrack = strings.TrimSpace(cfg.Player.TextTrack)

	if err := cfg.Player.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Level maps LogLevel to a slog level; unknown names mean info.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Props converts the defaults to a property set for the player.
func (p Player) Props() vimeo.Props {
	return vimeo.Props{
		Autopause:    p.Autopause,
		Autoplay:     p.Autoplay,
		Color:        p.Color,
		Controls:     p.Controls,
		Loop:         p.Loop,
		Muted:        p.Muted,
		DNT:          p.DNT,
		Keyboard:     p.Keyboard,
		Quality:      p.Quality,
		TextTrack:    p.TextTrack,
		Volume:       p.Volume,
		PlaybackRate: p.PlaybackRate,
		Width:        p.Width,
		Height:       p.Height,
	}
}

func (p Player) validate() error {
	if p.Volume != nil && (*p.Volume < 0 || *p.Volume > 1) {
		return fmt.Errorf("player.volume must be between 0 and 1, got %v", *p.Volume)
	}
	if p.PlaybackRate != nil && (*p.PlaybackRate < 0.5 || *p.PlaybackRate > 2) {
		return fmt.Errorf("player.playback_rate must be between 0.5 and 2, got %v", *p.PlaybackRate)
	}
	return nil
}
