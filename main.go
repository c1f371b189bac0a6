package main

import (
	"context"
	"embed"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/wailsapp/wails/v3/pkg/application"

	"reel/internal/config"
	"reel/internal/db"
	"reel/internal/history"
	"reel/internal/player"
	"reel/internal/session"
)

//go:embed all:frontend/dist
var assets embed.FS

func init() {
	application.RegisterEvent[session.State](session.EventStateChanged)
	application.RegisterEvent[session.State](session.EventReady)
	application.RegisterEvent[player.Event](session.EventPlayer)
	application.RegisterEvent[string](session.EventError)
}

func main() {
	paths, err := config.ResolvePaths("reel")
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(paths.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Level(),
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	sqliteDB, err := db.Bootstrap(paths.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqliteDB.Close()

	positions := history.NewRepository(sqliteDB)
	sessionDomain := session.NewService(player.NewMPV, positions, session.Options{
		Defaults: cfg.Player.Props(),
		Resume:   cfg.Resume,
		Logger:   logger,
	})
	defer sessionDomain.Close()
	playerService := NewPlayerService(sessionDomain)

	app := application.New(application.Options{
		Name:        "Reel",
		Description: "Desktop video player",
		Services: []application.Service{
			application.NewService(playerService),
		},
		Assets: application.AssetOptions{
			Handler: application.AssetFileServerFS(assets),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: true,
		},
	})

	sessionDomain.SetEmitter(func(eventName string, payload any) {
		app.Event.Emit(eventName, payload)
	})

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	if err := config.Watch(watchCtx, paths.ConfigPath, logger, func(updated config.Config) {
		logger.Info("config reloaded", "path", paths.ConfigPath)
		if _, err := sessionDomain.SetDefaults(updated.Player.Props()); err != nil {
			logger.Warn("apply reloaded defaults failed", "error", err)
		}
	}); err != nil {
		logger.Warn("config watcher disabled", "error", err)
	}

	app.Window.NewWithOptions(application.WebviewWindowOptions{
		Title: "Reel",
		Mac: application.MacWindow{
			InvisibleTitleBarHeight: 50,
			Backdrop:                application.MacBackdropTranslucent,
			TitleBar:                application.MacTitleBarHiddenInset,
		},
		BackgroundColour: application.NewRGB(12, 18, 24),
		URL:              "/",
	})

	err = app.Run()
	if err != nil {
		log.Fatal(err)
	}
}
