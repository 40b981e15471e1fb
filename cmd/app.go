package cmd

import (
	"fmt"

	"github.com/illarion/cloak/internal/config"
	"github.com/illarion/cloak/internal/core"
	"github.com/illarion/cloak/internal/keystore"
	"github.com/illarion/cloak/internal/logger"
	"github.com/illarion/cloak/internal/storage"
	"github.com/illarion/cloak/internal/vaultdir"
	"github.com/illarion/cloak/internal/viewer"
)

// App holds the wired collaborators for one CLI invocation
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Settings *storage.Settings
	Keys     *keystore.Store
	Dir      *vaultdir.Dir
	Engine   *core.Engine
}

// OpenApp loads configuration and opens every store the commands need
func OpenApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewFileLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Log: log}

	app.Settings, err = storage.OpenSettings(cfg.SettingsPath)
	if err != nil {
		app.Close()
		return nil, err
	}

	stored, err := app.Settings.SecurityLevel()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to read security level: %w", err)
	}
	level, err := core.ParseLevel(stored)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Keys = keystore.New(cfg.KeyringService)

	app.Dir, err = vaultdir.Open(cfg.VaultDir, cfg.StagingDir, vaultdir.WithLogger(log))
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Engine, err = core.New(core.Options{
		Dir:          app.Dir,
		Keys:         app.Keys,
		Settings:     app.Settings,
		Viewer:       viewer.NewLauncher(log),
		Logger:       log,
		Level:        level,
		StagingGrace: cfg.StagingGrace,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Close releases everything OpenApp acquired. It is safe to call twice.
func (a *App) Close() {
	if a.Engine != nil {
		a.Engine.Close()
		a.Engine = nil
	}
	if a.Dir != nil {
		a.Dir.Close()
		a.Dir = nil
	}
	if a.Settings != nil {
		a.Settings.Close()
		a.Settings = nil
	}
	if a.Log != nil {
		a.Log.Close()
	}
}

// OpenAppOrExit is like OpenApp but exits on error
func OpenAppOrExit() *App {
	app, err := OpenApp()
	if err != nil {
		HandleError(err)
	}
	return app
}

// OpenUnlocked opens the app and checks the master password
func OpenUnlocked() *App {
	app := OpenAppOrExit()
	if err := Authenticate(app); err != nil {
		app.Close()
		HandleError(err)
	}
	return app
}
