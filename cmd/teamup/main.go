package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teamup-platform/teamup-cli/internal/api"
	"github.com/teamup-platform/teamup-cli/internal/app"
	"github.com/teamup-platform/teamup-cli/internal/cache"
	"github.com/teamup-platform/teamup-cli/internal/credential"
	"github.com/teamup-platform/teamup-cli/internal/logging"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/notify"
	"github.com/teamup-platform/teamup-cli/internal/session"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "config file path")
	serverURL := flag.String("server", "", "override the platform API base URL")
	flag.Parse()

	if err := run(*configPath, *serverURL); err != nil {
		fmt.Fprintf(os.Stderr, "teamup: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, serverURL string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}

	logger, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	if closeLog != nil {
		defer closeLog()
	}

	client := api.NewClient(cfg.Server.BaseURL)
	gate := session.NewGate(client, credential.NewKeyringStore(), logger)

	interval := time.Duration(cfg.Display.PollIntervalSec) * time.Second
	sync := notify.New(client, interval, logger)

	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = model.DefaultCachePath()
	}
	snapshots, err := cache.New(cachePath)
	if err != nil {
		// The cache only speeds up startup; run without it.
		logger.Warn().Err(err).Msg("opening snapshot cache failed")
		snapshots = nil
	} else {
		defer snapshots.Close()
	}

	program := tea.NewProgram(
		app.New(client, gate, sync, snapshots, logger),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
