package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"tandem/internal/cli"
	"tandem/internal/config"
	"tandem/internal/logging"
	"tandem/internal/storage"
	"tandem/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := config.ResolveConfigPath()
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, logCloser, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	log.WithFields(map[string]any{
		"config":       configPath,
		"backend":      cfg.Backend,
		"first_launch": firstLaunch,
	}).Info("starting")

	backend, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Backend, err)
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New(backend, store.Options{
		Key:      cfg.StateKey,
		PageSize: cfg.PageSize,
		Logger:   log,
	})
	if err := st.Load(ctx); err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	app := &cli.App{
		Store:  st,
		Config: cfg,
		Log:    log,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
