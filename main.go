package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"printscout/logger"
	"printscout/scanner"
	"printscout/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "printscout:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgPath, err := LoadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.LevelFromString(cfg.Logging.Level), cfg.Logging.Dir, 500)
	defer log.Close()
	scanner.SetLogger(log)
	storage.SetLogger(log)

	if cfgPath != "" {
		log.Info("Loaded configuration", "path", cfgPath)
	} else {
		log.Info("No configuration file found, using defaults")
	}

	targets, problems, err := LoadTargetsFile(cfg.TargetsFile)
	if err != nil {
		return err
	}
	for _, p := range problems {
		log.Warn("Skipping targets entry", "problem", p)
	}
	if len(targets) == 0 {
		return fmt.Errorf("no valid targets in %s", cfg.TargetsFile)
	}

	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runDiscovery(ctx, cfg, store, targets, os.Stdout); err != nil {
		return err
	}

	if cfg.Monitor.Enabled {
		if err := runMonitor(ctx, cfg, store, log); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	return nil
}
