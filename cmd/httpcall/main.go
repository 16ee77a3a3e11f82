package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/httpcall/internal/app"
	"github.com/samvad-hq/httpcall/internal/cli"
	"github.com/samvad-hq/httpcall/internal/config"
	"github.com/samvad-hq/httpcall/internal/logger"
	"github.com/samvad-hq/httpcall/internal/storage"
	"github.com/samvad-hq/httpcall/pkg/httpclient"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "httpcall failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("httpcall starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(cfg.HistoryType, cfg.HistoryPath, storage.Options{
		TTL:             cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}

	exec := httpclient.NewExecutor(
		httpclient.WithOptions(httpclient.Options{
			ConnectTimeout: cfg.ConnectTimeout,
			ReadTimeout:    cfg.ReadTimeout,
		}),
		httpclient.WithLogger(log),
	)

	runner, err := app.NewRunner(exec, store, log)
	if err != nil {
		store.Close()
		return fmt.Errorf("init runner: %w", err)
	}
	defer runner.Close()

	root := cli.NewRootCmd(&cli.Env{
		Runner:    runner,
		Log:       log,
		NoColor:   cfg.NoColor,
		Version:   version,
		BuildTime: buildTime,
	})
	return root.ExecuteContext(ctx)
}
