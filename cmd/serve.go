package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vtcivics/statehouse/internal/api"
	"github.com/vtcivics/statehouse/internal/app"
	"github.com/vtcivics/statehouse/internal/config"
)

// runServe initializes and starts the HTTP API server.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	var serveArgs []string
	if len(os.Args) > 2 {
		serveArgs = os.Args[2:]
	}
	addr, err := parseServeAddr(serveArgs)
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting HTTP API server", "version", Version)

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	srv := api.NewServer(a.Graph, a.DBPool, logger)

	logger.Info("HTTP server ready",
		"addr", addr,
		"api", "/api/query",
		"health", "/health, /ready",
	)

	return srv.Run(ctx, addr)
}
