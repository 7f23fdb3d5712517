package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vtcivics/statehouse/internal/app"
	"github.com/vtcivics/statehouse/internal/config"
	"github.com/vtcivics/statehouse/internal/ingest"
)

// runIngest indexes the configured act and journal directories. Positional
// arguments override the configured paths:
//
//	statehouse ingest [actsDir [journalsDir]]
func runIngest() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if len(os.Args) > 2 {
		cfg.ActsDir = os.Args[2]
	}
	if len(os.Args) > 3 {
		cfg.JournalsDir = os.Args[3]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	ing, err := ingest.New(a.Store, cfg.SessionYear, logger)
	if err != nil {
		return fmt.Errorf("creating ingester: %w", err)
	}

	result, err := ing.Run(ctx, cfg.ActsDir, cfg.JournalsDir)
	if err != nil {
		return fmt.Errorf("ingesting corpus: %w", err)
	}

	fmt.Printf("Ingested %d files (%d chunks), %d failed\n",
		result.FilesProcessed, result.Chunks, result.FilesFailed)
	if result.FilesFailed > 0 {
		return fmt.Errorf("%d files failed to ingest", result.FilesFailed)
	}
	return nil
}
