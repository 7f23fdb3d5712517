// Package app wires the application together: configuration, database,
// Genkit provider plugins, the corpus store, tools, and the agent graph.
package app

import (
	"context"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vtcivics/statehouse/internal/agent"
	"github.com/vtcivics/statehouse/internal/config"
	"github.com/vtcivics/statehouse/internal/corpus"
	"github.com/vtcivics/statehouse/internal/tools"
)

// App is the core application container.
type App struct {
	Config *config.Config

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool
	Store    *corpus.Store
	Graph    *agent.Graph

	Legislation *tools.Legislation
	System      *tools.System
	Tools       []ai.Tool

	otelCleanup func()
	cancel      context.CancelFunc
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	slog.Info("shutting down application")

	if a.cancel != nil {
		a.cancel()
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		slog.Info("database pool closed")
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
