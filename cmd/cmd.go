// Package cmd provides the CLI commands for the statehouse assistant.
//
// Commands:
//   - serve: HTTP API server
//   - ingest: index act and journal PDFs into the corpus
//   - ask: one-shot question on the command line
//
// Signal handling and graceful shutdown are implemented for all
// long-running commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the statehouse CLI.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "ingest":
		return runIngest()
	case "ask":
		return runAsk(os.Args[2:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Statehouse - ask questions about the Vermont General Assembly")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  statehouse serve [addr]   Start HTTP API server (default: 127.0.0.1:8080)")
	fmt.Println("  statehouse ingest [acts [journals]]")
	fmt.Println("                            Index act and journal files into the corpus")
	fmt.Println("  statehouse ask <question> Ask a one-shot question")
	fmt.Println("  statehouse --version      Show version information")
	fmt.Println("  statehouse --help         Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY            Required for the gemini provider")
	fmt.Println("  DATABASE_URL              Optional: overrides the postgres settings")
	fmt.Println("  DEBUG                     Optional: enable debug logging")
}
