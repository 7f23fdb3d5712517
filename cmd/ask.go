package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vtcivics/statehouse/internal/app"
	"github.com/vtcivics/statehouse/internal/config"
	"github.com/vtcivics/statehouse/internal/corpus"
)

// runAsk answers a single question and prints the response with its
// source citations.
func runAsk(args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("usage: statehouse ask <question>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	resp, err := a.Graph.Run(ctx, question, nil)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(resp.TextResponse)
	printCitations(os.Stdout, resp.Documents)
	return nil
}

// printCitations lists the source passages behind an answer. Citations are
// numbered from 1.
func printCitations(w io.Writer, docs []corpus.Payload) {
	if len(docs) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for i, doc := range docs {
		line := fmt.Sprintf("  [%d] %s", i+1, corpus.ComposeTitle(doc.Metadata, i+1))
		if date := corpus.CitationDate(doc.Metadata); date != "" {
			line += " (" + date + ")"
		}
		fmt.Fprintln(w, line)
		if url := doc.URL(); url != "" {
			fmt.Fprintf(w, "      %s\n", url)
		}
	}
}
