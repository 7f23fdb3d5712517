// Package tools defines the Genkit tools available to the query agent:
// search_legislation for grounded retrieval over the legislative corpus and
// current_time for date arithmetic.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/vtcivics/statehouse/internal/corpus"
)

// SearchLegislationName is the Genkit tool name for corpus retrieval.
const SearchLegislationName = "search_legislation"

// MaxQueryLength bounds the query accepted by search_legislation.
const MaxQueryLength = 2000

// Searcher is the slice of corpus.Store the retrieval tool depends on.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...corpus.SearchOption) ([]corpus.Document, error)
}

// Legislation holds dependencies for the search_legislation handler.
type Legislation struct {
	store     Searcher
	g         *genkit.Genkit
	modelName string
	logger    *slog.Logger
}

// NewLegislation creates a Legislation instance. modelName is the
// provider-qualified model used to draft grounded answers.
func NewLegislation(store Searcher, g *genkit.Genkit, modelName string, logger *slog.Logger) (*Legislation, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Legislation{store: store, g: g, modelName: modelName, logger: logger}, nil
}

const draftSystemPrompt = `You answer questions about the Vermont General Assembly using only the
provided passages from acts and chamber journals. Cite bill numbers and
dates when the passages contain them. If the passages do not answer the
question, say so plainly instead of guessing.`

// Search retrieves passages for the question and drafts a grounded answer.
//
// Search failures return an error so the model sees a readable failure and
// can retry or answer without retrieval. The draft model call failing is
// degraded instead: the passages are still returned with an empty response.
func (l *Legislation) Search(ctx *ai.ToolContext, input SearchInput) (Retrieval, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return Retrieval{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		query = query[:MaxQueryLength]
	}

	opts := []corpus.SearchOption{corpus.WithTopK(input.TopK)}
	if input.StartDate != "" {
		t, err := time.Parse("2006-01-02", input.StartDate)
		if err != nil {
			return Retrieval{}, fmt.Errorf("startDate must be YYYY-MM-DD: %w", err)
		}
		opts = append(opts, corpus.WithStartDate(t))
	}
	if input.EndDate != "" {
		t, err := time.Parse("2006-01-02", input.EndDate)
		if err != nil {
			return Retrieval{}, fmt.Errorf("endDate must be YYYY-MM-DD: %w", err)
		}
		opts = append(opts, corpus.WithEndDate(t))
	}

	docs, err := l.store.Search(ctx, query, opts...)
	if err != nil {
		l.logger.Error("legislation search failed", "error", err)
		return Retrieval{}, fmt.Errorf("searching corpus: %w", err)
	}

	payloads := make([]corpus.Payload, len(docs))
	for i, doc := range docs {
		payloads[i] = corpus.FromDocument(doc)
	}

	retrieval := Retrieval{
		Question:  query,
		Documents: payloads,
	}

	if len(docs) == 0 {
		retrieval.Response = "No matching passages were found in the corpus."
		return retrieval, nil
	}

	draft, err := l.draftAnswer(ctx, query, docs)
	if err != nil {
		l.logger.Warn("draft answer generation failed, returning passages only", "error", err)
		return retrieval, nil
	}
	retrieval.Response = draft

	l.logger.Debug("legislation search complete",
		"query_len", len(query),
		"documents", len(docs))
	return retrieval, nil
}

// draftAnswer composes a grounded draft from the retrieved passages.
func (l *Legislation) draftAnswer(ctx context.Context, question string, docs []corpus.Document) (string, error) {
	var sb strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, corpus.ComposeTitle(doc.Metadata, i+1))
		if date := corpus.CitationDate(doc.Metadata); date != "" {
			fmt.Fprintf(&sb, "Date: %s\n", date)
		}
		sb.WriteString(doc.Content)
		sb.WriteString("\n\n")
	}

	resp, err := genkit.Generate(ctx, l.g,
		ai.WithModelName(l.modelName),
		ai.WithSystem(draftSystemPrompt),
		ai.WithPrompt("Passages:\n\n%s\nQuestion: %s", sb.String(), question),
	)
	if err != nil {
		return "", fmt.Errorf("generating draft answer: %w", err)
	}
	return resp.Text(), nil
}
