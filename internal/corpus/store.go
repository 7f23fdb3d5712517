package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"
)

// documentCols is the standard SELECT column list for scanDocuments.
const documentCols = `id, content, metadata, journal_date, created_at`

// upsertDocumentSQL makes re-ingesting a source file idempotent: chunk IDs
// are deterministic, so a second run overwrites rather than duplicates.
const upsertDocumentSQL = `INSERT INTO documents (id, content, embedding, metadata, journal_date)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET content = EXCLUDED.content,
	    embedding = EXCLUDED.embedding,
	    metadata = EXCLUDED.metadata,
	    journal_date = EXCLUDED.journal_date`

// Store manages legislative document chunks backed by PostgreSQL + pgvector.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewStore creates a document Store.
func NewStore(pool *pgxpool.Pool, embedder ai.Embedder, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, embedder: embedder, logger: logger}, nil
}

// embed generates vector embeddings for the given texts in one request.
func (s *Store) embed(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	dim := VectorDimension
	input := make([]*ai.Document, len(texts))
	for i, text := range texts {
		input[i] = ai.DocumentFromText(text, nil)
	}
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   input,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingMismatch, len(resp.Embeddings), len(texts))
	}
	vecs := make([]pgvector.Vector, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding response at index %d", i)
		}
		vecs[i] = pgvector.NewVector(emb.Embedding)
	}
	return vecs, nil
}

// Add embeds and upserts the given documents in a single transaction.
// Documents with empty content are rejected before any work happens.
func (s *Store) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			return fmt.Errorf("%w: document %q", ErrEmptyContent, doc.ID)
		}
		texts[i] = doc.Content
	}

	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	vecs, err := s.embed(embedCtx, texts)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", rbErr)
		}
	}()

	for i, doc := range docs {
		if _, err := tx.Exec(ctx, upsertDocumentSQL,
			doc.ID, doc.Content, vecs[i], doc.Metadata, doc.JournalDate,
		); err != nil {
			return fmt.Errorf("inserting document %q: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing documents: %w", err)
	}

	s.logger.Debug("documents stored", "count", len(docs))
	return nil
}

// SearchOption configures a Search call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	topK      int
	startDate *time.Time
	endDate   *time.Time
}

// WithTopK sets the maximum number of results. Values outside [1, MaxTopK]
// are clamped.
func WithTopK(k int) SearchOption {
	return func(o *searchOptions) { o.topK = k }
}

// WithStartDate restricts results to journal chunks sitting on or after t.
func WithStartDate(t time.Time) SearchOption {
	return func(o *searchOptions) { o.startDate = &t }
}

// WithEndDate restricts results to journal chunks sitting on or before t.
func WithEndDate(t time.Time) SearchOption {
	return func(o *searchOptions) { o.endDate = &t }
}

// Search finds documents similar to the query, ordered by cosine similarity
// descending. Date filters apply only to rows that carry a journal_date;
// acts (NULL journal_date) are excluded when a date filter is set.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Document, error) {
	if strings.TrimSpace(query) == "" {
		return []Document{}, nil
	}

	o := searchOptions{topK: DefaultTopK}
	for _, opt := range opts {
		opt(&o)
	}
	if o.topK <= 0 {
		o.topK = DefaultTopK
	}
	if o.topK > MaxTopK {
		o.topK = MaxTopK
	}
	if len(query) > MaxSearchQueryLen {
		query = query[:MaxSearchQueryLen]
	}
	if strings.ContainsRune(query, 0) {
		return []Document{}, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	vecs, err := s.embed(embedCtx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	vec := vecs[0]

	searchCtx, cancel := context.WithTimeout(ctx, SearchTimeout)
	defer cancel()

	rows, err := s.pool.Query(searchCtx,
		`SELECT `+documentCols+`, 1 - (embedding <=> $1) AS similarity
		 FROM documents
		 WHERE ($2::date IS NULL OR journal_date >= $2)
		   AND ($3::date IS NULL OR journal_date <= $3)
		 ORDER BY embedding <=> $1
		 LIMIT $4`,
		vec, o.startDate, o.endDate, o.topK,
	)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows, true)
}

// Count returns the total number of stored chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// DeleteBySource removes all chunks ingested from the given source file.
// Returns the number of rows deleted.
func (s *Store) DeleteBySource(ctx context.Context, fileName string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE metadata ->> 'file_name' = $1`, fileName)
	if err != nil {
		return 0, fmt.Errorf("deleting documents for %q: %w", fileName, err)
	}
	return tag.RowsAffected(), nil
}

// scanDocuments reads rows produced with documentCols, optionally followed
// by a similarity column.
func scanDocuments(rows pgx.Rows, withSimilarity bool) ([]Document, error) {
	docs := []Document{}
	for rows.Next() {
		var doc Document
		dest := []any{&doc.ID, &doc.Content, &doc.Metadata, &doc.JournalDate, &doc.CreatedAt}
		if withSimilarity {
			dest = append(dest, &doc.Similarity)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}
