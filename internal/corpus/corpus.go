// Package corpus stores and retrieves legislative document chunks backed by
// PostgreSQL + pgvector.
//
// A Document is one chunk of an act or a journal with its embedding and
// metadata. A Payload is the JSON-safe projection of a Document used on tool
// and API boundaries; FromDocument normalizes metadata and derives a
// citation URL.
package corpus

import (
	"errors"
	"time"
)

const (
	// VectorDimension is the embedding dimension stored in the documents
	// table. gemini-embedding-001 is truncated to this via
	// OutputDimensionality; the pgvector column is declared vector(768).
	VectorDimension int32 = 768

	// EmbedTimeout bounds a single embedding API call.
	EmbedTimeout = 30 * time.Second

	// SearchTimeout bounds a similarity search round trip.
	SearchTimeout = 15 * time.Second

	// MaxTopK is the upper bound on results per search.
	MaxTopK = 10

	// DefaultTopK is used when a caller passes topK <= 0.
	DefaultTopK = 4

	// MaxSearchQueryLen truncates oversized queries before embedding.
	MaxSearchQueryLen = 8192
)

var (
	// ErrEmptyContent indicates a document with no text was given to Add.
	ErrEmptyContent = errors.New("document content is empty")

	// ErrEmbeddingMismatch indicates the embedder returned a different
	// number of vectors than documents submitted.
	ErrEmbeddingMismatch = errors.New("embedding count does not match document count")
)

// Document is one stored chunk of a legislative source.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any

	// JournalDate is the sitting date for journal chunks, nil for acts.
	JournalDate *time.Time

	CreatedAt time.Time

	// Similarity is populated by Search (cosine similarity, higher is
	// closer). Zero for documents not produced by a search.
	Similarity float64
}
