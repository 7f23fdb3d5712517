// Package ingest loads Vermont acts and chamber journals into the corpus.
//
// Acts live one directory per bill under the acts dir; journals are flat
// files named with a chamber prefix and a date code. Sources are PDF or
// plain text. Each file is extracted, split into chunks, and upserted
// with deterministic IDs so a re-run replaces rather than duplicates.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/ledongthuc/pdf"

	"github.com/vtcivics/statehouse/internal/corpus"
)

// DefaultWorkers is the number of files processed concurrently.
const DefaultWorkers = 4

// LockFileName is the advisory lock taken for the duration of a run, so two
// ingest processes cannot interleave writes to the same corpus.
const LockFileName = ".statehouse-ingest.lock"

// Adder is the slice of corpus.Store the ingester depends on.
type Adder interface {
	Add(ctx context.Context, docs []corpus.Document) error
}

// Result summarizes one ingest run.
type Result struct {
	FilesProcessed int
	FilesFailed    int
	Chunks         int
}

// Ingester walks the corpus directories and indexes their PDFs.
type Ingester struct {
	store       Adder
	sessionYear int
	workers     int
	logger      *slog.Logger

	// extractText is swappable for tests.
	extractText func(path string) (string, error)
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithWorkers sets the number of concurrent file workers.
func WithWorkers(n int) Option {
	return func(ing *Ingester) {
		if n > 0 {
			ing.workers = n
		}
	}
}

// New creates an Ingester for the given legislative session year.
func New(store Adder, sessionYear int, logger *slog.Logger, opts ...Option) (*Ingester, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	ing := &Ingester{
		store:       store,
		sessionYear: sessionYear,
		workers:     DefaultWorkers,
		logger:      logger,
		extractText: extractFileText,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing, nil
}

// job is one PDF to index with its pre-derived metadata.
type job struct {
	path        string
	idPrefix    string
	metadata    map[string]any
	journalDate *time.Time
}

// Run ingests both corpus directories. A missing directory is logged and
// skipped, not fatal; per-file failures are counted and do not stop the
// run. The run holds a file lock so concurrent ingests are serialized.
func (ing *Ingester) Run(ctx context.Context, actsDir, journalsDir string) (Result, error) {
	lock := flock.New(filepath.Join(os.TempDir(), LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("acquiring ingest lock: %w", err)
	}
	if !locked {
		return Result{}, fmt.Errorf("another ingest run is in progress")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			ing.logger.Warn("releasing ingest lock", "error", err)
		}
	}()

	jobs, err := ing.collectJobs(actsDir, journalsDir)
	if err != nil {
		return Result{}, err
	}
	ing.logger.Info("ingest starting",
		"files", len(jobs),
		"workers", ing.workers,
		"session_year", ing.sessionYear)

	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)

	ch := make(chan job)
	for range ing.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range ch {
				chunks, err := ing.processFile(ctx, j)
				mu.Lock()
				if err != nil {
					result.FilesFailed++
					ing.logger.Error("file ingest failed", "path", j.path, "error", err)
				} else {
					result.FilesProcessed++
					result.Chunks += chunks
				}
				mu.Unlock()
			}
		}()
	}

	for _, j := range jobs {
		select {
		case <-ctx.Done():
			close(ch)
			wg.Wait()
			return result, ctx.Err()
		case ch <- j:
		}
	}
	close(ch)
	wg.Wait()

	ing.logger.Info("ingest complete",
		"processed", result.FilesProcessed,
		"failed", result.FilesFailed,
		"chunks", result.Chunks)
	return result, nil
}

// collectJobs gathers act PDFs (recursively, one directory per bill) and
// journal PDFs (flat).
func (ing *Ingester) collectJobs(actsDir, journalsDir string) ([]job, error) {
	var jobs []job

	if dirExists(actsDir) {
		err := filepath.WalkDir(actsDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !supportedExt(path) {
				return nil
			}
			meta := ActMetadata(path, ing.sessionYear)
			jobs = append(jobs, job{
				path:     path,
				idPrefix: fmt.Sprintf("acts-%s-%s", meta["bill_number"], baseName(path)),
				metadata: meta,
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking acts directory: %w", err)
		}
	} else {
		ing.logger.Warn("acts directory not found", "path", actsDir)
	}

	if dirExists(journalsDir) {
		entries, err := os.ReadDir(journalsDir)
		if err != nil {
			return nil, fmt.Errorf("reading journals directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !supportedExt(entry.Name()) {
				continue
			}
			path := filepath.Join(journalsDir, entry.Name())
			meta, journalDate := JournalMetadata(path, ing.sessionYear)
			jobs = append(jobs, job{
				path:        path,
				idPrefix:    "journals-" + baseName(path),
				metadata:    meta,
				journalDate: journalDate,
			})
		}
	} else {
		ing.logger.Warn("journals directory not found", "path", journalsDir)
	}

	return jobs, nil
}

// processFile extracts, splits, and stores one PDF. Returns the number of
// chunks written.
func (ing *Ingester) processFile(ctx context.Context, j job) (int, error) {
	text, err := ing.extractText(j.path)
	if err != nil {
		return 0, fmt.Errorf("extracting text: %w", err)
	}

	chunks := SplitText(text, ChunkSize)
	if len(chunks) == 0 {
		ing.logger.Warn("no text extracted", "path", j.path)
		return 0, nil
	}

	docs := make([]corpus.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = corpus.Document{
			ID:          fmt.Sprintf("%s-%04d", j.idPrefix, i),
			Content:     chunk,
			Metadata:    j.metadata,
			JournalDate: j.journalDate,
		}
	}

	if err := ing.store.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}

	ing.logger.Debug("file ingested", "path", j.path, "chunks", len(docs))
	return len(docs), nil
}

// supportedExt reports whether the file type can be ingested. Markdown is
// deliberately not accepted: corpus directories tend to carry README-style
// notes that must not be indexed.
func supportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// extractFileText reads a source file as plain text. PDFs go through the
// PDF reader; .txt is read as-is.
func extractFileText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDFText(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// extractPDFText pulls the plain text out of a PDF file.
func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("buffering pdf text: %w", err)
	}
	return buf.String(), nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
