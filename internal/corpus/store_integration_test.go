//go:build integration
// +build integration

package corpus

import (
	"context"
	"testing"
	"time"

	"github.com/firebase/genkit/go/genkit"

	"github.com/vtcivics/statehouse/internal/log"
	"github.com/vtcivics/statehouse/internal/testutil"
)

func setupStore(t *testing.T) (*Store, *testutil.MockEmbedder) {
	t.Helper()

	tdb, cleanup := testutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	g := genkit.Init(context.Background())
	mockEmb := testutil.NewMockEmbedder(int(VectorDimension))
	embedder := mockEmb.RegisterEmbedder(g)

	store, err := NewStore(tdb.Pool, embedder, log.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, mockEmb
}

// axisVector returns a unit vector along the given axis, so cosine
// similarity between distinct axes is exactly 0.
func axisVector(axis int) []float32 {
	vec := make([]float32, VectorDimension)
	vec[axis] = 1
	return vec
}

func TestStoreAddAndSearch(t *testing.T) {
	store, mockEmb := setupStore(t)
	ctx := context.Background()

	mockEmb.SetVector("broadband expansion", axisVector(0))
	mockEmb.SetVector("dairy farming", axisVector(1))
	mockEmb.SetVector("which bills cover broadband?", axisVector(0))

	err := store.Add(ctx, []Document{
		{
			ID:      "acts-H0123-0",
			Content: "broadband expansion",
			Metadata: map[string]any{
				"file_name":   "as_enacted.pdf",
				"bill_number": "H.123",
				"source_url":  "https://legislature.vermont.gov/bill/status/2026/H.123",
			},
		},
		{
			ID:       "acts-S0045-0",
			Content:  "dairy farming",
			Metadata: map[string]any{"bill_number": "S.45"},
		},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	docs, err := store.Search(ctx, "which bills cover broadband?", WithTopK(1))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if docs[0].ID != "acts-H0123-0" {
		t.Errorf("top result = %q, want acts-H0123-0", docs[0].ID)
	}
	if docs[0].Similarity < 0.99 {
		t.Errorf("similarity = %f, want ~1", docs[0].Similarity)
	}
	if docs[0].Metadata["bill_number"] != "H.123" {
		t.Errorf("metadata lost: %v", docs[0].Metadata)
	}
}

func TestStoreUpsertIsIdempotent(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	doc := Document{
		ID:       "journals-hj2025-03-14-0",
		Content:  "the house convened at ten o'clock",
		Metadata: map[string]any{"file_name": "hj2025-03-14.pdf"},
	}
	for range 2 {
		if err := store.Add(ctx, []Document{doc}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestStoreSearchDateFilter(t *testing.T) {
	store, mockEmb := setupStore(t)
	ctx := context.Background()

	// Same embedding for both so only the date filter separates them.
	vec := axisVector(2)
	mockEmb.SetVector("journal entry january", vec)
	mockEmb.SetVector("journal entry march", vec)
	mockEmb.SetVector("what happened in the session?", vec)

	january := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	march := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	err := store.Add(ctx, []Document{
		{ID: "j-jan", Content: "journal entry january", Metadata: map[string]any{}, JournalDate: &january},
		{ID: "j-mar", Content: "journal entry march", Metadata: map[string]any{}, JournalDate: &march},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	docs, err := store.Search(ctx, "what happened in the session?",
		WithTopK(5),
		WithStartDate(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
	)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "j-mar" {
		t.Fatalf("got %v, want only j-mar", docs)
	}
}

func TestStoreDeleteBySource(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	err := store.Add(ctx, []Document{
		{ID: "a-0", Content: "alpha", Metadata: map[string]any{"file_name": "a.pdf"}},
		{ID: "a-1", Content: "beta", Metadata: map[string]any{"file_name": "a.pdf"}},
		{ID: "b-0", Content: "gamma", Metadata: map[string]any{"file_name": "b.pdf"}},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	deleted, err := store.DeleteBySource(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("DeleteBySource: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestStoreSearchEmptyQuery(t *testing.T) {
	store, _ := setupStore(t)

	docs, err := store.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d docs, want 0", len(docs))
	}
}
