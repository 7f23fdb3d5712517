package agent

import (
	"testing"

	"github.com/firebase/genkit/go/ai"

	"github.com/vtcivics/statehouse/internal/corpus"
)

func TestFinalTextFirstTextPart(t *testing.T) {
	msg := ai.NewModelMessage(
		ai.NewTextPart("the answer"),
		ai.NewTextPart("trailing commentary"),
	)
	if got := finalText(msg); got != "the answer" {
		t.Errorf("finalText() = %q, want first part", got)
	}
}

func TestFinalTextNilMessage(t *testing.T) {
	if got := finalText(nil); got != "" {
		t.Errorf("finalText(nil) = %q", got)
	}
}

func TestBuildResponseDedupesByURL(t *testing.T) {
	docs := []corpus.Payload{
		{ID: "a-0", Metadata: map[string]any{"url": "https://x/1"}},
		{ID: "a-1", Metadata: map[string]any{"url": "https://x/2"}},
		{ID: "a-2", Metadata: map[string]any{"url": "https://x/1"}}, // duplicate URL
	}

	resp := buildResponse("answer", docs)

	if len(resp.Documents) != 2 {
		t.Fatalf("documents = %d, want 2", len(resp.Documents))
	}
	if resp.Documents[0].ID != "a-0" || resp.Documents[1].ID != "a-1" {
		t.Errorf("order not preserved: %v", resp.Documents)
	}
}

func TestBuildResponseDedupesByIDWithoutURL(t *testing.T) {
	docs := []corpus.Payload{
		{ID: "same", Metadata: map[string]any{}},
		{ID: "same", Metadata: map[string]any{}},
		{ID: "other", Metadata: map[string]any{}},
	}

	resp := buildResponse("answer", docs)
	if len(resp.Documents) != 2 {
		t.Errorf("documents = %d, want 2", len(resp.Documents))
	}
}

func TestBuildResponseKeepsKeylessDocuments(t *testing.T) {
	docs := []corpus.Payload{
		{Metadata: map[string]any{}},
		{Metadata: map[string]any{}},
	}

	resp := buildResponse("answer", docs)
	if len(resp.Documents) != 2 {
		t.Errorf("documents = %d, want 2 (keyless never deduped)", len(resp.Documents))
	}
}

func TestBuildResponseText(t *testing.T) {
	resp := buildResponse("verbatim text", nil)
	if resp.TextResponse != "verbatim text" {
		t.Errorf("TextResponse = %q", resp.TextResponse)
	}
	if resp.Documents == nil || len(resp.Documents) != 0 {
		t.Errorf("Documents = %v, want empty non-nil", resp.Documents)
	}
}
