package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/vtcivics/statehouse/internal/corpus"
	"github.com/vtcivics/statehouse/internal/log"
	"github.com/vtcivics/statehouse/internal/testutil"
	"github.com/vtcivics/statehouse/internal/tools"
)

// retrievalFunc fakes the search_legislation handler per test.
type retrievalFunc func(input tools.SearchInput) (tools.Retrieval, error)

func setupGraph(t *testing.T, mock *testutil.MockLLM, retrieve retrievalFunc, opts ...Option) *Graph {
	t.Helper()

	g := genkit.Init(context.Background())
	mock.RegisterModel(g)

	searchTool := genkit.DefineTool(g, tools.SearchLegislationName,
		"search the legislative corpus",
		func(_ *ai.ToolContext, input tools.SearchInput) (tools.Retrieval, error) {
			return retrieve(input)
		})

	sys, err := tools.NewSystem(log.NewNop())
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	timeTool := genkit.DefineTool(g, tools.CurrentTimeName,
		"current date and time", sys.CurrentTime)

	gr, err := New(g, "mock/test-model", []ai.Tool{searchTool, timeTool}, log.NewNop(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return gr
}

func searchRequest(ref, query string) *ai.ToolRequest {
	return &ai.ToolRequest{
		Name:  tools.SearchLegislationName,
		Ref:   ref,
		Input: map[string]any{"query": query},
	}
}

func payloadWithURL(id, url string) corpus.Payload {
	meta := map[string]any{}
	if url != "" {
		meta["url"] = url
	}
	return corpus.Payload{ID: id, PageContent: "passage " + id, Metadata: meta}
}

func noRetrieval(tools.SearchInput) (tools.Retrieval, error) {
	return tools.Retrieval{}, errors.New("should not be called")
}

func TestRunDirectAnswer(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.Enqueue(testutil.ScriptStep{Text: "The session convenes in January."})

	gr := setupGraph(t, mock, noRetrieval)

	resp, err := gr.Run(context.Background(), "when does the session convene?", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.TextResponse != "The session convenes in January." {
		t.Errorf("TextResponse = %q", resp.TextResponse)
	}
	if len(resp.Documents) != 0 {
		t.Errorf("Documents = %d, want 0", len(resp.Documents))
	}
	if calls := mock.Calls(); len(calls) != 1 {
		t.Errorf("model calls = %d, want 1", len(calls))
	}
}

func TestRunSingleRetrievalTurn(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.Enqueue(testutil.ScriptStep{
		Text:  "Searching.",
		Tools: []*ai.ToolRequest{searchRequest("1", "broadband")},
	})
	mock.Enqueue(testutil.ScriptStep{Text: "H.123 funds broadband buildout."})

	gr := setupGraph(t, mock, func(input tools.SearchInput) (tools.Retrieval, error) {
		if input.Query != "broadband" {
			t.Errorf("tool got query %q", input.Query)
		}
		return tools.Retrieval{
			Question: input.Query,
			Response: "draft",
			Documents: []corpus.Payload{
				payloadWithURL("a-0", "https://legislature.vermont.gov/1"),
				payloadWithURL("a-1", "https://legislature.vermont.gov/2"),
			},
		}, nil
	})

	resp, err := gr.Run(context.Background(), "what about broadband?", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.TextResponse != "H.123 funds broadband buildout." {
		t.Errorf("TextResponse = %q", resp.TextResponse)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("Documents = %d, want 2", len(resp.Documents))
	}

	calls := mock.Calls()
	if len(calls) != 2 {
		t.Fatalf("model calls = %d, want 2", len(calls))
	}
	// The second model call must see the tool's reply.
	if calls[1].ToolReplies == 0 {
		t.Error("second call carried no tool response message")
	}
}

func TestRunAccumulatesDocumentsAcrossTurns(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.Enqueue(testutil.ScriptStep{
		Text:  "first search",
		Tools: []*ai.ToolRequest{searchRequest("1", "acts")},
	})
	mock.Enqueue(testutil.ScriptStep{
		Text:  "second search",
		Tools: []*ai.ToolRequest{searchRequest("2", "journals")},
	})
	mock.Enqueue(testutil.ScriptStep{Text: "combined answer"})

	gr := setupGraph(t, mock, func(input tools.SearchInput) (tools.Retrieval, error) {
		return tools.Retrieval{
			Question:  input.Query,
			Documents: []corpus.Payload{payloadWithURL(input.Query, "https://x/"+input.Query)},
		}, nil
	})

	resp, err := gr.Run(context.Background(), "summarize the session", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("Documents = %d, want 2 (accumulated across turns)", len(resp.Documents))
	}
	if resp.Documents[0].ID != "acts" || resp.Documents[1].ID != "journals" {
		t.Errorf("accumulation order lost: %v", resp.Documents)
	}
}

func TestRunDeduplicatesCitations(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.Enqueue(testutil.ScriptStep{
		Text:  "searching",
		Tools: []*ai.ToolRequest{searchRequest("1", "budget")},
	})
	mock.Enqueue(testutil.ScriptStep{Text: "The budget passed both chambers."})

	// Three documents, two unique URLs.
	gr := setupGraph(t, mock, func(input tools.SearchInput) (tools.Retrieval, error) {
		return tools.Retrieval{
			Question: input.Query,
			Documents: []corpus.Payload{
				payloadWithURL("b-0", "https://legislature.vermont.gov/budget"),
				payloadWithURL("b-1", "https://legislature.vermont.gov/appropriations"),
				payloadWithURL("b-2", "https://legislature.vermont.gov/budget"),
			},
		}, nil
	})

	resp, err := gr.Run(context.Background(), "did the budget pass?", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.TextResponse != "The budget passed both chambers." {
		t.Errorf("TextResponse = %q", resp.TextResponse)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("Documents = %d, want 2 unique citations", len(resp.Documents))
	}
}

func TestRunToolErrorYieldsZeroDocuments(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.Enqueue(testutil.ScriptStep{
		Text:  "searching",
		Tools: []*ai.ToolRequest{searchRequest("1", "broken")},
	})
	mock.Enqueue(testutil.ScriptStep{Text: "I could not retrieve anything."})

	gr := setupGraph(t, mock, func(tools.SearchInput) (tools.Retrieval, error) {
		return tools.Retrieval{}, errors.New("store unavailable")
	})

	resp, err := gr.Run(context.Background(), "anything?", nil)
	if err != nil {
		t.Fatalf("Run: %v, want graceful degradation", err)
	}
	if len(resp.Documents) != 0 {
		t.Errorf("Documents = %d, want 0", len(resp.Documents))
	}
	if resp.TextResponse != "I could not retrieve anything." {
		t.Errorf("TextResponse = %q", resp.TextResponse)
	}
}

func TestRunUnknownToolContinues(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.Enqueue(testutil.ScriptStep{
		Text: "calling a ghost",
		Tools: []*ai.ToolRequest{{
			Name:  "nonexistent_tool",
			Ref:   "1",
			Input: map[string]any{},
		}},
	})
	mock.Enqueue(testutil.ScriptStep{Text: "done"})

	gr := setupGraph(t, mock, noRetrieval)

	resp, err := gr.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.TextResponse != "done" {
		t.Errorf("TextResponse = %q", resp.TextResponse)
	}
}

func TestRunCurrentTimeCollectsNoDocuments(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.Enqueue(testutil.ScriptStep{
		Text: "checking the date",
		Tools: []*ai.ToolRequest{{
			Name:  tools.CurrentTimeName,
			Ref:   "1",
			Input: map[string]any{},
		}},
	})
	mock.Enqueue(testutil.ScriptStep{Text: "It is a Wednesday."})

	gr := setupGraph(t, mock, noRetrieval)

	resp, err := gr.Run(context.Background(), "what day is it?", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(resp.Documents) != 0 {
		t.Errorf("Documents = %d, want 0", len(resp.Documents))
	}
}

func TestRunMaxTurns(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	for i := range 5 {
		mock.Enqueue(testutil.ScriptStep{
			Text:  "still searching",
			Tools: []*ai.ToolRequest{searchRequest(fmt.Sprint(i), "loop")},
		})
	}

	gr := setupGraph(t, mock, func(input tools.SearchInput) (tools.Retrieval, error) {
		return tools.Retrieval{Question: input.Query}, nil
	}, WithMaxTurns(2))

	_, err := gr.Run(context.Background(), "never stops", nil)
	if !errors.Is(err, ErrMaxTurns) {
		t.Errorf("Run() error = %v, want ErrMaxTurns", err)
	}
	if calls := mock.Calls(); len(calls) != 2 {
		t.Errorf("model calls = %d, want 2", len(calls))
	}
}

func TestRunEmptyQuestion(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	gr := setupGraph(t, mock, noRetrieval)

	if _, err := gr.Run(context.Background(), "   ", nil); err == nil {
		t.Error("Run() = nil error, want validation error")
	}
}

func TestRunWithHistory(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.Enqueue(testutil.ScriptStep{Text: "As mentioned, H.123."})

	gr := setupGraph(t, mock, noRetrieval)

	history := []Message{
		{Role: "user", Content: "tell me about broadband bills"},
		{Role: "assistant", Content: "H.123 covers broadband."},
		{Role: "", Content: "   "}, // blank turns are dropped
	}
	resp, err := gr.Run(context.Background(), "which bill was that again?", history)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.TextResponse != "As mentioned, H.123." {
		t.Errorf("TextResponse = %q", resp.TextResponse)
	}
}

func TestHistoryMessages(t *testing.T) {
	msgs := historyMessages([]Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "model", Content: "also model"},
		{Role: "weird", Content: "treated as user"},
		{Role: "user", Content: ""},
	})

	if len(msgs) != 5 {
		t.Fatalf("messages = %d, want 5", len(msgs))
	}
	wantRoles := []ai.Role{ai.RoleSystem, ai.RoleUser, ai.RoleModel, ai.RoleModel, ai.RoleUser}
	for i, want := range wantRoles {
		if msgs[i].Role != want {
			t.Errorf("msgs[%d].Role = %v, want %v", i, msgs[i].Role, want)
		}
	}
}

func TestNewValidation(t *testing.T) {
	g := genkit.Init(context.Background())

	if _, err := New(nil, "m", nil, log.NewNop()); err == nil {
		t.Error("want error for nil genkit")
	}
	if _, err := New(g, "", nil, log.NewNop()); err == nil {
		t.Error("want error for empty model name")
	}
}

func TestRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("429 Too Many Requests"), true},
		{errors.New("rate limit exceeded"), true},
		{errors.New("503 Service Unavailable"), true},
		{errors.New("connection reset by peer"), true},
		{errors.New("invalid API key"), false},
		{errors.New("model not found"), false},
	}

	for _, tt := range tests {
		if got := retryableError(tt.err); got != tt.want {
			t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
