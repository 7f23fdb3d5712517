// Package agent runs the query-answering loop over the legislative corpus.
//
// The loop is a small explicit state machine. Each cycle, the model decides
// whether to call tools (decide); requested tools run and their outputs are
// appended as tool messages, with retrieved documents accumulated on the
// state (act); when the model answers without tool calls, the final response
// is assembled with deduplicated citations (finalize).
package agent

import (
	"errors"

	"github.com/firebase/genkit/go/ai"

	"github.com/vtcivics/statehouse/internal/corpus"
)

// ErrMaxTurns indicates the model kept requesting tools past the turn cap.
var ErrMaxTurns = errors.New("agent exceeded maximum turns")

// ErrToolOutput indicates a tool produced output that cannot yield documents.
var ErrToolOutput = errors.New("unusable tool output")

// State carries the conversation through one Run. Messages and Documents
// only ever grow; FinalResponse is set exactly once, by the builder.
type State struct {
	Messages      []*ai.Message
	Documents     []corpus.Payload
	FinalResponse *Response
}

// Response is the final answer returned to the caller.
type Response struct {
	TextResponse string           `json:"text_response"`
	Documents    []corpus.Payload `json:"documents"`
}

// Message is one prior conversation turn supplied by the caller.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}
