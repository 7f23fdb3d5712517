package agent

import (
	"github.com/firebase/genkit/go/ai"

	"github.com/vtcivics/statehouse/internal/corpus"
)

// finalText extracts the answer text from the model's closing message: the
// first text part verbatim, never a re-serialization of the whole content.
func finalText(msg *ai.Message) string {
	if msg == nil {
		return ""
	}
	for _, part := range msg.Content {
		if part.Kind == ai.PartText {
			return part.Text
		}
	}
	return msg.Text()
}

// buildResponse assembles the final response: the answer text plus the
// accumulated documents with duplicate citations removed.
//
// Deduplication keys on the citation URL when present, the chunk ID
// otherwise. Documents with neither are always kept. First occurrence wins,
// preserving retrieval order.
func buildResponse(text string, documents []corpus.Payload) *Response {
	payloads := make([]corpus.Payload, 0, len(documents))
	seen := make(map[string]struct{}, len(documents))

	for _, payload := range documents {
		if key := payload.DedupeKey(); key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		payloads = append(payloads, payload)
	}

	return &Response{
		TextResponse: text,
		Documents:    payloads,
	}
}
