package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vtcivics/statehouse/internal/corpus"
	"github.com/vtcivics/statehouse/internal/tools"
)

// toolErrorPrefix marks tool output text that reports an invocation failure.
const toolErrorPrefix = "Error invoking tool"

// DecodeToolOutput converts raw retrieval tool output into document payloads.
//
// Accepted shapes: tools.Retrieval (value or pointer), a map carrying a
// "documents" list, a bare list of document-like values, or a JSON string of
// any of those. Output that cannot yield documents returns an error; callers
// treat that as zero documents rather than failing the request.
func DecodeToolOutput(raw any) ([]corpus.Payload, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil output", ErrToolOutput)
	case tools.Retrieval:
		return collectDocuments(v.Documents), nil
	case *tools.Retrieval:
		if v == nil {
			return nil, fmt.Errorf("%w: nil retrieval", ErrToolOutput)
		}
		return collectDocuments(v.Documents), nil
	case string:
		return decodeString(v)
	case map[string]any:
		return collectDocuments(v["documents"]), nil
	case []any:
		return collectDocuments(v), nil
	case []corpus.Payload:
		return collectDocuments(v), nil
	case []corpus.Document:
		return collectDocuments(v), nil
	}
	return nil, fmt.Errorf("%w: unexpected type %T", ErrToolOutput, raw)
}

// decodeString parses serialized tool output. Error text is recognized
// before any parsing is attempted.
func decodeString(s string) ([]corpus.Payload, error) {
	if strings.HasPrefix(s, toolErrorPrefix) {
		return nil, fmt.Errorf("%w: %s", ErrToolOutput, s)
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty output", ErrToolOutput)
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolOutput, err)
	}

	switch v := parsed.(type) {
	case map[string]any:
		return collectDocuments(v["documents"]), nil
	case []any:
		return collectDocuments(v), nil
	}
	return nil, fmt.Errorf("%w: parsed to %T", ErrToolOutput, parsed)
}

// collectDocuments converts a candidate list into payloads. Items that are
// not document-like are skipped; a conversion failure never drops the whole
// batch.
func collectDocuments(candidate any) []corpus.Payload {
	payloads := []corpus.Payload{}
	if candidate == nil {
		return payloads
	}

	switch items := candidate.(type) {
	case []corpus.Payload:
		payloads = append(payloads, items...)
	case []corpus.Document:
		for _, doc := range items {
			payloads = append(payloads, corpus.FromDocument(doc))
		}
	case []any:
		for _, item := range items {
			if p, ok := payloadFromItem(item); ok {
				payloads = append(payloads, p)
			}
		}
	}
	return payloads
}

// payloadFromItem converts one list element into a payload.
func payloadFromItem(item any) (corpus.Payload, bool) {
	switch v := item.(type) {
	case corpus.Payload:
		return v, true
	case corpus.Document:
		return corpus.FromDocument(v), true
	case map[string]any:
		metadata, _ := v["metadata"].(map[string]any)
		doc := corpus.Document{
			Content:  stringField(v["page_content"]),
			Metadata: metadata,
		}
		if id := v["id"]; id != nil {
			doc.ID = fmt.Sprint(id)
		}
		return corpus.FromDocument(doc), true
	}
	return corpus.Payload{}, false
}

func stringField(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
