package corpus

import (
	"fmt"
	"reflect"
	"time"
)

// Payload is the JSON-safe projection of a Document exchanged over tool and
// API boundaries.
type Payload struct {
	ID          string         `json:"id,omitempty"`
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
}

// FromDocument converts a Document into a Payload.
//
// Metadata values are normalized to JSON-safe types (times become ISO 8601
// strings, unknown types become their string form). If the metadata has no
// "url" key, one is derived from source_url or source, then from file_name
// when it looks like an absolute URL.
func FromDocument(doc Document) Payload {
	metadata := make(map[string]any, len(doc.Metadata)+1)
	for key, val := range doc.Metadata {
		metadata[key] = jsonSafe(val)
	}

	if _, ok := metadata["url"]; !ok {
		if candidate := stringValue(metadata["source_url"]); candidate != "" {
			metadata["url"] = candidate
		} else if candidate := stringValue(metadata["source"]); candidate != "" {
			metadata["url"] = candidate
		}
	}
	if _, ok := metadata["url"]; !ok {
		candidate := stringValue(metadata["file_name"])
		if candidate == "" {
			candidate = stringValue(metadata["fileName"])
		}
		if len(candidate) >= 4 && candidate[:4] == "http" {
			metadata["url"] = candidate
		}
	}

	return Payload{
		ID:          doc.ID,
		PageContent: doc.Content,
		Metadata:    metadata,
	}
}

// URL returns the citation URL for this payload, or "" if none is known.
func (p Payload) URL() string {
	return stringValue(p.Metadata["url"])
}

// DedupeKey identifies a payload for citation deduplication: the URL when
// present, otherwise the chunk ID.
func (p Payload) DedupeKey() string {
	if url := p.URL(); url != "" {
		return url
	}
	return p.ID
}

// jsonSafe converts a metadata value into something encoding/json renders
// without surprises. Times become ISO 8601 strings, composite values are
// converted recursively, and anything else falls back to fmt.Sprint.
func jsonSafe(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format(time.RFC3339)
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = jsonSafe(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = jsonSafe(val)
		}
		return out
	}

	// Typed slices and maps ([]string, map[string]int, ...) arrive from
	// ingest code; normalize them element-wise.
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = jsonSafe(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		for _, key := range rv.MapKeys() {
			out[fmt.Sprint(key.Interface())] = jsonSafe(rv.MapIndex(key).Interface())
		}
		return out
	}

	return fmt.Sprint(value)
}

// stringValue returns v if it is a non-empty string, otherwise "".
func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Document converts the payload back into a Document for callers that
// operate on store types.
func (p Payload) Document() Document {
	return Document{
		ID:       p.ID,
		Content:  p.PageContent,
		Metadata: p.Metadata,
	}
}
