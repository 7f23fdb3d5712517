package tools

import "github.com/vtcivics/statehouse/internal/corpus"

// Status values returned in Result.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes returned in Error.Code.
const (
	ErrCodeValidation = "validation_error"
	ErrCodeSearch     = "search_error"
	ErrCodeGeneration = "generation_error"
)

// Error is a structured error the model can read and correct for.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the generic envelope for simple tool outputs.
type Result struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data,omitempty"`
	Error  *Error         `json:"error,omitempty"`
}

// SearchInput defines input for the search_legislation tool.
type SearchInput struct {
	Query     string `json:"query" jsonschema_description:"The legislative question or topic to search for"`
	TopK      int    `json:"topK,omitempty" jsonschema_description:"Maximum passages to retrieve (1-10)"`
	StartDate string `json:"startDate,omitempty" jsonschema_description:"Earliest journal sitting date to include, YYYY-MM-DD"`
	EndDate   string `json:"endDate,omitempty" jsonschema_description:"Latest journal sitting date to include, YYYY-MM-DD"`
}

// CurrentTimeInput defines input for the current_time tool (no input needed).
type CurrentTimeInput struct{}

// Retrieval is the output of the search_legislation tool: the question as
// searched, a draft grounded answer, and the supporting passages.
type Retrieval struct {
	Question  string           `json:"question"`
	Response  string           `json:"response"`
	Documents []corpus.Payload `json:"documents"`
}
