package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vtcivics/statehouse/internal/agent"
	"github.com/vtcivics/statehouse/internal/corpus"
	"github.com/vtcivics/statehouse/internal/log"
)

// MaxQuestionLength bounds the question size accepted over HTTP.
const MaxQuestionLength = 8192

// maxBodyBytes caps the request body read.
const maxBodyBytes = 1 << 20

// Runner executes one agent query. *agent.Graph satisfies it.
type Runner interface {
	Run(ctx context.Context, question string, history []agent.Message) (*agent.Response, error)
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Question     string          `json:"question"`
	Conversation []agent.Message `json:"conversation,omitempty"`
}

// QueryResponse is the reply: the answer text plus the deduplicated
// source passages that informed it.
type QueryResponse struct {
	TextResponse string           `json:"text_response"`
	Documents    []corpus.Payload `json:"documents"`
}

// QueryHandler handles the query endpoint.
type QueryHandler struct {
	runner Runner
	logger log.Logger
}

// NewQueryHandler creates a query handler backed by the given runner.
func NewQueryHandler(runner Runner, logger log.Logger) *QueryHandler {
	return &QueryHandler{runner: runner, logger: logger}
}

// RegisterRoutes registers the query route on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.handleQuery)
}

func (h *QueryHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "missing_question", "question is required")
		return
	}
	if len(req.Question) > MaxQuestionLength {
		writeError(w, http.StatusBadRequest, "question_too_long", "question exceeds maximum length")
		return
	}

	resp, err := h.runner.Run(r.Context(), req.Question, req.Conversation)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// client went away; nothing useful to write
			return
		case errors.Is(err, agent.ErrMaxTurns):
			h.logger.Warn("query hit turn limit", "error", err)
			writeError(w, http.StatusUnprocessableEntity, "turn_limit",
				"the assistant could not finish within its reasoning budget")
		default:
			h.logger.Error("query failed", "error", err)
			writeError(w, http.StatusInternalServerError, "query_failed",
				"the assistant could not answer the question")
		}
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		TextResponse: resp.TextResponse,
		Documents:    resp.Documents,
	})
}
