package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/vtcivics/statehouse/internal/corpus"
	"github.com/vtcivics/statehouse/internal/tools"
)

const systemPrompt = `You are a civic information assistant for the Vermont General Assembly.
Answer questions about bills, acts, and floor proceedings using the
search_legislation tool; use current_time before reasoning about dates or
the current session. Ground every claim in retrieved passages and mention
bill numbers and sitting dates when they appear in them. If retrieval finds
nothing relevant, say so rather than speculating.`

// Graph drives the decide/act/finalize loop for one question.
//
// Graph is safe for concurrent use: per-request state lives in a State
// value local to Run.
type Graph struct {
	g           *genkit.Genkit
	modelName   string
	tools       []ai.Tool
	maxTurns    int
	retryConfig RetryConfig
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithMaxTurns caps the number of decide/act cycles per Run.
func WithMaxTurns(n int) Option {
	return func(gr *Graph) {
		if n > 0 {
			gr.maxTurns = n
		}
	}
}

// WithRetryConfig overrides the model-call retry behavior.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(gr *Graph) { gr.retryConfig = cfg }
}

// WithRateLimiter overrides the proactive model-call rate limiter.
func WithRateLimiter(rl *rate.Limiter) Option {
	return func(gr *Graph) { gr.rateLimiter = rl }
}

// DefaultMaxTurns caps the loop when no option overrides it.
const DefaultMaxTurns = 8

// New creates a Graph. modelName is the provider-qualified model the loop
// generates with; toolList is the registered tools the model may call.
func New(g *genkit.Genkit, modelName string, toolList []ai.Tool, logger *slog.Logger, opts ...Option) (*Graph, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	gr := &Graph{
		g:           g,
		modelName:   modelName,
		tools:       toolList,
		maxTurns:    DefaultMaxTurns,
		retryConfig: DefaultRetryConfig(),
		rateLimiter: rate.NewLimiter(10, 30),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(gr)
	}
	return gr, nil
}

// Run answers one question, optionally continuing a prior conversation.
// It returns the final answer text plus the deduplicated documents gathered
// across every retrieval call the model made.
func (gr *Graph) Run(ctx context.Context, question string, history []Message) (*Response, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	state := &State{
		Messages: append(historyMessages(history), ai.NewUserMessage(ai.NewTextPart(question))),
	}

	for turn := 0; turn < gr.maxTurns; turn++ {
		resp, err := gr.callModel(ctx, state.Messages)
		if err != nil {
			return nil, fmt.Errorf("calling model (turn %d): %w", turn+1, err)
		}
		state.Messages = append(state.Messages, resp.Message)

		requests := resp.ToolRequests()
		gr.logger.Debug("model turn complete",
			"turn", turn+1,
			"tool_requests", len(requests))

		// No tool calls: the model has answered. Finalize.
		if len(requests) == 0 {
			state.FinalResponse = buildResponse(finalText(resp.Message), state.Documents)
			gr.logger.Info("final response ready",
				"text_len", len(state.FinalResponse.TextResponse),
				"documents", len(state.FinalResponse.Documents))
			return state.FinalResponse, nil
		}

		toolMsg, documents := gr.runTools(ctx, requests)
		state.Messages = append(state.Messages, toolMsg)
		state.Documents = append(state.Documents, documents...)
		gr.logger.Info("tool invocation produced documents", "count", len(documents))
	}

	return nil, fmt.Errorf("%w: %d turns", ErrMaxTurns, gr.maxTurns)
}

// callModel generates one model turn. The model is asked to return tool
// requests instead of having the framework run them, so the loop stays in
// control of execution and document accumulation.
func (gr *Graph) callModel(ctx context.Context, messages []*ai.Message) (*ai.ModelResponse, error) {
	toolRefs := make([]ai.ToolRef, len(gr.tools))
	for i, t := range gr.tools {
		toolRefs[i] = t
	}

	return gr.generateWithRetry(ctx,
		ai.WithModelName(gr.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithMessages(messages...),
		ai.WithTools(toolRefs...),
		ai.WithReturnToolRequests(true),
	)
}

// runTools executes the requested tools and returns the tool message to
// append plus any documents decoded from retrieval output.
//
// A tool failure never aborts the run: the error text becomes the tool's
// output so the model can react to it, and it yields zero documents.
func (gr *Graph) runTools(ctx context.Context, requests []*ai.ToolRequest) (*ai.Message, []corpus.Payload) {
	parts := make([]*ai.Part, 0, len(requests))
	var documents []corpus.Payload

	for _, req := range requests {
		output := gr.runTool(ctx, req)

		if req.Name == tools.SearchLegislationName {
			docs, err := DecodeToolOutput(output)
			if err != nil {
				gr.logger.Warn("retrieval output yielded no documents", "error", err)
			} else {
				documents = append(documents, docs...)
			}
		}

		parts = append(parts, ai.NewToolResponsePart(&ai.ToolResponse{
			Name:   req.Name,
			Ref:    req.Ref,
			Output: output,
		}))
	}

	return ai.NewMessage(ai.RoleTool, nil, parts...), documents
}

// runTool executes a single tool request.
func (gr *Graph) runTool(ctx context.Context, req *ai.ToolRequest) any {
	tool := genkit.LookupTool(gr.g, req.Name)
	if tool == nil {
		gr.logger.Error("model requested unknown tool", "tool", req.Name)
		return fmt.Sprintf("Error invoking tool %q: tool not found", req.Name)
	}

	output, err := tool.RunRaw(ctx, req.Input)
	if err != nil {
		gr.logger.Error("tool invocation failed", "tool", req.Name, "error", err)
		return fmt.Sprintf("Error invoking tool %q: %v", req.Name, err)
	}
	return output
}

// historyMessages converts caller-supplied turns into model messages.
// Unknown roles are treated as user turns.
func historyMessages(history []Message) []*ai.Message {
	messages := make([]*ai.Message, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch m.Role {
		case "assistant", "model":
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		case "system":
			messages = append(messages, ai.NewSystemMessage(ai.NewTextPart(m.Content)))
		default:
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		}
	}
	return messages
}
