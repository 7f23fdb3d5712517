package tools

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
)

// CurrentTimeName is the Genkit tool name for retrieving the current time.
const CurrentTimeName = "current_time"

// System holds dependencies for system operation handlers.
type System struct {
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewSystem creates a System instance.
func NewSystem(logger *slog.Logger) (*System, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &System{logger: logger, now: time.Now}, nil
}

// CurrentTime returns the current system date and time in multiple formats.
func (s *System) CurrentTime(_ *ai.ToolContext, _ CurrentTimeInput) (Result, error) {
	s.logger.Debug("CurrentTime called")
	now := s.now()
	return Result{
		Status: StatusSuccess,
		Data: map[string]any{
			"time":      now.Format("2006-01-02 15:04:05"),
			"timestamp": now.Unix(),
			"iso8601":   now.Format(time.RFC3339),
		},
	}, nil
}
