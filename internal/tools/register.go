package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Register registers the agent's tools with Genkit and returns them in the
// order the system prompt describes them.
func Register(g *genkit.Genkit, leg *Legislation, sys *System) ([]ai.Tool, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if leg == nil {
		return nil, fmt.Errorf("Legislation is required")
	}
	if sys == nil {
		return nil, fmt.Errorf("System is required")
	}

	return []ai.Tool{
		genkit.DefineTool(g, SearchLegislationName,
			"Search Vermont legislative acts and chamber journals using semantic similarity. "+
				"Returns: a draft grounded answer plus the supporting passages with their metadata "+
				"(bill numbers, chambers, sitting dates, source URLs). "+
				"Use this for ANY question about Vermont bills, acts, votes, or floor proceedings. "+
				"Optional startDate/endDate (YYYY-MM-DD) restrict results to journal sitting dates. "+
				"Default topK: 4. Maximum topK: 10.",
			leg.Search),
		genkit.DefineTool(g, CurrentTimeName,
			"Get the current system date and time. "+
				"Returns: formatted time string, Unix timestamp, and ISO 8601 format. "+
				"IMPORTANT: You MUST call this tool before answering ANY question about current dates, "+
				"the current legislative session, or how recently something happened.",
			sys.CurrentTime),
	}, nil
}
