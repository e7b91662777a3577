package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arjun/cutoff-finder/internal/query"
)

const advisorSystemPrompt = `You are a college admission counselor for Indian entrance-exam CAP rounds. Always respond with valid JSON only, no markdown formatting.`

const advisorPromptTemplate = `You are advising a student based on historical cutoff data.

STUDENT:
- Percentile: %g
- Desired course: %s
- Category preference: %s
- Additional question: %s

CUTOFF DATA (pre-filtered to options this student's percentile clears):
%s

Use simple category names (SC, OBC, OPEN), not raw codes. Safety options have a margin of %g or more above the cutoff.

Respond with JSON:
{
  "recommendations": [{"college": "...", "course": "...", "category": "...", "cutoffPercentile": 0, "margin": 0, "reason": "..."}],
  "safetyOptions": [{"college": "...", "course": "...", "category": "...", "cutoffPercentile": 0, "margin": 0, "reason": "..."}],
  "categoryAdvice": "...",
  "courseSuggestions": ["..."],
  "generalAdvice": "..."
}`

// GenerateAdvice sends a prepared candidate summary to the advice model and
// returns its reply as opaque JSON. The reply is not validated beyond being
// parseable; the collaborator owns its own contract.
func (c *Client) GenerateAdvice(ctx context.Context, summary *query.CandidateSummary, courseHint, categoryHint, question string) (json.RawMessage, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding candidate summary: %w", err)
	}

	prompt := fmt.Sprintf(advisorPromptTemplate,
		summary.TargetPercentile,
		orUnspecified(courseHint),
		orUnspecified(categoryHint),
		orUnspecified(question),
		string(data),
		query.SafetyMargin,
	)

	reply, err := c.ChatJSON(ctx, advisorSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var advice json.RawMessage
	if err := json.Unmarshal([]byte(reply), &advice); err != nil {
		return nil, fmt.Errorf("advice reply is not valid JSON: %w", err)
	}
	return advice, nil
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}
