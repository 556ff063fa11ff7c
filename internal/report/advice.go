package report

import (
	"context"
	"fmt"
	"strings"
)

// AdviceInput carries both partners' retrieval-summary blocks and identity
// context for cross-partner dialogue advice.
type AdviceInput struct {
	UserName           string
	UserPersonality    string
	UserSummaries      []string
	PartnerName        string
	PartnerPersonality string
	PartnerSummaries   []string
}

// DialogueAdvice synthesizes a single balanced advisory for both partners:
// recommended discussion topics with rationale, personality-driven pitfalls,
// and bridging techniques for perception gaps.
func (s *Synthesizer) DialogueAdvice(ctx context.Context, in AdviceInput) (string, error) {
	prompt := fmt.Sprintf(advicePrompt,
		in.UserName, in.UserPersonality,
		blockOrNone(in.UserSummaries),
		in.PartnerName, in.PartnerPersonality,
		blockOrNone(in.PartnerSummaries),
		in.UserName, in.PartnerName,
	)

	advice, err := s.llm.Complete(ctx, adviceSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generate dialogue advice: %w", err)
	}
	return strings.TrimSpace(advice), nil
}

func blockOrNone(summaries []string) string {
	if len(summaries) == 0 {
		return "(no summaries recorded)"
	}
	return strings.Join(summaries, "\n---\n")
}
