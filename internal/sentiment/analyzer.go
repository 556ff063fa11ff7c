package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kizuna-labs/kizuna/internal/llm"
)

const mentionSystemPrompt = `You extract a speaker's own utterances from a coaching conversation transcript.
Return only utterances by the user, never by the coach.
Respond with a JSON array of strings, verbatim quotes from the transcript, and nothing else.`

// Completer is the slice of the language-model gateway the analyzer needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Analyzer runs the two-stage pipeline: mention extraction via the language
// model, then per-mention scoring and tier classification.
type Analyzer struct {
	llm    Completer
	scorer Scorer
	logger *slog.Logger
}

func NewAnalyzer(llmClient Completer, scorer Scorer, logger *slog.Logger) *Analyzer {
	return &Analyzer{llm: llmClient, scorer: scorer, logger: logger}
}

// Analyze extracts the speaker's partner mentions from the transcript, scores
// each one, and aggregates the result into an alert. Extraction failures
// degrade to an empty mention list; per-mention scoring failures skip that
// mention. Both are logged, never raised.
func (a *Analyzer) Analyze(ctx context.Context, transcript, partnerName string) Alert {
	mentions := a.extractMentions(ctx, transcript, partnerName)

	var scored []MentionScore
	for _, m := range mentions {
		score, magnitude, err := a.scorer.Score(ctx, m)
		if err != nil {
			a.logger.Warn("sentiment scoring failed, skipping mention", "error", err)
			continue
		}
		scored = append(scored, MentionScore{Text: m, Score: score, Magnitude: magnitude})
	}

	alert := Aggregate(scored)
	a.logger.Info("sentiment aggregated",
		"mentions", len(scored),
		"avg_score", alert.AverageScore,
		"max_magnitude", alert.MaxMagnitude,
		"label", alert.Label,
	)
	return alert
}

// extractMentions asks the model for the user's partner-referencing utterances
// as a literal string list. Anything that does not parse as a list of strings
// is treated as extraction failure and yields an empty list.
func (a *Analyzer) extractMentions(ctx context.Context, transcript, partnerName string) []string {
	var instruction string
	if partnerName != "" {
		instruction = fmt.Sprintf("From the conversation below, extract only the user's utterances that reference their partner (%s), verbatim.", partnerName)
	} else {
		instruction = "From the conversation below, extract only the user's utterances that reference their partner, verbatim."
	}

	prompt := fmt.Sprintf("%s\n\nConversation:\n%s", instruction, transcript)

	raw, err := a.llm.Complete(ctx, mentionSystemPrompt, prompt)
	if err != nil {
		a.logger.Warn("mention extraction failed", "error", err)
		return nil
	}

	var mentions []string
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &mentions); err != nil {
		a.logger.Warn("mention extraction returned non-list output", "error", err)
		return nil
	}
	return mentions
}
