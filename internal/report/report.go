package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kizuna-labs/kizuna/internal/retrieval"
)

// Canonical section markers. Generation demands them verbatim and splitting
// validates against exactly these strings.
const (
	MarkerSituation = "[SECTION 1: YOUR SITUATION]"
	MarkerComment   = "[SECTION 2: COMMENT TO YOUR PARTNER]"
	MarkerTopics    = "[SECTION 3: TOPICS TO DISCUSS TOGETHER]"
)

// reportTopK is how many stored answer summaries are retrieved as context
// for the historical report.
const reportTopK = 6

// Completer is the slice of the language-model gateway the synthesizer needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Report is the three-section historical-answer report.
type Report struct {
	Situation        string `json:"first"`
	CommentToPartner string `json:"second"`
	DiscussionTopics string `json:"third"`
}

// Synthesizer produces retrieval-augmented reports and cross-partner advice.
type Synthesizer struct {
	llm      Completer
	embedder retrieval.Embedder
	logger   *slog.Logger
}

func NewSynthesizer(llmClient Completer, embedder retrieval.Embedder, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{llm: llmClient, embedder: embedder, logger: logger}
}

// HistoricalReport retrieves the most relevant stored answer summaries and
// generates the three-section partner report.
func (s *Synthesizer) HistoricalReport(ctx context.Context, summaries []string) (Report, error) {
	ix, err := retrieval.Build(ctx, s.embedder, summaries)
	if err != nil {
		return Report{}, fmt.Errorf("build summary index: %w", err)
	}

	relevant, err := ix.Search(ctx, reportRetrievalQuery, reportTopK)
	if err != nil {
		return Report{}, fmt.Errorf("retrieve summaries: %w", err)
	}

	prompt := fmt.Sprintf(reportPrompt, strings.Join(relevant, "\n\n"))
	raw, err := s.llm.Complete(ctx, reportSystemPrompt, prompt)
	if err != nil {
		return Report{}, fmt.Errorf("generate report: %w", err)
	}

	rep, ok := SplitSections(raw)
	if !ok {
		// Detectable formatting failure: everything lands in section 1.
		s.logger.Warn("report output missed section markers", "length", len(raw))
	}
	return rep, nil
}

// SplitSections splits generated text on the canonical markers. The three
// sections are non-overlapping and, modulo markers, reconstruct the input.
// When the expected markers are absent the whole text becomes section 1 and
// ok is false.
func SplitSections(text string) (Report, bool) {
	if !strings.Contains(text, MarkerComment) || !strings.Contains(text, MarkerTopics) {
		return Report{Situation: text}, false
	}

	first, rest, _ := strings.Cut(text, MarkerComment)
	second, third, _ := strings.Cut(rest, MarkerTopics)

	first = strings.Replace(first, MarkerSituation, "", 1)
	return Report{
		Situation:        strings.TrimSpace(first),
		CommentToPartner: strings.TrimSpace(second),
		DiscussionTopics: strings.TrimSpace(third),
	}, true
}
