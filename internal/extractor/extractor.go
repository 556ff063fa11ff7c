package extractor

import (
	"context"
	"log/slog"

	"github.com/kizuna-labs/kizuna/internal/llm"
)

// Completer is the slice of the language-model gateway the extractor needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Extractor turns a finalized transcript into a field→text mapping according
// to a schema profile.
type Extractor struct {
	llm    Completer
	logger *slog.Logger
}

func New(llmClient Completer, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llmClient, logger: logger}
}

// Extract requests a completion constrained to the profile's fields and
// parses the result. Malformed or non-conforming model output yields an empty
// mapping, logged once; the caller decides whether empty is fatal.
func (e *Extractor) Extract(ctx context.Context, profile Profile, transcript string) map[string]string {
	raw, err := e.llm.Complete(ctx, extractionSystemPrompt, profile.Prompt(transcript))
	if err != nil {
		e.logger.Warn("structured extraction call failed", "profile", profile.Name, "error", err)
		return map[string]string{}
	}

	fields, err := llm.ParseStructured(raw)
	if err != nil {
		e.logger.Warn("structured extraction returned malformed output", "profile", profile.Name, "error", err)
		return map[string]string{}
	}

	// Keep only the fields the profile asked for.
	result := make(map[string]string, len(profile.Fields))
	for _, f := range profile.Fields {
		if v, ok := fields[f.Name]; ok {
			result[f.Name] = v
		}
	}

	e.logger.Info("structured extraction complete", "profile", profile.Name, "fields", len(result))
	return result
}
