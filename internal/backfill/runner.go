package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// AnswerWriter is the slice of the store the importer needs.
type AnswerWriter interface {
	WriteAnswer(ctx context.Context, userID, rawText, summary string) (uuid.UUID, error)
}

// Completer summarizes each imported answer the same way live submissions
// are summarized.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const summarizeSystemPrompt = `You condense couples'-coaching reflection material into short, faithful summaries.`

// Runner imports legacy answer exports into the answers store so the
// historical report covers sessions from before the migration.
type Runner struct {
	store  AnswerWriter
	llm    Completer
	state  *State
	logger *slog.Logger
}

func NewRunner(store AnswerWriter, llm Completer, state *State, logger *slog.Logger) *Runner {
	return &Runner{
		store:  store,
		llm:    llm,
		state:  state,
		logger: logger,
	}
}

// Run imports every *.jsonl export under dir, skipping files recorded in the
// state from earlier runs. A failed file is logged and recorded but does not
// stop the rest of the import.
func (r *Runner) Run(ctx context.Context, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return fmt.Errorf("glob exports: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		if r.state.IsProcessed(file) {
			r.logger.Debug("already imported", "file", file)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.importFile(ctx, file)
		if err != nil {
			r.logger.Warn("import failed", "file", file, "error", err)
			r.state.AddError(fmt.Sprintf("%s: %v", file, err))
			if err := r.state.Save(); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
			continue
		}

		r.state.MarkProcessed(file)
		r.state.AnswersImported += n
		if err := r.state.Save(); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		r.logger.Info("imported export", "file", file, "answers", n)
	}

	return nil
}

func (r *Runner) importFile(ctx context.Context, path string) (int, error) {
	answers, err := ParseExport(path)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, a := range answers {
		summary, err := r.llm.Complete(ctx, summarizeSystemPrompt,
			fmt.Sprintf("Summarize the following answer: %s", a.Text))
		if err != nil {
			return imported, fmt.Errorf("summarize answer for %s: %w", a.UserID, err)
		}
		if _, err := r.store.WriteAnswer(ctx, a.UserID, a.Text, summary); err != nil {
			return imported, fmt.Errorf("persist answer for %s: %w", a.UserID, err)
		}
		imported++
	}
	return imported, nil
}
