package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/kizuna-labs/kizuna/internal/backfill"
	"github.com/kizuna-labs/kizuna/internal/config"
	"github.com/kizuna-labs/kizuna/internal/llm"
	"github.com/kizuna-labs/kizuna/internal/store"
)

// Imports legacy answer exports (JSONL) into the answers store:
//
//	kizuna-backfill <export-dir>
func main() {
	if len(os.Args) != 2 {
		slog.Error("usage: kizuna-backfill <export-dir>")
		os.Exit(2)
	}
	dir := os.Args[1]

	cfg := config.Load()
	handler := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	model := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbedModel)

	state, err := backfill.LoadState()
	if err != nil {
		slog.Error("failed to load import state", "error", err)
		os.Exit(1)
	}

	runner := backfill.NewRunner(db, model, state, slog.Default())
	if err := runner.Run(ctx, dir); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}

	slog.Info("import finished",
		"files", len(state.FilesProcessed),
		"answers", state.AnswersImported,
		"errors", len(state.Errors),
	)
}
