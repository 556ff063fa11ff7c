package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kizuna-labs/kizuna/internal/api"
	"github.com/kizuna-labs/kizuna/internal/config"
	"github.com/kizuna-labs/kizuna/internal/dialogue"
	"github.com/kizuna-labs/kizuna/internal/events"
	"github.com/kizuna-labs/kizuna/internal/extractor"
	"github.com/kizuna-labs/kizuna/internal/llm"
	"github.com/kizuna-labs/kizuna/internal/report"
	"github.com/kizuna-labs/kizuna/internal/sentiment"
	"github.com/kizuna-labs/kizuna/internal/service"
	"github.com/kizuna-labs/kizuna/internal/slack"
	"github.com/kizuna-labs/kizuna/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("kizuna starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
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
	slog.Info("database connected")

	// Language model client
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	model := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbedModel)
	slog.Info("language-model client ready", "model", cfg.OpenAIModel, "embed_model", cfg.OpenAIEmbedModel)

	// Sentiment scorer
	if cfg.SentimentAPIKey == "" {
		slog.Error("SENTIMENT_API_KEY is required")
		os.Exit(1)
	}
	scorer := sentiment.NewClient(cfg.SentimentAPIKey)

	// NATS (optional — kizuna works without it, just no downstream events)
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		publisher, err = events.Connect(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("NATS unavailable — running without events", "error", err)
		} else {
			defer publisher.Close()
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	}

	// Slack poster (optional — alerts still persist, just no push)
	var notifier service.Notifier
	if cfg.SlackBotToken != "" && cfg.SlackAlertsChannel != "" {
		notifier = slack.NewPoster(cfg.SlackBotToken, cfg.SlackAlertsChannel, slog.Default())
		slog.Info("slack poster ready", "channel", cfg.SlackAlertsChannel)
	} else {
		slog.Warn("slack not configured — alerts will not be pushed")
	}

	// Dialogue engine and the derived-analytics collaborators
	sessions := dialogue.NewSessionStore()
	engine := dialogue.NewEngine(model, sessions, slog.Default())
	ext := extractor.New(model, slog.Default())
	analyzer := sentiment.NewAnalyzer(model, scorer, slog.Default())
	synthesizer := report.NewSynthesizer(model, model, slog.Default())

	svc := service.New(db, engine, ext, analyzer, synthesizer, model, model, publisher, notifier, slog.Default())

	// Evict sessions abandoned mid-dialogue
	idle := time.Duration(cfg.SessionIdleMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(idle / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.PruneIdle(idle); n > 0 {
					slog.Info("pruned idle sessions", "count", n)
				}
			}
		}
	}()

	// HTTP API
	srv := api.NewServer(cfg.Port, svc, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if err := publisher.Publish(events.SubjectServiceStarted, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
	}); err != nil {
		slog.Warn("failed to publish startup event", "error", err)
	}

	slog.Info("kizuna ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("kizuna stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
