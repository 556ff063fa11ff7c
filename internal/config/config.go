package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               int
	NatsURL            string
	NatsToken          string
	DatabaseURL        string
	LogLevel           string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIEmbedModel   string
	SentimentAPIKey    string
	SlackBotToken      string
	SlackAlertsChannel string
	SessionIdleMinutes int
}

func Load() Config {
	return Config{
		Port:               envInt("KIZUNA_PORT", 8760),
		NatsURL:            envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:          envStr("NATS_TOKEN", ""),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:       envStr("OPENAI_API_KEY", ""),
		OpenAIModel:        envStr("KIZUNA_MODEL", "gpt-4o-mini"),
		OpenAIEmbedModel:   envStr("KIZUNA_EMBED_MODEL", "text-embedding-3-small"),
		SentimentAPIKey:    envStr("SENTIMENT_API_KEY", ""),
		SlackBotToken:      envStr("SLACK_BOT_TOKEN", ""),
		SlackAlertsChannel: envStr("SLACK_ALERTS_CHANNEL", ""),
		SessionIdleMinutes: envInt("KIZUNA_SESSION_IDLE_MINUTES", 60),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
