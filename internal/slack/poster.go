package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kizuna-labs/kizuna/internal/sentiment"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster delivers emotion-alert notifications to a Slack channel so a
// partner hears about a rough session without opening the app.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostAlert posts one alert notification and returns the message timestamp
// (ts) Slack assigns to it.
func (p *Poster) PostAlert(ctx context.Context, recipientName string, a sentiment.Alert) (string, error) {
	text := formatAlertMessage(recipientName, a)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": fmt.Sprintf("avg %.2f | max magnitude %.2f", a.AverageScore, a.MaxMagnitude),
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted alert to slack", "ts", slackResp.TS, "label", a.Label)
	return slackResp.TS, nil
}

func formatAlertMessage(recipientName string, a sentiment.Alert) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s *%s*", a.Glyph, a.Label)
	if recipientName != "" {
		fmt.Fprintf(&sb, " — for %s", recipientName)
	}
	sb.WriteString("\n")
	sb.WriteString(a.Message)

	if a.MostNegativeMention != "" {
		fmt.Fprintf(&sb, "\n> %s", a.MostNegativeMention)
	}

	return sb.String()
}
