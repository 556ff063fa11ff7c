package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAnalyzeURL = "https://language.googleapis.com/v1/documents:analyzeSentiment"

// Scorer scores a single utterance. Score is in [-1, +1]; magnitude is the
// non-negative overall strength of emotion.
type Scorer interface {
	Score(ctx context.Context, text string) (score, magnitude float64, err error)
}

// Client calls a Google Natural Language style sentiment endpoint.
type Client struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAnalyzeURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetAPIURL overrides the endpoint, used by tests.
func (c *Client) SetAPIURL(url string) {
	c.apiURL = url
}

type analyzeRequest struct {
	Document struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	} `json:"document"`
}

type analyzeResponse struct {
	DocumentSentiment struct {
		Score     float64 `json:"score"`
		Magnitude float64 `json:"magnitude"`
	} `json:"documentSentiment"`
}

func (c *Client) Score(ctx context.Context, text string) (float64, float64, error) {
	var reqBody analyzeRequest
	reqBody.Document.Type = "PLAIN_TEXT"
	reqBody.Document.Content = text

	body, err := json.Marshal(reqBody)
	if err != nil {
		return 0, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("sentiment call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("sentiment api error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp analyzeResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return 0, 0, fmt.Errorf("unmarshal response: %w", err)
	}

	return apiResp.DocumentSentiment.Score, apiResp.DocumentSentiment.Magnitude, nil
}
