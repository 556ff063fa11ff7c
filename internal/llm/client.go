package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrEmptyResponse is returned when the API answers 200 with no usable content.
var ErrEmptyResponse = errors.New("empty completion content")

// Client talks to an OpenAI-compatible completions/embeddings endpoint.
// It normalises every response to a plain string (or typed failure) so no
// downstream component ever inspects provider response shape.
type Client struct {
	apiKey     string
	model      string
	embedModel string
	baseURL    string
	client     *http.Client
}

func NewClient(apiKey, model, embedModel string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		baseURL:    defaultBaseURL,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

// SetBaseURL points the client at a different endpoint. Used by tests and by
// deployments fronting the API with a proxy.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a system + user prompt pair and returns the text response.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	var apiResp chatResponse
	if err := c.post(ctx, "/chat/completions", reqBody, &apiResp); err != nil {
		return "", err
	}

	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return apiResp.Choices[0].Message.Content, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// EmbedTexts returns one embedding vector per input text, in input order.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var apiResp embedResponse
	if err := c.post(ctx, "/embeddings", embedRequest{Model: c.embedModel, Input: texts}, &apiResp); err != nil {
		return nil, err
	}

	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings count mismatch: sent %d, got %d", len(texts), len(apiResp.Data))
	}

	vectors := make([][]float64, len(texts))
	for _, d := range apiResp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("api error %d: %s — %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
