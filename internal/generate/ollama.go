package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaModel is the local model used when none is configured.
const DefaultOllamaModel = "gemma3:4b"

// OllamaClient calls a local Ollama server's chat endpoint with the reply
// constrained to the block schema.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if model == "" {
		model = DefaultOllamaModel
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
}

type ollamaChatResponse struct {
	Model         string        `json:"model"`
	Message       ollamaMessage `json:"message"`
	Done          bool          `json:"done"`
	TotalDuration int64         `json:"total_duration"`
	Error         string        `json:"error"`
}

func (c *OllamaClient) Model() string { return c.model }

// Generate posts the system prompt and the case JSON to /api/chat.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (*Response, error) {
	user, err := userMessage(req.Case)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(ollamaChatRequest{
		Model: c.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt(req)},
			{Role: "user", Content: user},
		},
		Stream: false,
		Format: Schema,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ollama: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ollama: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var chat ollamaChatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if chat.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", chat.Error)
	}

	d := time.Since(start)
	if chat.TotalDuration > 0 {
		d = time.Duration(chat.TotalDuration)
	}
	model := chat.Model
	if model == "" {
		model = c.model
	}
	return &Response{Raw: chat.Message.Content, Model: model, Duration: d}, nil
}

// Close releases resources.
func (c *OllamaClient) Close() {
	c.httpClient.CloseIdleConnections()
}
