// Package generate asks a language model for the narrative body of an
// affidavit and turns its reply into document blocks.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
)

// ErrUnavailable is wrapped by errors from a model service that could not
// be reached at all.
var ErrUnavailable = errors.New("generation service unavailable")

// Request is one narrative generation.
type Request struct {
	Case         *casefile.CaseDetails
	SystemPrompt string
}

// Response is the model's raw reply.
type Response struct {
	Raw      string
	Model    string
	Duration time.Duration
}

// Generator produces a narrative for a case.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Model() string
	Close()
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func userMessage(c *casefile.CaseDetails) (string, error) {
	if c == nil {
		return "", errors.New("missing case details")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal case details: %w", err)
	}
	return string(data), nil
}

func systemPrompt(req Request) string {
	if req.SystemPrompt != "" {
		return req.SystemPrompt
	}
	return SystemPrompt
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
