package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
)

func testCase() *casefile.CaseDetails {
	return &casefile.CaseDetails{CaseNumber: "2025-0117", IncidentLocation: "Mansalay"}
}

func TestOllamaClient_Generate(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected /api/chat, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gemma3:4b","message":{"role":"assistant","content":"[]"},"done":true,"total_duration":2000000000}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/", "", time.Second)
	defer c.Close()
	resp, err := c.Generate(context.Background(), Request{Case: testCase()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Raw != "[]" || resp.Model != "gemma3:4b" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Duration != 2*time.Second {
		t.Errorf("expected server-reported duration, got %s", resp.Duration)
	}

	if got.Stream {
		t.Error("expected stream=false")
	}
	if len(got.Format) == 0 {
		t.Error("expected format schema")
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != SystemPrompt {
		t.Fatalf("expected system prompt first, got %+v", got.Messages)
	}
	var sent casefile.CaseDetails
	if err := json.Unmarshal([]byte(got.Messages[1].Content), &sent); err != nil {
		t.Fatalf("user message is not case JSON: %v", err)
	}
	if sent.CaseNumber != "2025-0117" {
		t.Errorf("expected case number in user message, got %q", sent.CaseNumber)
	}
}

func TestOllamaClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"server error", http.StatusBadGateway, true},
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad request", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			_, err := NewOllamaClient(srv.URL, "m", time.Second).Generate(context.Background(), Request{Case: testCase()})
			if err == nil {
				t.Fatal("expected error")
			}
			var re *RetryableError
			if errors.As(err, &re) != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, err)
			}
		})
	}
}

func TestOllamaClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOllamaClient(url, "m", time.Second).Generate(context.Background(), Request{Case: testCase()})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestClaudeClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "k" {
			t.Errorf("expected api key header, got %q", r.Header.Get("x-api-key"))
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System == "" || len(req.Messages) != 1 {
			t.Errorf("expected system prompt and one message, got %+v", req)
		}
		w.Write([]byte("{\"content\":[{\"type\":\"text\",\"text\":\"```json\\n[]\\n```\"}]}"))
	}))
	defer srv.Close()

	c := NewClaudeClient("k", "claude-test", time.Second)
	c.endpoint = srv.URL
	resp, err := c.Generate(context.Background(), Request{Case: testCase()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stripCodeBlock(resp.Raw) != "[]" {
		t.Errorf("unexpected raw %q", resp.Raw)
	}
}

func TestGenerate_MissingCase(t *testing.T) {
	if _, err := NewOllamaClient("http://unused", "m", time.Second).Generate(context.Background(), Request{}); err == nil {
		t.Error("expected error for missing case")
	}
}

func TestStripCodeBlock(t *testing.T) {
	tests := []struct{ in, want string }{
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"  [1]  ", "[1]"},
	}
	for _, tt := range tests {
		if got := stripCodeBlock(tt.in); got != tt.want {
			t.Errorf("stripCodeBlock(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
