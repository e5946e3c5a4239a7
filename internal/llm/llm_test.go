package llm

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type countingProvider struct {
	calls atomic.Int64
}

func (c *countingProvider) Name() string { return "counting" }

func (c *countingProvider) Complete(_ context.Context, _ CompletionRequest) (*CompletionResponse, error) {
	c.calls.Add(1)
	return &CompletionResponse{Content: "ok"}, nil
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	inner := &countingProvider{}
	limited := NewRateLimitedProvider(inner, 10)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if _, err := limited.Complete(ctx, CompletionRequest{}); err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
	}
	if got := inner.calls.Load(); got != 10 {
		t.Errorf("calls = %d, want 10", got)
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	inner := &countingProvider{}
	limited := NewRateLimitedProvider(inner, 1)

	ctx := context.Background()
	if _, err := limited.Complete(ctx, CompletionRequest{}); err != nil {
		t.Fatalf("first Complete: %v", err)
	}

	// Second call should block until cancelled.
	ctx2, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err := limited.Complete(ctx2, CompletionRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestRateLimiterPreservesName(t *testing.T) {
	limited := NewRateLimitedProvider(&countingProvider{}, 5)
	if limited.Name() != "counting" {
		t.Errorf("Name = %q, want counting", limited.Name())
	}
}

func TestNewProviderUnsupported(t *testing.T) {
	if _, err := NewProvider("bogus", "model"); err == nil {
		t.Error("expected error for unsupported provider type")
	}
}

func TestNewProviderOllamaNeedsNoKey(t *testing.T) {
	p, err := NewProvider("ollama", "llama3")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Name = %q, want ollama", p.Name())
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, true},
		{"server error", &openai.APIError{HTTPStatusCode: http.StatusBadGateway}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: http.StatusBadRequest}, false},
		{"auth", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transient(tt.err); got != tt.want {
				t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
