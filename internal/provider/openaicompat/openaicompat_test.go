package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matehq/mate/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCompleteSuccess(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req oaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("system message not first: %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(oaiResponse{
			Choices: []oaiChoice{{
				Message:      oaiMessage{Role: "assistant", Content: "All done."},
				FinishReason: "stop",
			}},
			Usage: oaiUsage{PromptTokens: 12, CompletionTokens: 4, TotalTokens: 16},
		})
	})

	resp, err := c.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: "You are helpful."},
			{Role: provider.RoleUser, Content: "hello"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "All done." || resp.FinishReason != provider.FinishStop {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Usage.TotalTokens != 16 {
		t.Errorf("usage not carried: %+v", resp.Usage)
	}
}

func TestCompleteErrorClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, "slow down", provider.ErrRateLimit},
		{"server error", http.StatusBadGateway, "upstream broke", provider.ErrProviderDown},
		{"bad key", http.StatusUnauthorized, "invalid api key", provider.ErrAuthentication},
		{"context length", http.StatusBadRequest, `{"error":{"code":"context_length_exceeded"}}`, provider.ErrContextLength},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := c.Complete(context.Background(), provider.CompletionRequest{
				Messages: []provider.Message{{Role: provider.RoleUser, Content: "hi"}},
			})
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCompleteCancellationIsNotProviderFailure(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	t.Cleanup(func() { close(block) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if errors.Is(err, provider.ErrProviderDown) {
		t.Error("cancellation must not be classified as provider failure")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{BaseURL: "https://api.example.com/v1", Model: "m"}, true},
		{"missing base url", Config{Model: "m"}, false},
		{"bad scheme", Config{BaseURL: "ftp://x", Model: "m"}, false},
		{"missing model", Config{BaseURL: "https://api.example.com/v1"}, false},
	}
	for _, tc := range cases {
		tc.cfg.Defaults()
		if err := tc.cfg.Validate(); (err == nil) != tc.ok {
			t.Errorf("%s: Validate() = %v, want ok=%t", tc.name, err, tc.ok)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	if !provider.IsRetryable(provider.ErrRateLimit) || !provider.IsRetryable(provider.ErrProviderDown) {
		t.Error("rate limit and provider down should be retryable")
	}
	if provider.IsRetryable(provider.ErrAuthentication) {
		t.Error("authentication failures are not retryable")
	}
}
