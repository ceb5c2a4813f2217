// Package openaicompat implements provider.TurnProvider against any API
// that speaks the OpenAI chat completions interface (OpenAI, Mistral,
// Groq, vLLM, LiteLLM, Ollama's compat endpoint, ...) via a configurable
// base URL.
package openaicompat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matehq/mate/internal/provider"
)

// Config holds the connection settings for an OpenAI-compatible endpoint.
type Config struct {
	BaseURL     string            `yaml:"base_url"`
	APIKey      string            `yaml:"api_key"`
	Model       string            `yaml:"model"`
	MaxTokens   int               `yaml:"max_tokens"`
	Temperature *float64          `yaml:"temperature"`
	Headers     map[string]string `yaml:"headers"`
	Timeout     time.Duration     `yaml:"timeout"`
}

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Validate returns an error if required fields are missing or malformed.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errMissingField("base_url")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("provider: base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provider: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Model == "" {
		return errMissingField("model")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("provider: max_tokens must not be negative")
	}
	return nil
}

func errMissingField(field string) error {
	return fmt.Errorf("provider: %s is required", field)
}

// Client calls a chat completions endpoint.
type Client struct {
	config Config
	client *http.Client
}

// New creates a Client for cfg.
func New(cfg Config) (*Client, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: cfg,
		// Response-header timeout rather than a whole-request timeout:
		// large completions legitimately take a while to stream the body.
		client: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: cfg.Timeout},
		},
	}, nil
}

// ModelName implements provider.TurnProvider.
func (c *Client) ModelName() string {
	return c.config.Model
}

// Complete implements provider.TurnProvider.
func (c *Client) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	resp, err := c.doRequest(ctx, buildRequest(c.config, req))
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		return provider.CompletionResponse{}, handleErrorResponse(resp)
	}

	var wire oaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return provider.CompletionResponse{}, fmt.Errorf("provider: decode response: %w", err)
	}
	return parseResponse(wire), nil
}
