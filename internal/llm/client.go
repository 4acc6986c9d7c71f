// Package llm sends composed prompts to an OpenAI-compatible chat-completion
// endpoint (OpenRouter by default) with timeout, bounded retries, and
// exponential backoff.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrMissingAPIKey signals a configuration problem, not a user error.
	ErrMissingAPIKey = errors.New("llm api key is not configured")
	// ErrTimeout means the completion call exceeded the configured deadline.
	ErrTimeout = errors.New("llm request timed out")
	// ErrEmptyChoices marks a definitive malformed response; it is never
	// retried and callers should fall back immediately.
	ErrEmptyChoices = errors.New("llm response contained no choices")
)

// Config holds the LLM client configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Referer     string // sent as HTTP-Referer on every request
	Title       string // sent as X-Title on every request
	Temperature float32
	MaxRetries  int // additional attempts after the first; zero selects the default
	Timeout     time.Duration

	// InitialBackoff is the wait before the first retry; each subsequent
	// retry doubles it. Shortened in tests.
	InitialBackoff time.Duration
}

// DefaultConfig returns the default OpenRouter-backed configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://openrouter.ai/api/v1",
		Model:          "google/gemini-2.0-flash-exp:free",
		Title:          "Weather Advisor",
		Temperature:    0.7,
		MaxRetries:     2,
		Timeout:        60 * time.Second,
		InitialBackoff: time.Second,
	}
}

// Client wraps the go-openai client for single-shot system+user completions.
type Client struct {
	client *openai.Client
	cfg    Config
}

// NewClient creates a Client from cfg, applying defaults for unset values.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	// The per-request context carries the deadline; an http.Client timeout
	// here would race it and mask timeout classification.
	clientConfig.HTTPClient = &http.Client{
		Transport: &refererTransport{
			base:    http.DefaultTransport,
			referer: cfg.Referer,
			title:   cfg.Title,
		},
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}
}

// Complete sends a system+user prompt pair and returns the answer text.
// Transient failures are retried with exponential backoff; an empty choices
// array is returned as ErrEmptyChoices without retrying.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", ErrEmptyChoices
			}
			return resp.Choices[0].Message.Content, nil
		}

		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}

		lastErr = err
		if attempt < c.cfg.MaxRetries {
			wait := c.cfg.InitialBackoff * time.Duration(math.Pow(2, float64(attempt)))
			log.Printf("INFO: llm request failed (attempt %d), retrying in %s: %v", attempt+1, wait, err)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			}
		}
	}

	return "", fmt.Errorf("llm request failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

// refererTransport adds the attribution headers OpenRouter expects.
type refererTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *refererTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(req)
}
