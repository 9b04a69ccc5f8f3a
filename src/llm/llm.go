// Package llm sends correction prompts to a hosted language model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"

	DefaultProvider = ProviderGemini
	DefaultModel    = "gemini-2.5-flash-lite"

	maxRetries   = 3
	initialDelay = 1 * time.Second
)

var (
	ErrMissingCredential = errors.New("API key is required")
	ErrMissingModel      = errors.New("model is required")
	ErrEmptyPrompt       = errors.New("prompt is empty")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrNoCandidates      = errors.New("no choices in API response")
)

// Request is one correction call.
type Request struct {
	Prompt     string
	Credential string
}

// Corrector turns a prompt into the model's reply text.
type Corrector interface {
	Correct(ctx context.Context, req Request) (string, error)
}

// HTTPError is a non-success answer from the provider.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// BuildInstructionPrompt wraps the user's text in the correction instruction.
func BuildInstructionPrompt(text string) string {
	return "Fix the following text and output only the corrected version without any explanation or commentary. Preserve formatting when possible.\n---\n" + text
}

type Config struct {
	Provider  string
	Model     string
	Providers []string // OpenRouter provider order
	BaseURL   string

	Retries    int
	RetryDelay time.Duration
}

// backend performs a single attempt.
type backend interface {
	name() string
	complete(ctx context.Context, model, prompt, credential string) (string, error)
}

// Client validates requests and retries transient failures around a
// provider backend.
type Client struct {
	backend backend
	model   string
	retries int
	delay   time.Duration
}

func New(cfg Config) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = DefaultProvider
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, ErrMissingModel
	}

	var b backend
	switch provider {
	case ProviderGemini:
		b = &gemini{baseURL: cfg.BaseURL}
	case ProviderOpenRouter:
		b = &openRouter{baseURL: cfg.BaseURL, providers: cfg.Providers}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	c := &Client{backend: b, model: cfg.Model, retries: cfg.Retries, delay: cfg.RetryDelay}
	if c.retries <= 0 {
		c.retries = maxRetries
	}
	if c.delay < 0 {
		c.delay = 0
	} else if c.delay == 0 {
		c.delay = initialDelay
	}
	return c, nil
}

func (c *Client) Correct(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Credential) == "" {
		return "", ErrMissingCredential
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", ErrEmptyPrompt
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.delay) * (1.5 * float64(attempt)))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := c.backend.complete(ctx, c.model, req.Prompt, req.Credential)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		lastErr = err
		log.Printf("llm: %s attempt %d failed: %v", c.backend.name(), attempt+1, err)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.retryable() {
			return "", err
		}
	}
	return "", fmt.Errorf("failed after %d attempts: %w", c.retries, lastErr)
}

// Ping performs a minimal round trip to verify the credential and model.
func Ping(ctx context.Context, c Corrector, credential string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if _, err := c.Correct(ctx, Request{Prompt: "Reply with OK.", Credential: credential}); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
