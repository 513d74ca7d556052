package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ============================================================================
// LLM — Text-in / text-out suggestion collaborator
// ============================================================================
// This is the ONLY package that makes external API calls. Callers hand it a
// prompt and get free-form text back; decoding and validation of that text
// happen in the suggest package.
// ============================================================================

// Errors returned by clients.
var (
	ErrEmptyResponse   = errors.New("llm: empty response")
	ErrMissingAPIKey   = errors.New("llm: API key is required")
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// Completer sends a prompt and returns the raw response text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config holds client configuration.
type Config struct {
	Provider          string        // "gemini", "openai" or "none"
	APIKey            string        // provider API key (caller's key)
	Model             string        // model name (empty = provider default)
	Endpoint          string        // API base override (empty = default)
	Timeout           time.Duration // per-request timeout (0 = 30s)
	RequestsPerSecond float64       // > 0 wraps the client in a rate limiter
	Burst             int
	Logger            *log.Logger   // request log lines (nil = log.Default())
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

const defaultTimeout = 30 * time.Second

// New builds a Completer for cfg.Provider. ProviderNone (or empty) returns
// nil, which the orchestrator treats as "always fall back".
func New(cfg Config) (Completer, error) {
	var c Completer
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderGemini:
		g, err := NewGemini(cfg)
		if err != nil {
			return nil, err
		}
		c = g
	case ProviderOpenAI:
		o, err := NewOpenAI(cfg)
		if err != nil {
			return nil, err
		}
		c = o
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.RequestsPerSecond > 0 {
		c = RateLimited(c, cfg.RequestsPerSecond, cfg.Burst)
	}
	return c, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
