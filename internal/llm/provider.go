// Package llm adapts hosted language-model APIs to a single completion call.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/digi0/ACE/internal/config"
)

// ErrNotConfigured is returned by every call on a provider built without a
// credential.
var ErrNotConfigured = errors.New("llm provider not configured")

// Provider turns a system instruction and a rendered prompt into free text.
type Provider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// New builds the provider selected by cfg.Provider. A missing API key yields
// an unconfigured provider rather than an error so the server still starts
// and chat turns fall back to the safe-harbor answer.
func New(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return Unconfigured{Provider: cfg.Provider}, nil
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg), nil
	case "gemini":
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Unconfigured fails every call with ErrNotConfigured.
type Unconfigured struct {
	Provider string
}

func (u Unconfigured) Complete(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (u Unconfigured) Name() string {
	return u.Provider + " (unconfigured)"
}
