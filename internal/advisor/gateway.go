// Package advisor wraps the language model behind a single bounded call and
// turns whatever comes back into a StructuredResponse.
package advisor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/digi0/ACE/internal/llm"
	"github.com/digi0/ACE/internal/models"
)

// ErrModelUnavailable covers every way a model call can fail: timeout,
// transport error, missing credential, error status or an empty completion.
var ErrModelUnavailable = errors.New("model unavailable")

const (
	DefaultTimeout       = 90 * time.Second
	DefaultHistoryWindow = 10
)

// Gateway issues one provider call per chat turn.
type Gateway struct {
	provider llm.Provider
	timeout  time.Duration
	window   int
	logger   *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithTimeout overrides the per-call deadline.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithHistoryWindow overrides how many prior messages are rendered.
func WithHistoryWindow(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.window = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway creates a gateway over provider.
func NewGateway(provider llm.Provider, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		provider: provider,
		timeout:  DefaultTimeout,
		window:   DefaultHistoryWindow,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetModelAnswer renders the transcript window plus latest and makes a single
// provider call. The call is detached from ctx cancellation so a client
// disconnect does not abort it; only the gateway timeout bounds it.
func (g *Gateway) GetModelAnswer(ctx context.Context, systemInstruction string, transcript []models.Message, latest string) (string, error) {
	prompt := RenderTranscript(transcript, latest, g.window)

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	text, err := g.complete(callCtx, systemInstruction, prompt)
	if err != nil {
		g.logger.Warn("model call failed",
			slog.String("provider", g.provider.Name()),
			slog.String("error", err.Error()),
		)
		return "", ErrModelUnavailable
	}
	if strings.TrimSpace(text) == "" {
		g.logger.Warn("model returned empty completion", slog.String("provider", g.provider.Name()))
		return "", ErrModelUnavailable
	}
	return text, nil
}

type completion struct {
	text string
	err  error
}

// complete runs the provider call and stops waiting when ctx expires even if
// the provider ignores its context. The buffered channel lets a late provider
// goroutine finish without blocking.
func (g *Gateway) complete(ctx context.Context, system, prompt string) (text string, err error) {
	done := make(chan completion, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- completion{err: errors.New("provider panicked")}
			}
		}()
		t, err := g.provider.Complete(ctx, system, prompt)
		done <- completion{text: t, err: err}
	}()

	select {
	case c := <-done:
		return c.text, c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
