// Package llm routes answer generation across configured model providers and
// degrades to a fixed message when none of them can answer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"arthagpt/internal/domain"
)

// SystemPrompt is sent to every provider ahead of the user's question.
const SystemPrompt = `You are ArthaGPT, an assistant for Indian personal finance.
You help with mutual funds, SIPs, gold, real estate, insurance and tax-saving instruments.
Quote amounts in rupees. Use the provided context when it is relevant and say so when it is not enough.
Do not give guarantees about returns; remind users that markets carry risk.`

// FallbackMessage is returned when no provider produced an answer.
const FallbackMessage = "ArthaGPT is unable to reach its language model right now. " +
	"Please try again in a little while. Your documents and question were not lost."

// ErrUnavailable is the coarse error reported to callers when every provider failed.
var ErrUnavailable = errors.New("service unavailable")

// Response is the outcome of a generation request.
type Response struct {
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
	Error    string `json:"error,omitempty"`
	Fallback bool   `json:"fallback"`
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithSystemPrompt replaces the default persona prompt.
func WithSystemPrompt(p string) Option {
	return func(g *Gateway) {
		if p != "" {
			g.system = p
		}
	}
}

// Gateway tries providers in priority order.
type Gateway struct {
	providers []domain.LLMProvider
	system    string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewGateway creates a gateway over providers, highest priority first.
func NewGateway(providers []domain.LLMProvider, opts ...Option) *Gateway {
	g := &Gateway{
		providers: providers,
		system:    SystemPrompt,
		timeout:   60 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Providers returns the names of providers that are currently usable.
func (g *Gateway) Providers() []string {
	var names []string
	for _, p := range g.providers {
		if p.Available() {
			names = append(names, p.Name())
		}
	}
	return names
}

// Generate asks each available provider in turn. The first non-empty answer
// wins; if none succeeds the fallback message is returned with Fallback set.
func (g *Gateway) Generate(ctx context.Context, prompt, contextText string) Response {
	for _, p := range g.providers {
		if !p.Available() {
			continue
		}
		text, err := g.call(ctx, p, prompt, contextText)
		if err != nil {
			g.logger.Warn("llm provider failed", "provider", p.Name(), "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return Response{Text: text, Provider: p.Name()}
	}
	return Response{Text: FallbackMessage, Error: ErrUnavailable.Error(), Fallback: true}
}

func (g *Gateway) call(ctx context.Context, p domain.LLMProvider, prompt, contextText string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	text, err := p.Generate(ctx, g.system, prompt, contextText)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: empty response", p.Name())
	}
	return text, nil
}

// UserMessage places retrieved context ahead of the question.
func UserMessage(prompt, contextText string) string {
	contextText = strings.TrimSpace(contextText)
	if contextText == "" {
		return prompt
	}
	return "Context:\n" + contextText + "\n\nQuestion: " + prompt
}
