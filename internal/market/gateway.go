// Package market serves price quotes for Indian indices, bullion and mutual
// funds, falling back to bundled reference figures when live data is missing.
package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"arthagpt/internal/domain"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

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

// Gateway resolves quotes from live providers, then the static table.
type Gateway struct {
	providers []domain.QuoteProvider
	logger    *slog.Logger
}

// NewGateway creates a gateway. With no providers every quote comes from the
// static table.
func NewGateway(providers []domain.QuoteProvider, opts ...Option) *Gateway {
	g := &Gateway{providers: providers, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Live reports whether any live provider is configured.
func (g *Gateway) Live() bool { return len(g.providers) > 0 }

// Quote returns the price for symbol.
func (g *Gateway) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	sym := Normalize(symbol)
	if sym == "" {
		return domain.Quote{}, fmt.Errorf("%w: empty symbol", ErrUnknownSymbol)
	}
	for _, p := range g.providers {
		q, err := p.Quote(ctx, sym)
		if err != nil {
			g.logger.Warn("quote provider failed", "provider", p.Name(), "symbol", sym, "error", err)
			continue
		}
		q.Symbol = sym
		q.Source = p.Name()
		q.Fallback = false
		if q.Name == "" {
			if ref, ok := staticQuotes[sym]; ok {
				q.Name = ref.Name
			}
		}
		return q, nil
	}
	if q, ok := staticQuote(sym); ok {
		return q, nil
	}
	return domain.Quote{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
}

// Quotes resolves several symbols. With no symbols it returns the whole
// static table. Symbols that cannot be resolved are reported in the joined
// error while the rest are still returned.
func (g *Gateway) Quotes(ctx context.Context, symbols []string) ([]domain.Quote, error) {
	if len(symbols) == 0 {
		symbols = StaticSymbols()
	}
	out := make([]domain.Quote, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	var errs []error
	for _, s := range symbols {
		n := Normalize(s)
		if seen[n] {
			continue
		}
		seen[n] = true
		q, err := g.Quote(ctx, s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, q)
	}
	return out, errors.Join(errs...)
}
