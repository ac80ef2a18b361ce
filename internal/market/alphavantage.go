package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"arthagpt/internal/domain"
)

var errNoQuote = errors.New("alphavantage: no quote returned")

// AlphaVantage fetches GLOBAL_QUOTE data. Requests are throttled to stay
// inside the account's per-minute budget.
type AlphaVantage struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAlphaVantage creates a provider. requestsPerMinute <= 0 means 5, the free tier.
func NewAlphaVantage(baseURL, apiKey string, requestsPerMinute float64, timeout time.Duration) *AlphaVantage {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AlphaVantage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerMinute/60), 1),
	}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

type globalQuote struct {
	Quote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		LatestDay     string `json:"07. latest trading day"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (a *AlphaVantage) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return domain.Quote{}, err
	}
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return domain.Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Quote{}, fmt.Errorf("alphavantage API error (%d): %s", resp.StatusCode, string(body))
	}
	var gq globalQuote
	if err := json.NewDecoder(resp.Body).Decode(&gq); err != nil {
		return domain.Quote{}, fmt.Errorf("alphavantage decode: %w", err)
	}
	for _, msg := range []string{gq.ErrorMessage, gq.Note, gq.Information} {
		if msg != "" {
			return domain.Quote{}, fmt.Errorf("alphavantage: %s", msg)
		}
	}
	if gq.Quote.Price == "" {
		return domain.Quote{}, errNoQuote
	}
	return parseGlobalQuote(gq)
}

func parseGlobalQuote(gq globalQuote) (domain.Quote, error) {
	price, err := strconv.ParseFloat(gq.Quote.Price, 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("alphavantage price %q: %w", gq.Quote.Price, err)
	}
	out := domain.Quote{Symbol: gq.Quote.Symbol, Price: price, Currency: "INR"}
	if v, err := strconv.ParseFloat(gq.Quote.Change, 64); err == nil {
		out.Change = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSuffix(gq.Quote.ChangePercent, "%"), 64); err == nil {
		out.ChangePercent = v
	}
	if t, err := time.Parse("2006-01-02", gq.Quote.LatestDay); err == nil {
		out.AsOf = t
	} else {
		out.AsOf = time.Now()
	}
	return out, nil
}
