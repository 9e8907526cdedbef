package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stockpulse/pulse-backend/internal/httputil"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// Provider-signalled failure kinds, detected from sentinel fields in the
// response body rather than the HTTP status.
var (
	// ErrRateLimited means the provider reported quota exhaustion. The
	// ingestion cycle treats this as fatal for the whole pass.
	ErrRateLimited = errors.New("alpha vantage rate limit reached")

	// ErrPremiumEndpoint means the requested resource needs a paid tier.
	// Treated as permanent for the symbol and skipped.
	ErrPremiumEndpoint = errors.New("alpha vantage premium endpoint")
)

// DailyQuote is one entry of the provider's daily time-series map. Fields
// arrive as strings and are normalized by the ingestion cycle.
type DailyQuote struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

type Options struct {
	// BaseURL overrides the provider endpoint (tests point it at a local server).
	BaseURL string
	Timeout time.Duration
}

func NewClient(apiKey string, opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

// FetchDaily issues exactly one GET for the symbol's daily series and
// classifies the response body. It never retries internally: the caller
// counts every attempt against the provider quota.
//
// Returns the date-keyed series on success, ErrRateLimited or
// ErrPremiumEndpoint when the provider signals those conditions, and a
// wrapped transport error for everything else (connection failure, non-2xx,
// malformed or empty payload).
func (c *Client) FetchDaily(ctx context.Context, symbol string) (map[string]DailyQuote, error) {
	reqURL := c.queryURL(url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputsize": {"compact"},
		"apikey":     {c.apiKey},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daily series fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Note        string                `json:"Note"`
		Information string                `json:"Information"`
		Series      map[string]DailyQuote `json:"Time Series (Daily)"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode daily series: %w", err)
	}

	if strings.Contains(envelope.Note, "API call frequency") {
		return nil, ErrRateLimited
	}
	if strings.Contains(envelope.Information, "premium") {
		return nil, ErrPremiumEndpoint
	}
	if len(envelope.Series) == 0 {
		return nil, fmt.Errorf("response for %s has no daily series", symbol)
	}

	return envelope.Series, nil
}

// FetchNewsSentiment returns the provider's news/sentiment payload for the
// symbol verbatim. Unlike the counted quote path this one retries, matching
// how the rest of the outbound clients behave.
func (c *Client) FetchNewsSentiment(ctx context.Context, symbol string) (json.RawMessage, error) {
	reqURL := c.queryURL(url.Values{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {symbol},
		"apikey":   {c.apiKey},
	})

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("sentiment fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sentiment body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("sentiment response for %s is not valid JSON", symbol)
	}

	return json.RawMessage(body), nil
}

func (c *Client) queryURL(params url.Values) string {
	return c.baseURL + "?" + params.Encode()
}
