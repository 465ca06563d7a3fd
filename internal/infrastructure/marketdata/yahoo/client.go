package yahoo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/stockdash/stockdash/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	quoteSummaryPath = "/v10/finance/quoteSummary"
	searchPath       = "/v1/finance/search"

	// Yahoo rejects requests without a browser-looking UA.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	quoteModules     = "price,summaryProfile"
	searchMaxQuotes  = 10
	maxErrorBodySize = 512
)

// Client implements the marketdata.Provider interface against the public
// Yahoo Finance JSON endpoints. The payloads are deep and sparsely
// populated, so fields are picked out with gjson instead of struct decoding.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Yahoo Finance client with default settings.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client against a custom base URL.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// NewClientWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := body
		if len(snippet) > maxErrorBodySize {
			snippet = snippet[:maxErrorBodySize]
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(snippet))
	}

	return body, nil
}

// FetchQuote retrieves the current quote for a symbol, including market
// state, pre/post prices and company metadata.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*marketdata.Snapshot, error) {
	reqURL := fmt.Sprintf("%s%s/%s?modules=%s", c.baseURL, quoteSummaryPath, url.PathEscape(symbol), url.QueryEscape(quoteModules))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed payload for symbol %s", symbol)
	}

	if desc := gjson.GetBytes(body, "quoteSummary.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("API error for symbol %s: %s", symbol, desc.String())
	}

	price := gjson.GetBytes(body, "quoteSummary.result.0.price")
	if !price.Exists() {
		return nil, fmt.Errorf("no quote data for symbol %s", symbol)
	}

	companyName := price.Get("longName").String()
	if companyName == "" {
		companyName = price.Get("shortName").String()
	}

	snap := &marketdata.Snapshot{
		Symbol:          price.Get("symbol").String(),
		RegularPrice:    price.Get("regularMarketPrice.raw").Float(),
		PreviousClose:   price.Get("regularMarketPreviousClose.raw").Float(),
		Change:          price.Get("regularMarketChange.raw").Float(),
		ChangePercent:   price.Get("regularMarketChangePercent.raw").Float() * 100,
		MarketState:     price.Get("marketState").String(),
		PreMarketPrice:  price.Get("preMarketPrice.raw").Float(),
		PostMarketPrice: price.Get("postMarketPrice.raw").Float(),
		CompanyName:     companyName,
		LogoURL:         logoURL(gjson.GetBytes(body, "quoteSummary.result.0.summaryProfile.website").String()),
	}

	if snap.Symbol == "" {
		snap.Symbol = symbol
	}

	return snap, nil
}

// Search returns autocomplete candidates for a free-text query, in the
// order Yahoo ranks them.
func (c *Client) Search(ctx context.Context, query string) ([]marketdata.SearchMatch, error) {
	reqURL := fmt.Sprintf("%s%s?q=%s&quotesCount=%d&newsCount=0", c.baseURL, searchPath, url.QueryEscape(query), searchMaxQuotes)

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed search payload for query %q", query)
	}

	quotes := gjson.GetBytes(body, "quotes")
	matches := make([]marketdata.SearchMatch, 0, searchMaxQuotes)

	quotes.ForEach(func(_, q gjson.Result) bool {
		name := q.Get("shortname").String()
		if name == "" {
			name = q.Get("longname").String()
		}
		matches = append(matches, marketdata.SearchMatch{
			Symbol:    q.Get("symbol").String(),
			Name:      name,
			Exchange:  q.Get("exchange").String(),
			QuoteType: q.Get("quoteType").String(),
		})
		return true
	})

	return matches, nil
}

// logoURL derives a best-effort logo location from a company website.
// Returns "" when there is nothing to derive from.
func logoURL(website string) string {
	if website == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.TrimPrefix(website, "https://"), "http://")
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return ""
	}
	return "https://logo.clearbit.com/" + host
}

// Compile-time check that Client implements Provider.
var _ marketdata.Provider = (*Client)(nil)
