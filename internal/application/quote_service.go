package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/stockdash/stockdash/internal/domain"
	"github.com/stockdash/stockdash/internal/infrastructure/marketdata"
)

const maxAutocompleteResults = 10

// QuoteService serves quotes through two layered TTL caches: a short-lived
// freshness cache that suppresses client-visible churn, and a longer-lived
// write gate that limits how often a ticker is upserted to the store.
//
// The upstream is always called — it exposes no push or ETag mechanism, so a
// fetch is the only way to learn whether anything changed. The read TTL
// therefore governs "skip the visible update", not "skip the call".
type QuoteService struct {
	provider        marketdata.Provider
	stocks          domain.StockRepository
	fresh           *gocache.Cache
	writes          *gocache.Cache
	upstreamTimeout time.Duration
}

func NewQuoteService(provider marketdata.Provider, stocks domain.StockRepository, cacheTTL, writeInterval, upstreamTimeout time.Duration) *QuoteService {
	return &QuoteService{
		provider:        provider,
		stocks:          stocks,
		fresh:           gocache.New(cacheTTL, cacheTTL),
		writes:          gocache.New(writeInterval, writeInterval),
		upstreamTimeout: upstreamTimeout,
	}
}

// GetQuote fetches, classifies and returns the quote for a ticker. When the
// fetched data matches the cached copy on the comparison key-set, the cached
// record is returned unchanged and no write is attempted.
func (s *QuoteService) GetQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	snap, err := s.provider.FetchQuote(fetchCtx, ticker)
	if err != nil {
		return nil, &domain.UpstreamError{Ticker: ticker, Err: err}
	}

	quote := buildQuote(ticker, snap)

	if cached, ok := s.fresh.Get(ticker); ok {
		cachedQuote := cached.(*domain.Quote)
		if cachedQuote.SameMarketData(quote) {
			return cachedQuote, nil
		}
	}

	s.fresh.Set(ticker, quote, gocache.DefaultExpiration)
	s.persistIfDue(ctx, quote)

	return quote, nil
}

// persistIfDue writes the quote through to the store unless a write for the
// ticker happened within the write interval. Persistence failures are logged
// and never fail the read path.
func (s *QuoteService) persistIfDue(ctx context.Context, q *domain.Quote) {
	if _, written := s.writes.Get(q.Ticker); written {
		return
	}

	if err := s.stocks.UpsertQuote(ctx, q); err != nil {
		slog.Error("Failed to persist quote", "ticker", q.Ticker, "error", err)
		return
	}

	s.writes.Set(q.Ticker, time.Now(), gocache.DefaultExpiration)
}

// buildQuote normalizes a provider snapshot into the canonical quote record.
// The ticker is kept as the caller supplied it, case included.
func buildQuote(ticker string, snap *marketdata.Snapshot) *domain.Quote {
	q := &domain.Quote{
		Ticker:             ticker,
		Price:              snap.RegularPrice,
		PrevClose:          snap.PreviousClose,
		PriceChange:        snap.Change,
		PriceChangePercent: snap.ChangePercent,
		CompanyName:        snap.CompanyName,
		MarketState:        domain.MarketState(snap.MarketState),
		LastUpdated:        time.Now(),
	}

	if snap.LogoURL != "" {
		logo := snap.LogoURL
		q.LogoURL = &logo
	}

	q.ExtendedPrice, q.ExtendedType, q.ExtendedChange, q.ExtendedChangePercent = domain.ExtendedHours(
		q.MarketState, snap.RegularPrice, snap.PreviousClose, snap.PreMarketPrice, snap.PostMarketPrice,
	)

	return q
}

// SearchResult is one autocomplete candidate as served to the client.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Display  string `json:"display"`
}

// Search returns up to ten equity/ETF matches for a free-text query in
// upstream relevance order. Any failure degrades to an empty result set.
func (s *QuoteService) Search(ctx context.Context, query string) []SearchResult {
	fetchCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	matches, err := s.provider.Search(fetchCtx, query)
	if err != nil {
		slog.Error("Autocomplete search failed", "query", query, "error", err)
		return []SearchResult{}
	}

	results := make([]SearchResult, 0, maxAutocompleteResults)
	for _, m := range matches {
		if m.QuoteType != "EQUITY" && m.QuoteType != "ETF" {
			continue
		}
		if m.Symbol == "" || m.Name == "" {
			continue
		}

		display := fmt.Sprintf("%s - %s", m.Symbol, m.Name)
		if m.Exchange != "" {
			display = fmt.Sprintf("%s (%s)", display, m.Exchange)
		}

		results = append(results, SearchResult{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Exchange: m.Exchange,
			Display:  display,
		})
		if len(results) == maxAutocompleteResults {
			break
		}
	}

	return results
}
