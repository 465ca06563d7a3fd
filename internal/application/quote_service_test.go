package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/stockdash/internal/domain"
	"github.com/stockdash/stockdash/internal/infrastructure/marketdata"
)

// --- Fakes ---

type fakeProvider struct {
	mu         sync.Mutex
	snapshot   marketdata.Snapshot
	fetchErr   error
	fetchCalls int
	matches    []marketdata.SearchMatch
	searchErr  error
}

func (p *fakeProvider) FetchQuote(ctx context.Context, symbol string) (*marketdata.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fetchCalls++
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	snap := p.snapshot
	return &snap, nil
}

func (p *fakeProvider) Search(ctx context.Context, query string) ([]marketdata.SearchMatch, error) {
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.matches, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchCalls
}

func (p *fakeProvider) setPrice(price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.RegularPrice = price
}

type countingStockRepo struct {
	mu        sync.Mutex
	upserts   int
	upsertErr error
	last      *domain.Quote
}

func (r *countingStockRepo) UpsertQuote(ctx context.Context, q *domain.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	copied := *q
	r.last = &copied
	return nil
}

func (r *countingStockRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts
}

func regularSnapshot() marketdata.Snapshot {
	return marketdata.Snapshot{
		Symbol:        "AAPL",
		RegularPrice:  150.0,
		PreviousClose: 148.0,
		Change:        2.0,
		ChangePercent: 1.3513513,
		MarketState:   "REGULAR",
		CompanyName:   "Apple Inc.",
		LogoURL:       "https://logo.clearbit.com/www.apple.com",
	}
}

func newTestService(provider *fakeProvider, repo *countingStockRepo, cacheTTL, writeInterval time.Duration) *QuoteService {
	return NewQuoteService(provider, repo, cacheTTL, writeInterval, time.Second)
}

// --- GetQuote ---

func TestQuoteService_GetQuote_PreMarketScenario(t *testing.T) {
	provider := &fakeProvider{snapshot: marketdata.Snapshot{
		Symbol:         "AAPL",
		RegularPrice:   149.5,
		PreviousClose:  148.0,
		MarketState:    "PRE",
		PreMarketPrice: 150.0,
		CompanyName:    "Apple Inc.",
	}}
	repo := &countingStockRepo{}
	service := newTestService(provider, repo, 5*time.Minute, 10*time.Minute)

	quote, err := service.GetQuote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Ticker)
	require.NotNil(t, quote.ExtendedType)
	assert.Equal(t, domain.ExtendedTypePreMarket, *quote.ExtendedType)
	assert.Equal(t, 150.0, *quote.ExtendedPrice)
	assert.InDelta(t, 2.0, *quote.ExtendedChange, 1e-9)
	assert.InDelta(t, 1.3513513, *quote.ExtendedChangePercent, 1e-6)
}

func TestQuoteService_GetQuote_UnchangedReturnsCachedRecord(t *testing.T) {
	provider := &fakeProvider{snapshot: regularSnapshot()}
	repo := &countingStockRepo{}
	service := newTestService(provider, repo, 5*time.Minute, 10*time.Minute)

	first, err := service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	second, err := service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	// The exact cached record comes back, so serialized output is identical.
	assert.Same(t, first, second)
}

func TestQuoteService_GetQuote_AlwaysFetchesUpstream(t *testing.T) {
	provider := &fakeProvider{snapshot: regularSnapshot()}
	repo := &countingStockRepo{}
	service := newTestService(provider, repo, 5*time.Minute, 10*time.Minute)

	for i := 0; i < 3; i++ {
		_, err := service.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, provider.calls())
}

func TestQuoteService_GetQuote_ChangedDataReplacesCache(t *testing.T) {
	provider := &fakeProvider{snapshot: regularSnapshot()}
	repo := &countingStockRepo{}
	service := newTestService(provider, repo, 5*time.Minute, 10*time.Minute)

	first, err := service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 150.0, first.Price)

	provider.setPrice(151.0)

	second, err := service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 151.0, second.Price)
	assert.NotSame(t, first, second)
}

func TestQuoteService_GetQuote_WriteGating(t *testing.T) {
	provider := &fakeProvider{snapshot: regularSnapshot()}
	repo := &countingStockRepo{}
	service := newTestService(provider, repo, 5*time.Minute, 10*time.Minute)

	_, err := service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	// Changed data refreshes the cache but the write gate still holds.
	provider.setPrice(151.0)
	_, err = service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.count())
}

func TestQuoteService_GetQuote_WritesAgainAfterGateExpires(t *testing.T) {
	provider := &fakeProvider{snapshot: regularSnapshot()}
	repo := &countingStockRepo{}
	service := newTestService(provider, repo, time.Millisecond, 30*time.Millisecond)

	_, err := service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.count())

	time.Sleep(50 * time.Millisecond)
	provider.setPrice(152.0)

	_, err = service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count())
}

func TestQuoteService_GetQuote_PersistFailureDoesNotFailRequest(t *testing.T) {
	provider := &fakeProvider{snapshot: regularSnapshot()}
	repo := &countingStockRepo{upsertErr: errors.New("db down")}
	service := newTestService(provider, repo, 5*time.Minute, 10*time.Minute)

	quote, err := service.GetQuote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, 150.0, quote.Price)
}

func TestQuoteService_GetQuote_UpstreamError(t *testing.T) {
	provider := &fakeProvider{fetchErr: errors.New("connection refused")}
	repo := &countingStockRepo{}
	service := newTestService(provider, repo, 5*time.Minute, 10*time.Minute)

	_, err := service.GetQuote(context.Background(), "AAPL")

	require.Error(t, err)
	assert.True(t, domain.IsUpstreamError(err))

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "AAPL", ue.Ticker)
}

func TestQuoteService_GetQuote_PersistsFullRecord(t *testing.T) {
	provider := &fakeProvider{snapshot: regularSnapshot()}
	repo := &countingStockRepo{}
	service := newTestService(provider, repo, 5*time.Minute, 10*time.Minute)

	_, err := service.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	require.NotNil(t, repo.last)
	assert.Equal(t, "AAPL", repo.last.Ticker)
	assert.Equal(t, "Apple Inc.", repo.last.CompanyName)
	require.NotNil(t, repo.last.LogoURL)
	assert.Equal(t, "https://logo.clearbit.com/www.apple.com", *repo.last.LogoURL)
	assert.False(t, repo.last.LastUpdated.IsZero())
}

// --- Search ---

func TestQuoteService_Search_FiltersAndFormats(t *testing.T) {
	provider := &fakeProvider{matches: []marketdata.SearchMatch{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NMS", QuoteType: "EQUITY"},
		{Symbol: "VOO", Name: "Vanguard S&P 500 ETF", Exchange: "PCX", QuoteType: "ETF"},
		{Symbol: "AAPL240621C00100000", Name: "AAPL Call", Exchange: "OPR", QuoteType: "OPTION"},
		{Symbol: "", Name: "Nameless", QuoteType: "EQUITY"},
		{Symbol: "XYZ", Name: "No Exchange Co", QuoteType: "EQUITY"},
	}}
	service := newTestService(provider, &countingStockRepo{}, 5*time.Minute, 10*time.Minute)

	results := service.Search(context.Background(), "apple")

	require.Len(t, results, 3)
	assert.Equal(t, "AAPL - Apple Inc. (NMS)", results[0].Display)
	assert.Equal(t, "VOO - Vanguard S&P 500 ETF (PCX)", results[1].Display)
	assert.Equal(t, "XYZ - No Exchange Co", results[2].Display)
}

func TestQuoteService_Search_CapsAtTen(t *testing.T) {
	var matches []marketdata.SearchMatch
	for i := 0; i < 15; i++ {
		matches = append(matches, marketdata.SearchMatch{
			Symbol: "SYM", Name: "Company", Exchange: "NMS", QuoteType: "EQUITY",
		})
	}
	provider := &fakeProvider{matches: matches}
	service := newTestService(provider, &countingStockRepo{}, 5*time.Minute, 10*time.Minute)

	results := service.Search(context.Background(), "sym")

	assert.Len(t, results, 10)
}

func TestQuoteService_Search_ErrorReturnsEmpty(t *testing.T) {
	provider := &fakeProvider{searchErr: errors.New("timeout")}
	service := newTestService(provider, &countingStockRepo{}, 5*time.Minute, 10*time.Minute)

	results := service.Search(context.Background(), "apple")

	assert.NotNil(t, results)
	assert.Empty(t, results)
}
