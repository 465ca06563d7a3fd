// Package memory holds map-backed implementations of the persistence ports,
// used by unit tests and as a stand-in store when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/stockdash/stockdash/internal/domain"
)

type Repository struct {
	mu      sync.RWMutex
	quotes  map[string]domain.Quote
	users   map[string]domain.User
	entries []domain.WatchlistEntry
}

func NewRepository() *Repository {
	return &Repository{
		quotes: make(map[string]domain.Quote),
		users:  make(map[string]domain.User),
	}
}

func (r *Repository) UpsertQuote(ctx context.Context, q *domain.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.quotes[q.Ticker] = *q
	return nil
}

func (r *Repository) UpsertUser(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[u.Email] = *u
	return nil
}

func (r *Repository) Add(ctx context.Context, entry *domain.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.UserEmail == entry.UserEmail && e.Ticker == entry.Ticker {
			return domain.ErrAlreadyWatched
		}
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *Repository) Remove(ctx context.Context, userEmail, ticker string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.UserEmail == userEmail && e.Ticker == ticker {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotWatched
}

func (r *Repository) NextDisplayOrder(ctx context.Context, userEmail string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	maxOrder := 0
	for _, e := range r.entries {
		if e.UserEmail == userEmail && e.DisplayOrder > maxOrder {
			maxOrder = e.DisplayOrder
		}
	}
	return maxOrder + 1, nil
}

func (r *Repository) ListWithQuotes(ctx context.Context, userEmail string) ([]domain.WatchlistQuote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.WatchlistQuote, 0)
	for _, e := range r.entries {
		if e.UserEmail != userEmail {
			continue
		}
		item := domain.WatchlistQuote{
			Ticker:       e.Ticker,
			DisplayOrder: e.DisplayOrder,
		}
		if q, ok := r.quotes[e.Ticker]; ok {
			item.Price = q.Price
			item.PrevClose = q.PrevClose
			item.PriceChange = q.PriceChange
			item.PriceChangePercent = q.PriceChangePercent
			item.CompanyName = q.CompanyName
			if q.LogoURL != nil {
				item.LogoURL = *q.LogoURL
			}
			item.MarketState = q.MarketState
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].DisplayOrder < items[j].DisplayOrder
	})

	return items, nil
}

func (r *Repository) DistinctTickers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var tickers []string
	for _, e := range r.entries {
		if !seen[e.Ticker] {
			seen[e.Ticker] = true
			tickers = append(tickers, e.Ticker)
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

// Quote returns the stored quote for a ticker (test helper).
func (r *Repository) Quote(ticker string) (domain.Quote, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quotes[ticker]
	return q, ok
}

// User returns the stored user for an email (test helper).
func (r *Repository) User(email string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	return u, ok
}

var (
	_ domain.StockRepository     = (*Repository)(nil)
	_ domain.WatchlistRepository = (*Repository)(nil)
	_ domain.UserRepository      = (*Repository)(nil)
)
