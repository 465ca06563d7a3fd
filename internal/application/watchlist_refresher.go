package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/stockdash/stockdash/internal/domain"
)

// QuoteGetter is the slice of QuoteService the refresher needs.
type QuoteGetter interface {
	GetQuote(ctx context.Context, ticker string) (*domain.Quote, error)
}

// TickerLister enumerates the tickers worth keeping warm.
type TickerLister interface {
	WatchedTickers(ctx context.Context) ([]string, error)
}

// WatchlistRefresher periodically re-runs the quote flow for every watched
// ticker so persisted quotes stay current even when nobody is polling. The
// per-ticker write gate still applies.
type WatchlistRefresher struct {
	quotes   QuoteGetter
	tickers  TickerLister
	interval time.Duration
	stopChan chan struct{}
}

func NewWatchlistRefresher(quotes QuoteGetter, tickers TickerLister, interval time.Duration) *WatchlistRefresher {
	return &WatchlistRefresher{
		quotes:   quotes,
		tickers:  tickers,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (r *WatchlistRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("Watchlist refresher started", "interval", r.interval)

	for {
		select {
		case <-ticker.C:
			r.refreshAll(ctx)
		case <-r.stopChan:
			slog.Info("Watchlist refresher stopped")
			return
		case <-ctx.Done():
			slog.Info("Watchlist refresher stopped due to context cancellation")
			return
		}
	}
}

func (r *WatchlistRefresher) Stop() {
	close(r.stopChan)
}

func (r *WatchlistRefresher) refreshAll(ctx context.Context) {
	tickers, err := r.tickers.WatchedTickers(ctx)
	if err != nil {
		slog.Error("Failed to list watched tickers", "error", err)
		return
	}

	for _, t := range tickers {
		if _, err := r.quotes.GetQuote(ctx, t); err != nil {
			slog.Error("Failed to refresh quote", "ticker", t, "error", err)
		}
	}

	if len(tickers) > 0 {
		slog.Info("Watched quotes refreshed", "count", len(tickers))
	}
}
