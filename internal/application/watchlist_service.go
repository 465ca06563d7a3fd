package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stockdash/stockdash/internal/domain"
)

// WatchlistService manages per-user ticker lists.
type WatchlistService struct {
	repo domain.WatchlistRepository
}

func NewWatchlistService(repo domain.WatchlistRepository) *WatchlistService {
	return &WatchlistService{repo: repo}
}

// List returns the user's watchlist joined with the latest persisted quotes,
// ordered by display order. Store failures degrade to an empty list so the
// dashboard always renders.
func (s *WatchlistService) List(ctx context.Context, userEmail string) []domain.WatchlistQuote {
	items, err := s.repo.ListWithQuotes(ctx, userEmail)
	if err != nil {
		slog.Error("Failed to list watchlist", "user_email", userEmail, "error", err)
		return []domain.WatchlistQuote{}
	}
	return items
}

// Add appends a ticker at the end of the user's list. Display orders count
// up from 1 and are never reused, so removals leave gaps.
func (s *WatchlistService) Add(ctx context.Context, userEmail, ticker string) (*domain.WatchlistEntry, error) {
	next, err := s.repo.NextDisplayOrder(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to compute display order: %w", err)
	}

	entry := domain.NewWatchlistEntry(userEmail, ticker, next)
	if err := s.repo.Add(ctx, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// Remove drops a ticker from the user's list.
func (s *WatchlistService) Remove(ctx context.Context, userEmail, ticker string) error {
	return s.repo.Remove(ctx, userEmail, ticker)
}

// WatchedTickers returns every ticker present on any user's list.
func (s *WatchlistService) WatchedTickers(ctx context.Context) ([]string, error) {
	return s.repo.DistinctTickers(ctx)
}
