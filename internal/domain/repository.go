package domain

import "context"

// StockRepository persists the latest quote per ticker (one row, upserted by
// ticker). All methods accept context.Context to enable proper timeout
// handling and cancellation propagation.
type StockRepository interface {
	UpsertQuote(ctx context.Context, q *Quote) error
}

// WatchlistRepository persists per-user watchlists and serves the joined
// read path.
type WatchlistRepository interface {
	// Add inserts the entry; it returns ErrAlreadyWatched when the
	// (user_email, ticker) pair already exists.
	Add(ctx context.Context, entry *WatchlistEntry) error
	// Remove deletes the pair; it returns ErrNotWatched when nothing
	// matched.
	Remove(ctx context.Context, userEmail, ticker string) error
	// NextDisplayOrder returns max(display_order)+1 for the user, or 1
	// when the user has no entries.
	NextDisplayOrder(ctx context.Context, userEmail string) (int, error)
	// ListWithQuotes returns the user's entries left-joined with the
	// latest persisted quote, ordered by display_order ascending.
	ListWithQuotes(ctx context.Context, userEmail string) ([]WatchlistQuote, error)
	// DistinctTickers returns every ticker watched by at least one user.
	DistinctTickers(ctx context.Context) ([]string, error)
}

// UserRepository mirrors verified login profiles into the users table.
type UserRepository interface {
	UpsertUser(ctx context.Context, u *User) error
}
