package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stockdash/stockdash/internal/domain"
)

// Repository implements the domain persistence ports over the sqldb wrapper.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) UpsertQuote(ctx context.Context, q *domain.Quote) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.Dialect.UpsertStockPrice(ctx, tx, q); err != nil {
			return fmt.Errorf("upsert stock price: %w", err)
		}
		return nil
	})
}

func (r *Repository) UpsertUser(ctx context.Context, u *domain.User) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.Dialect.UpsertUser(ctx, tx, u); err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		return nil
	})
}

func (r *Repository) Add(ctx context.Context, entry *domain.WatchlistEntry) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		inserted, err := r.db.Dialect.InsertWatchlistEntry(ctx, tx, entry)
		if err != nil {
			return fmt.Errorf("insert watchlist entry: %w", err)
		}
		if !inserted {
			return domain.ErrAlreadyWatched
		}
		return nil
	})
}

func (r *Repository) Remove(ctx context.Context, userEmail, ticker string) error {
	query := r.rebind("DELETE FROM watchlist_stocks WHERE user_email = $1 AND ticker = $2")

	res, err := r.db.ExecContext(ctx, query, userEmail, ticker)
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	if n == 0 {
		return domain.ErrNotWatched
	}
	return nil
}

func (r *Repository) NextDisplayOrder(ctx context.Context, userEmail string) (int, error) {
	query := r.rebind("SELECT COALESCE(MAX(display_order), 0) + 1 FROM watchlist_stocks WHERE user_email = $1")

	var next int
	if err := r.db.QueryRowContext(ctx, query, userEmail).Scan(&next); err != nil {
		return 0, fmt.Errorf("querying next display order: %w", err)
	}
	return next, nil
}

func (r *Repository) ListWithQuotes(ctx context.Context, userEmail string) ([]domain.WatchlistQuote, error) {
	query := `
        SELECT
            w.ticker, w.display_order,
            sp.price, sp.prev_close, sp.price_change, sp.price_change_percent,
            sp.company_name, sp.logo_url, sp.market_state
        FROM watchlist_stocks w
        LEFT JOIN stock_prices sp ON w.ticker = sp.ticker
        WHERE w.user_email = $1
        ORDER BY w.display_order ASC
    `
	query = r.rebind(query)

	rows, err := r.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		return nil, fmt.Errorf("querying watchlist: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}(rows)

	items := make([]domain.WatchlistQuote, 0)

	for rows.Next() {
		var item domain.WatchlistQuote
		var price, prevClose, change, changePct sql.NullFloat64
		var companyName, logoURL, marketState sql.NullString

		if err := rows.Scan(
			&item.Ticker, &item.DisplayOrder,
			&price, &prevClose, &change, &changePct,
			&companyName, &logoURL, &marketState,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		item.Price = price.Float64
		item.PrevClose = prevClose.Float64
		item.PriceChange = change.Float64
		item.PriceChangePercent = changePct.Float64
		item.CompanyName = companyName.String
		item.LogoURL = logoURL.String
		item.MarketState = domain.MarketState(marketState.String)

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) DistinctTickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT ticker FROM watchlist_stocks ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("querying watched tickers: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}(rows)

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		tickers = append(tickers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickers, nil
}

func (r *Repository) rebind(query string) string {
	if r.db.Dialect.Name() == "oracle" {
		for i := 1; i <= 10; i++ {
			query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), fmt.Sprintf(":%d", i))
		}
	}
	return query
}

var (
	_ domain.StockRepository     = (*Repository)(nil)
	_ domain.WatchlistRepository = (*Repository)(nil)
	_ domain.UserRepository      = (*Repository)(nil)
)
