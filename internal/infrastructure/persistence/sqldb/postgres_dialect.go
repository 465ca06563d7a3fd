package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/stockdash/stockdash/internal/domain"
	"github.com/stockdash/stockdash/internal/infrastructure/persistence/sqldb/migrations"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.PostgresFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "postgres"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (d *PostgresDialect) UpsertUser(ctx context.Context, tx *sql.Tx, u *domain.User) error {
	query := `
		INSERT INTO users (email, name, picture_url, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			picture_url = EXCLUDED.picture_url,
			last_login = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := tx.ExecContext(ctx, query, u.Email, u.Name, u.PictureURL)
	return err
}

func (d *PostgresDialect) UpsertStockPrice(ctx context.Context, tx *sql.Tx, q *domain.Quote) error {
	query := `
		INSERT INTO stock_prices (
			ticker, price, prev_close, price_change, price_change_percent,
			company_name, logo_url, market_state,
			extended_price, extended_type, extended_change, extended_change_percent,
			last_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (ticker) DO UPDATE SET
			price = EXCLUDED.price,
			prev_close = EXCLUDED.prev_close,
			price_change = EXCLUDED.price_change,
			price_change_percent = EXCLUDED.price_change_percent,
			company_name = EXCLUDED.company_name,
			logo_url = EXCLUDED.logo_url,
			market_state = EXCLUDED.market_state,
			extended_price = EXCLUDED.extended_price,
			extended_type = EXCLUDED.extended_type,
			extended_change = EXCLUDED.extended_change,
			extended_change_percent = EXCLUDED.extended_change_percent,
			last_updated = EXCLUDED.last_updated
	`
	_, err := tx.ExecContext(ctx, query,
		q.Ticker, q.Price, q.PrevClose, q.PriceChange, q.PriceChangePercent,
		q.CompanyName, q.LogoURL, string(q.MarketState),
		q.ExtendedPrice, extendedTypeValue(q.ExtendedType), q.ExtendedChange, q.ExtendedChangePercent,
		q.LastUpdated,
	)
	return err
}

func (d *PostgresDialect) InsertWatchlistEntry(ctx context.Context, tx *sql.Tx, e *domain.WatchlistEntry) (bool, error) {
	query := `
		INSERT INTO watchlist_stocks (id, user_email, ticker, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_email, ticker) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, query, e.ID, e.UserEmail, e.Ticker, e.DisplayOrder, e.CreatedAt)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func extendedTypeValue(t *domain.ExtendedType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}
