package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/stockdash/stockdash/internal/domain"
	"github.com/stockdash/stockdash/internal/infrastructure/persistence/sqldb/migrations"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) Migrate(ctx context.Context, db *sql.DB) error {
	// Goose does not support Oracle natively in a way that is easy to
	// cross-compile with go-ora; the script is executed statement by
	// statement instead, split on '/'.
	content, err := migrations.OracleFS.ReadFile("oracle/20250101000000_init.sql")
	if err != nil {
		return fmt.Errorf("reading migration file: %w", err)
	}

	statements := strings.Split(string(content), "/")

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// ORA-00955: name is already used by an existing object
			if !strings.Contains(err.Error(), "ORA-00955") {
				return fmt.Errorf("migrating: %s: %w", stmt, err)
			}
		}
	}
	return nil
}

func (d *OracleDialect) UpsertUser(ctx context.Context, tx *sql.Tx, u *domain.User) error {
	query := `MERGE INTO users t
             USING (SELECT :1 as email_val FROM dual) s
             ON (t.email = s.email_val)
             WHEN MATCHED THEN
               UPDATE SET name = :2, picture_url = :3, last_login = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
             WHEN NOT MATCHED THEN
               INSERT (email, name, picture_url, last_login, created_at, updated_at)
               VALUES (:4, :5, :6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	_, err := tx.ExecContext(ctx, query,
		u.Email,      // 1 (s.email_val)
		u.Name,       // 2 (UPDATE)
		u.PictureURL, // 3
		u.Email,      // 4 (INSERT)
		u.Name,       // 5
		u.PictureURL, // 6
	)
	return err
}

func (d *OracleDialect) UpsertStockPrice(ctx context.Context, tx *sql.Tx, q *domain.Quote) error {
	query := `MERGE INTO stock_prices t
             USING (SELECT :1 as ticker_val FROM dual) s
             ON (t.ticker = s.ticker_val)
             WHEN MATCHED THEN
               UPDATE SET
                 price = :2,
                 prev_close = :3,
                 price_change = :4,
                 price_change_percent = :5,
                 company_name = :6,
                 logo_url = :7,
                 market_state = :8,
                 extended_price = :9,
                 extended_type = :10,
                 extended_change = :11,
                 extended_change_percent = :12,
                 last_updated = :13
             WHEN NOT MATCHED THEN
               INSERT (ticker, price, prev_close, price_change, price_change_percent,
                       company_name, logo_url, market_state,
                       extended_price, extended_type, extended_change, extended_change_percent,
                       last_updated)
               VALUES (:14, :15, :16, :17, :18, :19, :20, :21, :22, :23, :24, :25, :26)`

	extType := extendedTypeValue(q.ExtendedType)

	_, err := tx.ExecContext(ctx, query,
		q.Ticker,                // 1
		q.Price,                 // 2 (UPDATE)
		q.PrevClose,             // 3
		q.PriceChange,           // 4
		q.PriceChangePercent,    // 5
		q.CompanyName,           // 6
		q.LogoURL,               // 7
		string(q.MarketState),   // 8
		q.ExtendedPrice,         // 9
		extType,                 // 10
		q.ExtendedChange,        // 11
		q.ExtendedChangePercent, // 12
		q.LastUpdated,           // 13
		q.Ticker,                // 14 (INSERT)
		q.Price,                 // 15
		q.PrevClose,             // 16
		q.PriceChange,           // 17
		q.PriceChangePercent,    // 18
		q.CompanyName,           // 19
		q.LogoURL,               // 20
		string(q.MarketState),   // 21
		q.ExtendedPrice,         // 22
		extType,                 // 23
		q.ExtendedChange,        // 24
		q.ExtendedChangePercent, // 25
		q.LastUpdated,           // 26
	)
	return err
}

func (d *OracleDialect) InsertWatchlistEntry(ctx context.Context, tx *sql.Tx, e *domain.WatchlistEntry) (bool, error) {
	query := `MERGE INTO watchlist_stocks t
             USING (SELECT :1 as email_val, :2 as ticker_val FROM dual) s
             ON (t.user_email = s.email_val AND t.ticker = s.ticker_val)
             WHEN NOT MATCHED THEN
               INSERT (id, user_email, ticker, display_order, created_at)
               VALUES (:3, :4, :5, :6, :7)`

	res, err := tx.ExecContext(ctx, query,
		e.UserEmail,    // 1
		e.Ticker,       // 2
		e.ID,           // 3 (INSERT)
		e.UserEmail,    // 4
		e.Ticker,       // 5
		e.DisplayOrder, // 6
		e.CreatedAt,    // 7
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
