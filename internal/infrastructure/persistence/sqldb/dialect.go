package sqldb

import (
	"context"
	"database/sql"

	"github.com/stockdash/stockdash/internal/domain"
)

// Dialect isolates the SQL that differs between the supported engines:
// migrations and the three upsert-shaped writes. Reads share one query text
// via Repository.rebind.
type Dialect interface {
	Name() string
	Migrate(ctx context.Context, db *sql.DB) error
	UpsertUser(ctx context.Context, tx *sql.Tx, u *domain.User) error
	UpsertStockPrice(ctx context.Context, tx *sql.Tx, q *domain.Quote) error
	// InsertWatchlistEntry inserts the entry unless the (user_email,
	// ticker) pair already exists; it reports whether a row was written.
	InsertWatchlistEntry(ctx context.Context, tx *sql.Tx, e *domain.WatchlistEntry) (bool, error)
}
