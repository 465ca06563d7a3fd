package domain

import (
	"time"

	"github.com/google/uuid"
)

// WatchlistEntry is one watched ticker for one user. DisplayOrder is assigned
// as max(existing)+1 on insert and never reused after a removal, so gaps are
// expected.
type WatchlistEntry struct {
	ID           string    `json:"id"`
	UserEmail    string    `json:"user_email"`
	Ticker       string    `json:"ticker"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewWatchlistEntry(userEmail, ticker string, displayOrder int) WatchlistEntry {
	return WatchlistEntry{
		ID:           uuid.New().String(),
		UserEmail:    userEmail,
		Ticker:       ticker,
		DisplayOrder: displayOrder,
		CreatedAt:    time.Now(),
	}
}

func (e WatchlistEntry) IsValid() bool {
	return e.ID != "" && e.UserEmail != "" && e.Ticker != ""
}

// WatchlistQuote is a watchlist entry joined with the latest persisted quote
// for its ticker. When no quote row exists yet, numeric fields are zero and
// text fields empty.
type WatchlistQuote struct {
	Ticker             string      `json:"ticker"`
	DisplayOrder       int         `json:"display_order"`
	Price              float64     `json:"price"`
	PrevClose          float64     `json:"prev_close"`
	PriceChange        float64     `json:"price_change"`
	PriceChangePercent float64     `json:"price_change_percent"`
	CompanyName        string      `json:"company_name"`
	LogoURL            string      `json:"logo_url"`
	MarketState        MarketState `json:"market_state"`
}
