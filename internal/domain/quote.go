package domain

import "time"

// MarketState is the session phase reported by the upstream provider.
// Values outside the known set are passed through untouched.
type MarketState string

const (
	MarketStateRegular  MarketState = "REGULAR"
	MarketStatePre      MarketState = "PRE"
	MarketStatePost     MarketState = "POST"
	MarketStatePostPost MarketState = "POSTPOST"
	MarketStateClosed   MarketState = "CLOSED"
)

type ExtendedType string

const (
	ExtendedTypePreMarket  ExtendedType = "PRE_MARKET"
	ExtendedTypePostMarket ExtendedType = "POST_MARKET"
)

// Quote is the canonical per-symbol record served to clients and persisted
// to stock_prices. The extended_* fields are all nil or all set together.
type Quote struct {
	Ticker                string        `json:"ticker"`
	Price                 float64       `json:"price"`
	PrevClose             float64       `json:"prev_close"`
	PriceChange           float64       `json:"price_change"`
	PriceChangePercent    float64       `json:"price_change_percent"`
	CompanyName           string        `json:"company_name"`
	LogoURL               *string       `json:"logo_url"`
	MarketState           MarketState   `json:"market_state"`
	ExtendedPrice         *float64      `json:"extended_price"`
	ExtendedType          *ExtendedType `json:"extended_type"`
	ExtendedChange        *float64      `json:"extended_change"`
	ExtendedChangePercent *float64      `json:"extended_change_percent"`
	LastUpdated           time.Time     `json:"-"`
}

// ExtendedHours derives the extended-session price fields from the market
// state and the raw pre/post prices. A raw price counts only when > 0.
// When the change denominator (prev close for PRE, the regular price
// otherwise) is not positive, the whole block is absent rather than a price
// without a change.
func ExtendedHours(state MarketState, regularPrice, prevClose, preMarketPrice, postMarketPrice float64) (price *float64, typ *ExtendedType, change, changePercent *float64) {
	switch {
	case state == MarketStatePre && preMarketPrice > 0:
		if prevClose <= 0 {
			return nil, nil, nil, nil
		}
		t := ExtendedTypePreMarket
		c := preMarketPrice - prevClose
		pct := c / prevClose * 100
		return &preMarketPrice, &t, &c, &pct
	case (state == MarketStatePost || state == MarketStatePostPost || state == MarketStateClosed) && postMarketPrice > 0:
		if regularPrice <= 0 {
			return nil, nil, nil, nil
		}
		t := ExtendedTypePostMarket
		c := postMarketPrice - regularPrice
		pct := c / regularPrice * 100
		return &postMarketPrice, &t, &c, &pct
	default:
		return nil, nil, nil, nil
	}
}

// SameMarketData reports whether two quotes agree on the comparison key-set
// that decides cache and write-through staleness. Display metadata and the
// derived extended fields are deliberately excluded: they only move when one
// of these five does.
func (q *Quote) SameMarketData(other *Quote) bool {
	if other == nil {
		return false
	}
	return q.Price == other.Price &&
		q.PrevClose == other.PrevClose &&
		q.PriceChange == other.PriceChange &&
		q.PriceChangePercent == other.PriceChangePercent &&
		q.MarketState == other.MarketState
}

// HasExtended reports whether the extended block is populated.
func (q *Quote) HasExtended() bool {
	return q.ExtendedPrice != nil
}
