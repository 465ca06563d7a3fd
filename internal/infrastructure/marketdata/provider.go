package marketdata

import "context"

// Snapshot is a provider-normalized view of one symbol at one instant,
// before extended-hours derivation. Absent numeric fields are zero.
type Snapshot struct {
	Symbol          string
	RegularPrice    float64
	PreviousClose   float64
	Change          float64
	ChangePercent   float64
	MarketState     string
	PreMarketPrice  float64
	PostMarketPrice float64
	CompanyName     string
	LogoURL         string
}

// SearchMatch is one autocomplete candidate in upstream relevance order.
type SearchMatch struct {
	Symbol    string
	Name      string
	Exchange  string
	QuoteType string
}

// Provider is the market-data upstream boundary. Implementations do not
// retry; absence of data is reported as an error and the caller decides.
type Provider interface {
	FetchQuote(ctx context.Context, symbol string) (*Snapshot, error)
	Search(ctx context.Context, query string) ([]SearchMatch, error)
}
