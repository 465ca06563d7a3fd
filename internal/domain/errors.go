package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken means the presented ID token failed verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrAlreadyWatched means the (user, ticker) pair already exists.
	ErrAlreadyWatched = errors.New("ticker already in watchlist")

	// ErrNotWatched means a removal targeted a (user, ticker) pair that
	// does not exist.
	ErrNotWatched = errors.New("ticker not in watchlist")
)

// UpstreamError wraps a market-data provider failure for a single ticker:
// unreachable upstream, empty or malformed payload, unknown symbol.
type UpstreamError struct {
	Ticker string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream quote for %s: %v", e.Ticker, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstreamError reports whether err is (or wraps) an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
