package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockdash/stockdash/internal/application"
	"github.com/stockdash/stockdash/internal/domain"
)

// QuoteService defines the quote and autocomplete operations the transport needs.
type QuoteService interface {
	GetQuote(ctx context.Context, ticker string) (*domain.Quote, error)
	Search(ctx context.Context, query string) []application.SearchResult
}

// WatchlistService defines the watchlist operations.
type WatchlistService interface {
	List(ctx context.Context, userEmail string) []domain.WatchlistQuote
	Add(ctx context.Context, userEmail, ticker string) (*domain.WatchlistEntry, error)
	Remove(ctx context.Context, userEmail, ticker string) error
}

// AuthService verifies logins.
type AuthService interface {
	VerifyToken(ctx context.Context, token string) (*domain.User, string, error)
}

// ChatService relays chat messages.
type ChatService interface {
	Reply(ctx context.Context, message string) string
}

type Handler struct {
	quotes    QuoteService
	watchlist WatchlistService
	auth      AuthService
	chat      ChatService
}

func NewHandler(quotes QuoteService, watchlist WatchlistService, auth AuthService, chat ChatService) *Handler {
	return &Handler{
		quotes:    quotes,
		watchlist: watchlist,
		auth:      auth,
		chat:      chat,
	}
}

// QuoteErrorResponse is the error body for quote endpoints; it keeps the
// {error, ticker} shape of the previous API but rides on a real status code.
type QuoteErrorResponse struct {
	Error  string `json:"error"`
	Ticker string `json:"ticker"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// reducedQuote is the quote without company metadata, served by /stock/:ticker.
type reducedQuote struct {
	Ticker                string               `json:"ticker"`
	Price                 float64              `json:"price"`
	PrevClose             float64              `json:"prev_close"`
	PriceChange           float64              `json:"price_change"`
	PriceChangePercent    float64              `json:"price_change_percent"`
	MarketState           domain.MarketState   `json:"market_state"`
	ExtendedPrice         *float64             `json:"extended_price"`
	ExtendedType          *domain.ExtendedType `json:"extended_type"`
	ExtendedChange        *float64             `json:"extended_change"`
	ExtendedChangePercent *float64             `json:"extended_change_percent"`
}

func (h *Handler) GetStockPrice(c *gin.Context) {
	ticker := c.Param("ticker")

	quote, err := h.quotes.GetQuote(c.Request.Context(), ticker)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to get quote", "ticker", ticker, "error", err)
		c.JSON(http.StatusBadGateway, QuoteErrorResponse{Error: err.Error(), Ticker: ticker})
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *Handler) GetStock(c *gin.Context) {
	ticker := c.Param("ticker")

	quote, err := h.quotes.GetQuote(c.Request.Context(), ticker)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to get quote", "ticker", ticker, "error", err)
		c.JSON(http.StatusBadGateway, QuoteErrorResponse{Error: err.Error(), Ticker: ticker})
		return
	}

	c.JSON(http.StatusOK, reducedQuote{
		Ticker:                quote.Ticker,
		Price:                 quote.Price,
		PrevClose:             quote.PrevClose,
		PriceChange:           quote.PriceChange,
		PriceChangePercent:    quote.PriceChangePercent,
		MarketState:           quote.MarketState,
		ExtendedPrice:         quote.ExtendedPrice,
		ExtendedType:          quote.ExtendedType,
		ExtendedChange:        quote.ExtendedChange,
		ExtendedChangePercent: quote.ExtendedChangePercent,
	})
}

func (h *Handler) GetWatchlist(c *gin.Context) {
	userEmail := c.Param("user_email")

	items := h.watchlist.List(c.Request.Context(), userEmail)

	c.JSON(http.StatusOK, items)
}

func (h *Handler) AddToWatchlist(c *gin.Context) {
	ticker := c.Query("ticker")
	userEmail := c.Query("user_email")

	if ticker == "" || userEmail == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ticker and user_email are required"})
		return
	}

	entry, err := h.watchlist.Add(c.Request.Context(), userEmail, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyWatched) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		slog.ErrorContext(c.Request.Context(), "Failed to add to watchlist", "ticker", ticker, "user_email", userEmail, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "added to watchlist",
		"ticker":        entry.Ticker,
		"display_order": entry.DisplayOrder,
	})
}

func (h *Handler) RemoveFromWatchlist(c *gin.Context) {
	ticker := c.Query("ticker")
	userEmail := c.Query("user_email")

	if ticker == "" || userEmail == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ticker and user_email are required"})
		return
	}

	if err := h.watchlist.Remove(c.Request.Context(), userEmail, ticker); err != nil {
		if errors.Is(err, domain.ErrNotWatched) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		slog.ErrorContext(c.Request.Context(), "Failed to remove from watchlist", "ticker", ticker, "user_email", userEmail, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "removed from watchlist",
		"ticker":  ticker,
	})
}

func (h *Handler) Autocomplete(c *gin.Context) {
	results := h.quotes.Search(c.Request.Context(), c.Param("query"))

	c.JSON(http.StatusOK, results)
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	reply := h.chat.Reply(c.Request.Context(), req.Message)

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

func (h *Handler) VerifyToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "token is required"})
		return
	}

	user, accessToken, err := h.auth.VerifyToken(c.Request.Context(), token)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Token verification failed", "error", err)
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"email":        user.Email,
		"name":         user.Name,
		"picture":      user.PictureURL,
		"access_token": accessToken,
	})
}
