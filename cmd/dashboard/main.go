package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "github.com/sijms/go-ora/v2"

	"github.com/stockdash/stockdash/internal/application"
	"github.com/stockdash/stockdash/internal/infrastructure/auth"
	"github.com/stockdash/stockdash/internal/infrastructure/auth/google"
	"github.com/stockdash/stockdash/internal/infrastructure/config"
	"github.com/stockdash/stockdash/internal/infrastructure/genai/gemini"
	"github.com/stockdash/stockdash/internal/infrastructure/marketdata/yahoo"
	"github.com/stockdash/stockdash/internal/infrastructure/persistence/sqldb"
	httpHandler "github.com/stockdash/stockdash/internal/interfaces/http"
)

// setupLogger configures and returns a structured logger with source information
func setupLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(level),
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initializeDatabase sets up the database connection and runs migrations
func initializeDatabase(cfg *config.Config) (*sqldb.Repository, error) {
	var db *sql.DB
	var dialect sqldb.Dialect
	var err error

	switch cfg.DBDriver {
	case config.DBDriverPostgres:
		db, err = sql.Open("pgx", cfg.DBDSN)
		dialect = &sqldb.PostgresDialect{}
	case config.DBDriverOracle:
		db, err = sql.Open("oracle", cfg.DBDSN)
		dialect = &sqldb.OracleDialect{}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapper := sqldb.New(db, dialect)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := wrapper.Dialect.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return sqldb.NewRepository(wrapper), nil
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, handler *httpHandler.Handler) *http.Server {
	router := gin.Default()
	httpHandler.SetupRoutes(router, handler, cfg.StaticDir)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// App wraps the application components for easier testing
type App struct {
	Server        *http.Server
	Refresher     *application.WatchlistRefresher
	CancelContext context.CancelFunc
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if a.Refresher != nil {
		a.Refresher.Stop()
	}
	a.CancelContext()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	return nil
}

// run contains the main application logic without os.Exit calls
func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg.LogLevel)

	repo, err := initializeDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	provider := yahoo.NewClientWithBaseURL(cfg.YahooBaseURL)

	quoteService := application.NewQuoteService(provider, repo, cfg.QuoteCacheTTL, cfg.QuoteWriteInterval, cfg.UpstreamTimeout)
	watchlistService := application.NewWatchlistService(repo)
	authService := application.NewAuthService(
		google.NewVerifier(cfg.GoogleClientID),
		repo,
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL),
	)
	chatService := application.NewChatService(gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var refresher *application.WatchlistRefresher
	if cfg.WatchlistRefreshInterval > 0 {
		refresher = application.NewWatchlistRefresher(quoteService, watchlistService, cfg.WatchlistRefreshInterval)
		go refresher.Start(ctx)
	}

	handler := httpHandler.NewHandler(quoteService, watchlistService, authService, chatService)
	server := buildServer(cfg, handler)

	app := &App{
		Server:        server,
		Refresher:     refresher,
		CancelContext: cancel,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
