package http

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the API surface. staticDir may be empty to skip the
// static dashboard pages (tests do this).
func SetupRoutes(router *gin.Engine, handler *Handler, staticDir string) {
	router.Use(CORSMiddleware())

	router.GET("/stockprice/:ticker", handler.GetStockPrice)
	router.GET("/stock/:ticker", handler.GetStock)

	router.GET("/watchlist/:user_email", handler.GetWatchlist)
	router.POST("/watchlist/add", handler.AddToWatchlist)
	router.POST("/watchlist/remove", handler.RemoveFromWatchlist)

	router.GET("/autocomplete/:query", handler.Autocomplete)
	router.POST("/chat", handler.Chat)
	router.GET("/verify_token", handler.VerifyToken)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if staticDir != "" {
		router.Static("/static", staticDir)
		router.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(staticDir, "login.html"))
		})
		router.GET("/home", func(c *gin.Context) {
			c.File(filepath.Join(staticDir, "index.html"))
		})
	}
}

// CORSMiddleware mirrors the dashboard's allow-all policy; the client is
// served from arbitrary origins during development.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Expose-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
