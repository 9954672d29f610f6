// Package api exposes the backtester over HTTP
package api

import (
	"net/http"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/exchange"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP router with all routes and middleware wired
func NewRouter(base *config.Config, fetcher exchange.Fetcher) *gin.Engine {
	router := gin.New()
	router.Use(CORS())
	router.Use(RequestLogger())
	router.Use(ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := NewBacktestHandler(base, fetcher)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/backtest", handler.RunBacktest)
		v1.GET("/config", handler.GetDefaults)
		v1.GET("/strategies", handler.ListStrategies)
	}

	return router
}
