package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires the HTTP routes exposed to agents and the dashboard.
// hub may be nil when the websocket feed is disabled.
func NewRouter(logger *slog.Logger, handlers *Handlers, pinger Pinger, hub *Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if pinger != nil {
			if err := pinger.Ping(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/agents", handlers.registerAgent)
		api.GET("/agents", handlers.listAgents)
		api.GET("/agents/:name", handlers.agentStats)
		api.GET("/agents/:name/balance", handlers.agentBalance)
		api.GET("/agents/:name/earnings", handlers.agentEarnings)
		api.POST("/earnings", handlers.recordEarning)
		api.POST("/spendings", handlers.recordSpending)
		api.POST("/transfers", handlers.transfer)
		api.GET("/transactions", handlers.listTransactions)
		api.GET("/quotes", handlers.quote)
	}

	if hub != nil {
		router.GET("/ws", hub.Handle)
	}

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
