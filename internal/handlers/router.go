package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"vibecheck/internal/metrics"
)

// Router groups the handlers served by the API
type Router struct {
	Rooms  *RoomHandler
	Search *SearchHandler
	Token  *TokenHandler
	Health *HealthHandler
}

// NewRouter builds the gin engine with logging, metrics and all routes
func NewRouter(r Router) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), metrics.Middleware())

	router.GET("/health", r.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/api/token", r.Token.Token)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/search", r.Search.Search)
		v1.POST("/rooms", r.Rooms.CreateRoom)
		v1.GET("/rooms/:id", r.Rooms.GetRoom)
		v1.POST("/rooms/:id/entries", r.Rooms.SubmitEntry)
	}

	return router
}

// requestLogger logs one structured line per request
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		slog.Info("HTTP request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"clientIP", c.ClientIP())
	}
}
