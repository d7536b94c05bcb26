package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter registers the routes of h on a new gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/query", h.Query)
		api.GET("/threads/:id", h.ThreadHistory)
		api.DELETE("/threads/:id", h.ResetThread)

		api.GET("/claims", h.ClaimsByStatus)
		api.GET("/claims/:id", h.Claim)
		api.GET("/claims/:id/adjudication", h.Adjudicate)
		api.POST("/adjudications", h.AdjudicateBatch)
		api.GET("/members/:id/claims", h.MemberClaims)
	}
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
