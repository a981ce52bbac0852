package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by cache backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /health. A failing cache ping reports "degraded"
// because runs still succeed without the cache.
func Health(cache Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if cache != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cache.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["cache"] = err.Error()
			} else {
				status["cache"] = "ok"
			}
		}
		c.JSON(http.StatusOK, status)
	}
}
