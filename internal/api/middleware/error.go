package middleware

import (
	"log/slog"
	"net/http"

	"lbo-analyzer/internal/api/models"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware handles panics and errors
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			slog.Any("panic", recovered),
			slog.String("path", c.Request.URL.Path),
			slog.String("request_id", c.GetString(RequestIDKey)),
		)
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    models.CodeInternal,
				Message: msg,
			},
		})
	})
}
