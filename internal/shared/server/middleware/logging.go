package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		fields := map[string]any{
			"request_id":  reqID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if userID := UserIDFromContext(c); userID != 0 {
			fields["user_id"] = userID
		}
		if thesisID := c.GetInt64("thesisId"); thesisID != 0 {
			fields["thesis_id"] = thesisID
		}
		if stage := c.GetString("stage"); stage != "" {
			fields["stage"] = stage
		}

		telemetry.Info("request.complete", fields)
	}
}
