package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/fintoc-gateway/internal/shared/logger"
)

// Logging returns a middleware that logs HTTP requests. Paths in skip are not logged.
// The request-scoped logger is stored in the request context.
func Logging(log *logger.Logger, skip ...string) gin.HandlerFunc {
	skipPaths := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipPaths[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		reqLog := log
		if requestID := GetRequestID(c); requestID != "" {
			reqLog = log.With("request_id", requestID)
		}
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), reqLog))

		c.Next()

		if _, ok := skipPaths[path]; ok {
			return
		}

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if ua := c.Request.UserAgent(); ua != "" {
			attrs = append(attrs, "user_agent", ua)
		}
		if subject := GetSubject(c); subject != "" {
			attrs = append(attrs, "subject", subject)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		// Query strings are not logged: return URLs carry access tokens.
		switch {
		case status >= 500:
			reqLog.Error("HTTP Request", attrs...)
		case status >= 400:
			reqLog.Warn("HTTP Request", attrs...)
		default:
			reqLog.Info("HTTP Request", attrs...)
		}
	}
}
