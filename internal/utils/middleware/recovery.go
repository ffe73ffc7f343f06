package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/fintoc-gateway/internal/shared/logger"
	apperrors "github.com/uniedit/fintoc-gateway/internal/utils/errors"
)

// Recovery returns a middleware that recovers from panics.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.New(nil)
	}

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic recovered",
					"error", rec,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				apperrors.Abort(c, apperrors.Internal("internal server error", fmt.Errorf("panic: %v", rec)))
			}
		}()
		c.Next()
	}
}
