package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "studybuddy/internal/transport/http/response"
)

// SimpleRecovery 把 handler 内的 panic 转成统一 JSON 500
func SimpleRecovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered", zap.Any("panic", rec), zap.String("path", c.Request.URL.Path))
				resp.Abort(c, http.StatusInternalServerError, resp.CodeInternal, "internal server error")
			}
		}()
		c.Next()
	}
}
