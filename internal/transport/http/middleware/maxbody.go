package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "studybuddy/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；超限由绑定阶段报 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			resp.Abort(c, http.StatusRequestEntityTooLarge, resp.CodeBodyTooLarge, "request body too large")
		}
	}
}
