package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studybuddy/internal/domain"
)

// Body 统一错误体；成功时直接返回资源 JSON
type Body struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Msg 仅含 message 的响应（删除成功等）
type Msg struct {
	Message string `json:"message"`
}

func Error(code, msg string) Body { return Body{Message: msg, Code: code} }

// Abort 以指定状态码终止请求
func Abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, Error(code, msg))
}

// Fail 业务错误按 Code 映射状态码；其它错误记日志后统一 500，不暴露细节
func Fail(c *gin.Context, l *zap.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		c.AbortWithStatusJSON(Status(de.Code), Body{Message: de.Message, Code: string(de.Code), Fields: de.Fields})
		return
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		Abort(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "request body too large")
		return
	}
	if l != nil {
		l.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	Abort(c, http.StatusInternalServerError, CodeInternal, "internal server error")
}
