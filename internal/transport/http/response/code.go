package response

import (
	"net/http"
	"strings"

	"studybuddy/internal/domain"
)

// 传输层自身的错误码（domain.Code 之外）
const (
	CodeInternal        = "INTERNAL_ERROR"
	CodeRouteNotFound   = "ROUTE_NOT_FOUND"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeServerBusy      = "SERVER_BUSY"
	CodeBodyTooLarge    = "BODY_TOO_LARGE"
	CodeTimeout         = "TIMEOUT"
)

// Status domain.Code → HTTP 状态码
func Status(code domain.Code) int {
	c := string(code)
	switch {
	case strings.HasSuffix(c, "_NOT_FOUND"):
		return http.StatusNotFound
	case code == domain.CodeEmailConflict,
		code == domain.CodeTimeConflict,
		strings.HasPrefix(c, "DUPLICATE_"):
		return http.StatusConflict
	case code == "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
