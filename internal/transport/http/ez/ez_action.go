// Package ez 动作式路由注册：一个 Action 描述绑定方式、处理函数与成功状态码
package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studybuddy/internal/domain"
	resp "studybuddy/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ { return EZ{g: g, log: l} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// StatusCoder 出参可自行决定成功状态码
type StatusCoder interface{ StatusCode() int }

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/study-sessions/:id/join"
	Binder  Binder
	Status  int // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			resp.Fail(c, e.log, bindError(bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, e.log, err)
			return
		}

		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		if sc, ok := any(out).(StatusCoder); ok {
			status = sc.StatusCode()
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// bindError 解码失败统一成 INVALID_INPUT；超限请求体原样交给 resp.Fail 出 413
func bindError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return domain.Invalid("request body is required", nil)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.Invalid("invalid request", map[string]string{
			typeErr.Field: "must be of type " + typeErr.Type.String(),
		})
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return domain.Invalid("malformed JSON body", nil)
	}
	return domain.Invalid(err.Error(), nil)
}
