package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"studybuddy/internal/core/config"
	"studybuddy/internal/core/server"
	"studybuddy/internal/service"
	"studybuddy/internal/transport/http/handler"
)

// NewAdminEngine 只应监听内网地址：/health、/metrics、/admin/v1/stats
func NewAdminEngine(l *zap.Logger, svcs *service.Services, lim config.Limits) *gin.Engine {
	r := server.NewRouter(l)
	r.Use(guards(l, lim, false)...)
	r.NoRoute(noRoute)

	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var reg Registry
	reg.Register(handler.NewAdminHandler(svcs, l))
	reg.MountAllAdmin(r.Group("/admin/v1"))
	return r
}
