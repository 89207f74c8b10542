package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"studybuddy/internal/core/config"
	"studybuddy/internal/core/server"
	"studybuddy/internal/service"
	"studybuddy/internal/transport/http/handler"
	mdw "studybuddy/internal/transport/http/middleware"
	resp "studybuddy/internal/transport/http/response"
)

// guards 入口保护链；各项为 0 表示不启用
func guards(l *zap.Logger, lim config.Limits, perIP bool) []gin.HandlerFunc {
	hs := []gin.HandlerFunc{mdw.RequestID()}
	if lim.RPS > 0 {
		burst := max(lim.Burst, 1)
		if perIP {
			hs = append(hs, mdw.RateLimitPerIP(rate.Limit(lim.RPS), burst))
		} else {
			hs = append(hs, mdw.RateLimit(rate.Limit(lim.RPS), burst))
		}
	}
	if lim.MaxConcurrent > 0 {
		hs = append(hs, mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		hs = append(hs, mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.TimeoutSec > 0 {
		hs = append(hs, mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second))
	}
	return append(hs, mdw.SimpleRecovery(l), mdw.Metrics(), mdw.AccessLog(l))
}

func health(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) }

func noRoute(c *gin.Context) {
	resp.Abort(c, http.StatusNotFound, resp.CodeRouteNotFound, "route not found")
}

func NewAPIEngine(l *zap.Logger, svcs *service.Services, lim config.Limits) *gin.Engine {
	r := server.NewRouter(l)
	r.Use(guards(l, lim, true)...)
	r.NoRoute(noRoute)

	// 健康检查
	r.GET("/health", health)

	var reg Registry
	reg.Register(
		handler.NewUserHandler(svcs.Users, l),
		handler.NewRoomHandler(svcs.Rooms, l),
		handler.NewSessionHandler(svcs.Sessions, l),
		handler.NewReservationHandler(svcs.Reservations, l),
	)
	reg.MountAllAPI(r.Group("/api"))
	return r
}
