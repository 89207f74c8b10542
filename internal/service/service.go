// Package service 实体服务：校验 → 引用完整性 → 冲突检测 → 持久化
package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"studybuddy/internal/core/events"
	"studybuddy/internal/core/lock"
	"studybuddy/internal/domain"
)

var domainFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "studybuddy_domain_failures_total", Help: "Domain failures by operation and code"},
	[]string{"op", "code"},
)

func init() { prometheus.MustRegister(domainFailures) }

// Deps 所有服务共享的依赖；仓储必须显式注入
type Deps struct {
	Users        domain.UserRepository
	Rooms        domain.RoomRepository
	Sessions     domain.SessionRepository
	Reservations domain.ReservationRepository

	Locker      lock.Locker
	Events      events.Publisher
	Log         *zap.Logger
	Now         func() time.Time
	MeetingLink func() string
}

func (d Deps) withDefaults() Deps {
	if d.Locker == nil {
		d.Locker = lock.NewLocal()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MeetingLink == nil {
		d.MeetingLink = MeetingLinkGenerator("")
	}
	return d
}

// MeetingLinkGenerator 生成 <base>/<10 位数字> 形式的会议链接
func MeetingLinkGenerator(base string) func() string {
	if base == "" {
		base = "https://zoom.us/j"
	}
	base = strings.TrimRight(base, "/")
	return func() string {
		return fmt.Sprintf("%s/%010d", base, rand.Int64N(1e10))
	}
}

// Services 四个实体服务的集合
type Services struct {
	Users        *UserService
	Rooms        *RoomService
	Sessions     *SessionService
	Reservations *ReservationService
}

func New(d Deps) *Services {
	d = d.withDefaults()
	rules := NewRules()
	return &Services{
		Users:        &UserService{base: base{d: d, rules: rules}},
		Rooms:        &RoomService{base: base{d: d, rules: rules}},
		Sessions:     &SessionService{base: base{d: d, rules: rules}},
		Reservations: &ReservationService{base: base{d: d, rules: rules}},
	}
}

type base struct {
	d     Deps
	rules *Rules
}

// observe 统计并记录失败；业务失败 debug，基础设施失败 error
func (b base) observe(op string, err error) error {
	if err == nil {
		return nil
	}
	if code := domain.CodeOf(err); code != "" {
		domainFailures.WithLabelValues(op, string(code)).Inc()
		b.d.Log.Debug("rejected", zap.String("op", op), zap.String("code", string(code)), zap.String("reason", err.Error()))
		return err
	}
	b.d.Log.Error("operation failed", zap.String("op", op), zap.Error(err))
	return err
}

// publish 写入已成功，事件失败只记日志
func (b base) publish(ctx context.Context, e events.Event) {
	if err := b.d.Events.Publish(ctx, e); err != nil {
		b.d.Log.Warn("publish event failed", zap.String("type", e.Type), zap.String("id", e.ID), zap.Error(err))
	}
}

func (b base) now() time.Time { return b.d.Now() }
