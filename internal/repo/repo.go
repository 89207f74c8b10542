// Package repo 仓储实现：memory（开发/测试）、gorm（postgres/mysql）、mongo（文档库）
package repo

import (
	"strings"

	"github.com/google/uuid"

	"studybuddy/internal/domain"
)

// Set 一组实体仓储，由 main 按 store.driver 选择实现后注入 service
type Set struct {
	Users        domain.UserRepository
	Rooms        domain.RoomRepository
	Sessions     domain.SessionRepository
	Reservations domain.ReservationRepository
}

func NewID() string { return uuid.NewString() }

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免各驱动翻译差异
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
