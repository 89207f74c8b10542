package domain

import (
	"errors"
	"fmt"
)

// Code 业务错误码（封闭集合），transport 层按表映射 HTTP 状态
type Code string

const (
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeInvalidTime         Code = "INVALID_TIME"
	CodeOutsideOpeningHours Code = "OUTSIDE_OPENING_HOURS"
	CodeInvalidDate         Code = "INVALID_DATE"
	CodeInvalidRoom         Code = "INVALID_ROOM"
	CodeTimeConflict        Code = "TIME_CONFLICT"

	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeRoomNotFound        Code = "ROOM_NOT_FOUND"
	CodeSessionNotFound     Code = "SESSION_NOT_FOUND"
	CodeReservationNotFound Code = "RESERVATION_NOT_FOUND"

	CodeEmailConflict Code = "EMAIL_CONFLICT"
	CodeDuplicateRoom Code = "DUPLICATE_ROOM"

	CodeRoomHasReservations    Code = "ROOM_HAS_RESERVATIONS"
	CodeSessionHasReservations Code = "SESSION_HAS_RESERVATIONS"

	CodeCapacityFull       Code = "CAPACITY_FULL"
	CodeAlreadyParticipant Code = "ALREADY_PARTICIPANT"
	CodeNotParticipant     Code = "NOT_PARTICIPANT"
	CodeOwnerCannotLeave   Code = "OWNER_CANNOT_LEAVE"
)

// Error 可预期的业务失败，携带机器可读的 Code
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string // 字段级原因（仅 INVALID_INPUT）
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is 让 errors.Is(err, &Error{Code: X}) 按 Code 匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func Fail(code Code, msg string) error { return &Error{Code: code, Message: msg} }

func Invalid(msg string, fields map[string]string) error {
	return &Error{Code: CodeInvalidInput, Message: msg, Fields: fields}
}

// CodeOf 取出业务错误码；非业务错误返回 ""
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ErrDuplicateKey 仓储层唯一约束冲突，service 负责翻译成具体业务码
var ErrDuplicateKey = errors.New("duplicate key")
