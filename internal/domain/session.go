package domain

import (
	"slices"
	"strings"
	"time"
)

type SessionType string

const (
	SessionPresential SessionType = "presential"
	SessionVirtual    SessionType = "virtual"
	SessionExternal   SessionType = "external"
)

type Session struct {
	ID           string      `json:"id"`
	Name         string      `json:"name" validate:"required"`
	Subject      string      `json:"subject" validate:"required"`
	StartTime    time.Time   `json:"startTime" validate:"required"`
	Location     string      `json:"location" validate:"required"`
	Type         SessionType `json:"type" validate:"required,sessiontype"`
	Capacity     int         `json:"capacity" validate:"gt=0"`
	Participants []string    `json:"participants" validate:"min=1,dive,required"`
	OwnerID      string      `json:"ownerId" validate:"required"`
	Public       bool        `json:"public"`
	MeetingLink  *string     `json:"meetingLink"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (s Session) HasParticipant(userID string) bool {
	return slices.Contains(s.Participants, userID)
}

func (s Session) Full() bool { return len(s.Participants) >= s.Capacity }

// SessionInput startTime 以字符串进入，由 service 解析
type SessionInput struct {
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	StartTime string `json:"startTime"`
	Location  string `json:"location"`
	Type      string `json:"type"`
	Capacity  int    `json:"capacity"`
	OwnerID   string `json:"ownerId"`
	Public    *bool  `json:"public"`
}

// SessionPatch 不包含 ownerId / participants：二者只能通过 join/leave 变更
type SessionPatch struct {
	Name      *string `json:"name"`
	Subject   *string `json:"subject"`
	StartTime *string `json:"startTime"`
	Location  *string `json:"location"`
	Type      *string `json:"type"`
	Capacity  *int    `json:"capacity"`
	Public    *bool   `json:"public"`
}

type SessionFilter struct {
	Subject     string // 不区分大小写的包含匹配
	Type        string
	MinCapacity *int
	Public      *bool
	Location    string
	StartTime   *time.Time
}

func (f SessionFilter) Match(s Session) bool {
	if f.Subject != "" && !strings.Contains(strings.ToLower(s.Subject), strings.ToLower(f.Subject)) {
		return false
	}
	if f.Type != "" && string(s.Type) != f.Type {
		return false
	}
	if f.MinCapacity != nil && s.Capacity < *f.MinCapacity {
		return false
	}
	if f.Public != nil && s.Public != *f.Public {
		return false
	}
	if f.Location != "" && s.Location != f.Location {
		return false
	}
	if f.StartTime != nil && !s.StartTime.Equal(*f.StartTime) {
		return false
	}
	return true
}

// JoinResult join 的两种成功结果
type JoinResult string

const (
	JoinAccepted JoinResult = "joined"
	JoinPending  JoinResult = "pending"
)
