// Package events 领域事件发布（预约/会话变更通知下游）
package events

import (
	"context"
	"sync"
	"time"
)

const (
	RoomCreated         = "room.created"
	RoomUpdated         = "room.updated"
	RoomDeleted         = "room.deleted"
	SessionCreated      = "session.created"
	SessionUpdated      = "session.updated"
	SessionDeleted      = "session.deleted"
	SessionJoined       = "session.joined"
	SessionJoinRequest  = "session.join_requested"
	SessionLeft         = "session.left"
	ReservationCreated  = "reservation.created"
	ReservationUpdated  = "reservation.updated"
	ReservationCanceled = "reservation.canceled"
	UserCreated         = "user.created"
	UserUpdated         = "user.updated"
	UserDeleted         = "user.deleted"
)

type Event struct {
	Type string    `json:"type"`
	ID   string    `json:"id"` // 聚合 ID
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

func New(typ, id string, data any) Event {
	return Event{Type: typ, ID: id, At: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop 未配置 broker 时使用
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder 收集事件，测试用
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
