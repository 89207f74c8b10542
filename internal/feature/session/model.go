package session

import (
	"time"

	"studybuddy/internal/domain"
)

// SessionModel (location, start_time) 唯一，兜底并发创建
type SessionModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name         string    `gorm:"size:191;not null" bson:"name"`
	Subject      string    `gorm:"size:191;not null;index" bson:"subject"`
	StartTime    time.Time `gorm:"not null;uniqueIndex:idx_session_slot,priority:2" bson:"startTime"`
	Location     string    `gorm:"size:191;not null;uniqueIndex:idx_session_slot,priority:1" bson:"location"`
	Type         string    `gorm:"size:16;not null" bson:"type"`
	Capacity     int       `gorm:"not null" bson:"capacity"`
	Participants []string  `gorm:"serializer:json;type:text" bson:"participants"`
	OwnerID      string    `gorm:"size:191;not null;index" bson:"ownerId"`
	Public       bool      `gorm:"not null" bson:"public"`
	MeetingLink  *string   `gorm:"size:255" bson:"meetingLink"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (SessionModel) TableName() string { return "study_sessions" }

func FromDomain(s domain.Session) SessionModel {
	return SessionModel{
		ID: s.ID, Name: s.Name, Subject: s.Subject, StartTime: s.StartTime.UTC(),
		Location: s.Location, Type: string(s.Type), Capacity: s.Capacity,
		Participants: s.Participants, OwnerID: s.OwnerID, Public: s.Public,
		MeetingLink: s.MeetingLink, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func (m SessionModel) ToDomain() domain.Session {
	return domain.Session{
		ID: m.ID, Name: m.Name, Subject: m.Subject, StartTime: m.StartTime.UTC(),
		Location: m.Location, Type: domain.SessionType(m.Type), Capacity: m.Capacity,
		Participants: m.Participants, OwnerID: m.OwnerID, Public: m.Public,
		MeetingLink: m.MeetingLink, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}
