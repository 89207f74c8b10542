package room

import (
	"time"

	"studybuddy/internal/domain"
)

type RoomModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name      string    `gorm:"uniqueIndex;size:191;not null" bson:"name"`
	Capacity  int       `gorm:"not null" bson:"capacity"`
	Equipment []string  `gorm:"serializer:json;type:text" bson:"equipment"`
	Available bool      `gorm:"not null" bson:"available"` // 不设 default：false 也要写入
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (RoomModel) TableName() string { return "study_rooms" }

func FromDomain(r domain.Room) RoomModel {
	return RoomModel{
		ID: r.ID, Name: r.Name, Capacity: r.Capacity, Equipment: r.Equipment,
		Available: r.Available, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (m RoomModel) ToDomain() domain.Room {
	eq := m.Equipment
	if eq == nil {
		eq = []string{}
	}
	return domain.Room{
		ID: m.ID, Name: m.Name, Capacity: m.Capacity, Equipment: eq,
		Available: m.Available, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}
