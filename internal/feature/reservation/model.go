package reservation

import (
	"time"

	"studybuddy/internal/domain"
)

type ReservationModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	RoomID    string    `gorm:"size:36;not null;index:idx_reservation_room_date,priority:1" bson:"roomId"`
	User      string    `gorm:"column:user_id;size:191;not null;index" bson:"user"`
	SessionID *string   `gorm:"size:36;index" bson:"sessionId,omitempty"`
	Date      string    `gorm:"size:10;not null;index:idx_reservation_room_date,priority:2" bson:"date"`
	StartTime string    `gorm:"size:5;not null" bson:"startTime"`
	EndTime   string    `gorm:"size:5;not null" bson:"endTime"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (ReservationModel) TableName() string { return "reservations" }

func FromDomain(r domain.Reservation) ReservationModel {
	return ReservationModel{
		ID: r.ID, RoomID: r.RoomID, User: r.User, SessionID: r.SessionID,
		Date: r.Date, StartTime: r.StartTime, EndTime: r.EndTime,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (m ReservationModel) ToDomain() domain.Reservation {
	return domain.Reservation{
		ID: m.ID, RoomID: m.RoomID, User: m.User, SessionID: m.SessionID,
		Date: m.Date, StartTime: m.StartTime, EndTime: m.EndTime,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}
