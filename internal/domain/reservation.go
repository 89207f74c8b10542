package domain

import "time"

type Reservation struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId" validate:"required"`
	User      string    `json:"user" validate:"required"`
	SessionID *string   `json:"sessionId,omitempty"`
	Date      string    `json:"date" validate:"required,isodate"`
	StartTime string    `json:"startTime" validate:"required,hhmm"`
	EndTime   string    `json:"endTime" validate:"required,hhmm"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ReservationInput struct {
	RoomID    string  `json:"roomId"`
	User      string  `json:"user"`
	SessionID *string `json:"sessionId"`
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

type ReservationPatch struct {
	RoomID    *string `json:"roomId"`
	User      *string `json:"user"`
	SessionID *string `json:"sessionId"`
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
}

func (p ReservationPatch) Apply(r Reservation) Reservation {
	if p.RoomID != nil {
		r.RoomID = *p.RoomID
	}
	if p.User != nil {
		r.User = *p.User
	}
	if p.SessionID != nil {
		if *p.SessionID == "" {
			r.SessionID = nil
		} else {
			r.SessionID = p.SessionID
		}
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.StartTime != nil {
		r.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		r.EndTime = *p.EndTime
	}
	return r
}

type ReservationFilter struct {
	RoomID    string
	SessionID string
	User      string
	Date      string
}

func (f ReservationFilter) Match(r Reservation) bool {
	if f.RoomID != "" && r.RoomID != f.RoomID {
		return false
	}
	if f.SessionID != "" && (r.SessionID == nil || *r.SessionID != f.SessionID) {
		return false
	}
	if f.User != "" && r.User != f.User {
		return false
	}
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	return true
}
