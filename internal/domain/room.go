package domain

import "time"

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Capacity  int       `json:"capacity" validate:"gt=0"`
	Equipment []string  `json:"equipment" validate:"required"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RoomInput struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
	Available *bool    `json:"available"`
}

type RoomPatch struct {
	Name      *string   `json:"name"`
	Capacity  *int      `json:"capacity"`
	Equipment *[]string `json:"equipment"`
	Available *bool     `json:"available"`
}

func (p RoomPatch) Apply(r Room) Room {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}
	if p.Equipment != nil {
		r.Equipment = *p.Equipment
	}
	if p.Available != nil {
		r.Available = *p.Available
	}
	return r
}

type RoomFilter struct {
	Available   *bool
	MinCapacity *int
}

func (f RoomFilter) Match(r Room) bool {
	if f.Available != nil && r.Available != *f.Available {
		return false
	}
	if f.MinCapacity != nil && r.Capacity < *f.MinCapacity {
		return false
	}
	return true
}
