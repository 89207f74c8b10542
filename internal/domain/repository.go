package domain

import "context"

// 仓储约定：FindByID/FindByXxx 未找到返回 (nil, nil)；
// UpdateByID 未找到返回 (nil, nil)；唯一约束冲突返回 ErrDuplicateKey。

type UserRepository interface {
	FindAll(ctx context.Context, f UserFilter) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, u *User) error
	UpdateByID(ctx context.Context, id string, u User) (*User, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type RoomRepository interface {
	FindAll(ctx context.Context, f RoomFilter) ([]Room, error)
	FindByID(ctx context.Context, id string) (*Room, error)
	FindByName(ctx context.Context, name string) (*Room, error)
	Insert(ctx context.Context, r *Room) error
	UpdateByID(ctx context.Context, id string, r Room) (*Room, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type SessionRepository interface {
	FindAll(ctx context.Context, f SessionFilter) ([]Session, error)
	FindByID(ctx context.Context, id string) (*Session, error)
	Insert(ctx context.Context, s *Session) error
	UpdateByID(ctx context.Context, id string, s Session) (*Session, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type ReservationRepository interface {
	FindAll(ctx context.Context, f ReservationFilter) ([]Reservation, error)
	FindByID(ctx context.Context, id string) (*Reservation, error)
	Insert(ctx context.Context, r *Reservation) error
	UpdateByID(ctx context.Context, id string, r Reservation) (*Reservation, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}
