package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"studybuddy/internal/domain"
	"studybuddy/internal/feature/reservation"
	"studybuddy/internal/feature/room"
	"studybuddy/internal/feature/session"
	"studybuddy/internal/feature/user"
)

// Models 需要 AutoMigrate 的全部模型
func Models() []any {
	return []any{&user.UserModel{}, &room.RoomModel{}, &session.SessionModel{}, &reservation.ReservationModel{}}
}

func NewGorm(db *gorm.DB) Set {
	return Set{
		Users:        &UserRepo{db: db},
		Rooms:        &RoomRepo{db: db},
		Sessions:     &SessionRepo{db: db},
		Reservations: &ReservationRepo{db: db},
	}
}

func translate(err error) error {
	if err != nil && isDupKey(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

// first 未找到返回 (nil, nil)
func first[M any](db *gorm.DB, query string, args ...any) (*M, error) {
	var m M
	err := db.Where(query, args...).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// replace 整行覆盖（Select("*") 才会写入零值字段）；未命中返回 false
func replace[M any](db *gorm.DB, id string, m *M) (bool, error) {
	res := db.Model(new(M)).Where("id = ?", id).Select("*").Updates(m)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func remove[M any](db *gorm.DB, id string) (bool, error) {
	res := db.Where("id = ?", id).Delete(new(M))
	return res.RowsAffected > 0, res.Error
}

// ---------- users ----------

type UserRepo struct{ db *gorm.DB }

func (r *UserRepo) FindAll(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Model(&user.UserModel{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	var ms []user.UserModel
	if err := q.Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return userOut(first[user.UserModel](r.db.WithContext(ctx), "id = ?", id))
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return userOut(first[user.UserModel](r.db.WithContext(ctx), "email = ?", email))
}

func (r *UserRepo) Insert(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	m := user.FromDomain(*u)
	return translate(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *UserRepo) UpdateByID(ctx context.Context, id string, u domain.User) (*domain.User, error) {
	u.ID = id
	m := user.FromDomain(u)
	ok, err := replace(r.db.WithContext(ctx), id, &m)
	if err != nil || !ok {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return remove[user.UserModel](r.db.WithContext(ctx), id)
}

func userOut(m *user.UserModel, err error) (*domain.User, error) {
	if m == nil || err != nil {
		return nil, err
	}
	u := m.ToDomain()
	return &u, nil
}

// ---------- rooms ----------

type RoomRepo struct{ db *gorm.DB }

func (r *RoomRepo) FindAll(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error) {
	q := r.db.WithContext(ctx).Model(&room.RoomModel{})
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}
	if f.MinCapacity != nil {
		q = q.Where("capacity >= ?", *f.MinCapacity)
	}
	var ms []room.RoomModel
	if err := q.Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *RoomRepo) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	return roomOut(first[room.RoomModel](r.db.WithContext(ctx), "id = ?", id))
}

func (r *RoomRepo) FindByName(ctx context.Context, name string) (*domain.Room, error) {
	return roomOut(first[room.RoomModel](r.db.WithContext(ctx), "name = ?", name))
}

func (r *RoomRepo) Insert(ctx context.Context, rm *domain.Room) error {
	if rm.ID == "" {
		rm.ID = NewID()
	}
	m := room.FromDomain(*rm)
	return translate(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *RoomRepo) UpdateByID(ctx context.Context, id string, rm domain.Room) (*domain.Room, error) {
	rm.ID = id
	m := room.FromDomain(rm)
	ok, err := replace(r.db.WithContext(ctx), id, &m)
	if err != nil || !ok {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RoomRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return remove[room.RoomModel](r.db.WithContext(ctx), id)
}

func roomOut(m *room.RoomModel, err error) (*domain.Room, error) {
	if m == nil || err != nil {
		return nil, err
	}
	d := m.ToDomain()
	return &d, nil
}

// ---------- sessions ----------

type SessionRepo struct{ db *gorm.DB }

func (r *SessionRepo) FindAll(ctx context.Context, f domain.SessionFilter) ([]domain.Session, error) {
	q := r.db.WithContext(ctx).Model(&session.SessionModel{})
	if f.Subject != "" {
		q = q.Where("LOWER(subject) LIKE ?", "%"+strings.ToLower(f.Subject)+"%")
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.MinCapacity != nil {
		q = q.Where("capacity >= ?", *f.MinCapacity)
	}
	if f.Public != nil {
		q = q.Where("public = ?", *f.Public)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.StartTime != nil {
		q = q.Where("start_time = ?", f.StartTime.UTC())
	}
	var ms []session.SessionModel
	if err := q.Order("start_time ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *SessionRepo) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	m, err := first[session.SessionModel](r.db.WithContext(ctx), "id = ?", id)
	if m == nil || err != nil {
		return nil, err
	}
	s := m.ToDomain()
	return &s, nil
}

func (r *SessionRepo) Insert(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	m := session.FromDomain(*s)
	return translate(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *SessionRepo) UpdateByID(ctx context.Context, id string, s domain.Session) (*domain.Session, error) {
	s.ID = id
	m := session.FromDomain(s)
	ok, err := replace(r.db.WithContext(ctx), id, &m)
	if err != nil || !ok {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *SessionRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return remove[session.SessionModel](r.db.WithContext(ctx), id)
}

// ---------- reservations ----------

type ReservationRepo struct{ db *gorm.DB }

func (r *ReservationRepo) FindAll(ctx context.Context, f domain.ReservationFilter) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&reservation.ReservationModel{})
	if f.RoomID != "" {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.SessionID != "" {
		q = q.Where("session_id = ?", f.SessionID)
	}
	if f.User != "" {
		q = q.Where("user_id = ?", f.User)
	}
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	var ms []reservation.ReservationModel
	if err := q.Order("date ASC, start_time ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *ReservationRepo) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	m, err := first[reservation.ReservationModel](r.db.WithContext(ctx), "id = ?", id)
	if m == nil || err != nil {
		return nil, err
	}
	d := m.ToDomain()
	return &d, nil
}

func (r *ReservationRepo) Insert(ctx context.Context, res *domain.Reservation) error {
	if res.ID == "" {
		res.ID = NewID()
	}
	m := reservation.FromDomain(*res)
	return translate(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *ReservationRepo) UpdateByID(ctx context.Context, id string, res domain.Reservation) (*domain.Reservation, error) {
	res.ID = id
	m := reservation.FromDomain(res)
	ok, err := replace(r.db.WithContext(ctx), id, &m)
	if err != nil || !ok {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ReservationRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return remove[reservation.ReservationModel](r.db.WithContext(ctx), id)
}
