package repo

import (
	"context"
	"slices"
	"sync"

	"studybuddy/internal/domain"
)

// NewMemory 进程内存储；每次调用都是独立实例，不共享全局状态
func NewMemory() Set {
	return Set{
		Users: &MemUsers{t: newTable(
			func(u *domain.User) *string { return &u.ID },
			func(u domain.User) string { return u.Email },
			func(u domain.User) domain.User { return u },
		)},
		Rooms: &MemRooms{t: newTable(
			func(r *domain.Room) *string { return &r.ID },
			func(r domain.Room) string { return r.Name },
			func(r domain.Room) domain.Room { r.Equipment = slices.Clone(r.Equipment); return r },
		)},
		Sessions: &MemSessions{t: newTable(
			func(s *domain.Session) *string { return &s.ID },
			func(s domain.Session) string { return s.Location + "\x00" + s.StartTime.UTC().String() },
			func(s domain.Session) domain.Session { s.Participants = slices.Clone(s.Participants); return s },
		)},
		Reservations: &MemReservations{t: newTable(
			func(r *domain.Reservation) *string { return &r.ID },
			nil,
			func(r domain.Reservation) domain.Reservation { return r },
		)},
	}
}

// table 泛型内存表：按插入顺序列出，可选唯一键
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
	id    func(*T) *string
	uniq  func(T) string
	clone func(T) T
}

func newTable[T any](id func(*T) *string, uniq func(T) string, clone func(T) T) *table[T] {
	return &table[T]{rows: make(map[string]T), id: id, uniq: uniq, clone: clone}
}

func (t *table[T]) all(match func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		v := t.rows[id]
		if match == nil || match(v) {
			out = append(out, t.clone(v))
		}
	}
	return out
}

func (t *table[T]) get(id string) *T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		return nil
	}
	c := t.clone(v)
	return &c
}

func (t *table[T]) first(match func(T) bool) *T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		if v := t.rows[id]; match(v) {
			c := t.clone(v)
			return &c
		}
	}
	return nil
}

// taken 调用方需持锁
func (t *table[T]) taken(v T, self string) bool {
	if t.uniq == nil {
		return false
	}
	key := t.uniq(v)
	for id, o := range t.rows {
		if id != self && t.uniq(o) == key {
			return true
		}
	}
	return false
}

func (t *table[T]) insert(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idp := t.id(v)
	if *idp == "" {
		*idp = NewID()
	}
	if _, ok := t.rows[*idp]; ok || t.taken(*v, *idp) {
		return domain.ErrDuplicateKey
	}
	t.rows[*idp] = t.clone(*v)
	t.order = append(t.order, *idp)
	return nil
}

func (t *table[T]) update(id string, v T) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return nil, nil
	}
	*t.id(&v) = id
	if t.taken(v, id) {
		return nil, domain.ErrDuplicateKey
	}
	t.rows[id] = t.clone(v)
	c := t.clone(v)
	return &c, nil
}

func (t *table[T]) delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
	return true
}

type MemUsers struct{ t *table[domain.User] }

func (m *MemUsers) FindAll(_ context.Context, f domain.UserFilter) ([]domain.User, error) {
	return m.t.all(func(u domain.User) bool { return f.Role == "" || u.Role == f.Role }), nil
}
func (m *MemUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	return m.t.get(id), nil
}
func (m *MemUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.t.first(func(u domain.User) bool { return u.Email == email }), nil
}
func (m *MemUsers) Insert(_ context.Context, u *domain.User) error { return m.t.insert(u) }
func (m *MemUsers) UpdateByID(_ context.Context, id string, u domain.User) (*domain.User, error) {
	return m.t.update(id, u)
}
func (m *MemUsers) DeleteByID(_ context.Context, id string) (bool, error) { return m.t.delete(id), nil }

type MemRooms struct{ t *table[domain.Room] }

func (m *MemRooms) FindAll(_ context.Context, f domain.RoomFilter) ([]domain.Room, error) {
	return m.t.all(f.Match), nil
}
func (m *MemRooms) FindByID(_ context.Context, id string) (*domain.Room, error) {
	return m.t.get(id), nil
}
func (m *MemRooms) FindByName(_ context.Context, name string) (*domain.Room, error) {
	return m.t.first(func(r domain.Room) bool { return r.Name == name }), nil
}
func (m *MemRooms) Insert(_ context.Context, r *domain.Room) error { return m.t.insert(r) }
func (m *MemRooms) UpdateByID(_ context.Context, id string, r domain.Room) (*domain.Room, error) {
	return m.t.update(id, r)
}
func (m *MemRooms) DeleteByID(_ context.Context, id string) (bool, error) { return m.t.delete(id), nil }

type MemSessions struct{ t *table[domain.Session] }

func (m *MemSessions) FindAll(_ context.Context, f domain.SessionFilter) ([]domain.Session, error) {
	return m.t.all(f.Match), nil
}
func (m *MemSessions) FindByID(_ context.Context, id string) (*domain.Session, error) {
	return m.t.get(id), nil
}
func (m *MemSessions) Insert(_ context.Context, s *domain.Session) error { return m.t.insert(s) }
func (m *MemSessions) UpdateByID(_ context.Context, id string, s domain.Session) (*domain.Session, error) {
	return m.t.update(id, s)
}
func (m *MemSessions) DeleteByID(_ context.Context, id string) (bool, error) {
	return m.t.delete(id), nil
}

type MemReservations struct{ t *table[domain.Reservation] }

func (m *MemReservations) FindAll(_ context.Context, f domain.ReservationFilter) ([]domain.Reservation, error) {
	return m.t.all(f.Match), nil
}
func (m *MemReservations) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	return m.t.get(id), nil
}
func (m *MemReservations) Insert(_ context.Context, r *domain.Reservation) error {
	return m.t.insert(r)
}
func (m *MemReservations) UpdateByID(_ context.Context, id string, r domain.Reservation) (*domain.Reservation, error) {
	return m.t.update(id, r)
}
func (m *MemReservations) DeleteByID(_ context.Context, id string) (bool, error) {
	return m.t.delete(id), nil
}
