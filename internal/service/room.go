package service

import (
	"context"
	"errors"
	"fmt"

	"studybuddy/internal/core/events"
	"studybuddy/internal/core/lock"
	"studybuddy/internal/domain"
)

type RoomService struct{ base }

func roomKey(id string) string       { return "room:" + id }
func roomNameKey(name string) string { return "room-name:" + name }

var errDuplicateRoom = domain.Fail(domain.CodeDuplicateRoom, "study room with this name already exists")

func (s *RoomService) List(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error) {
	rooms, err := s.d.Rooms.FindAll(ctx, f)
	if err != nil {
		return nil, s.observe("room.list", fmt.Errorf("list rooms: %w", err))
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, id string) (*domain.Room, error) {
	r, err := s.find(ctx, id)
	return r, s.observe("room.get", err)
}

func (s *RoomService) find(ctx context.Context, id string) (*domain.Room, error) {
	r, err := s.d.Rooms.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	if r == nil {
		return nil, domain.Fail(domain.CodeRoomNotFound, "study room not found")
	}
	return r, nil
}

func (s *RoomService) Create(ctx context.Context, in domain.RoomInput) (out *domain.Room, err error) {
	defer func() { err = s.observe("room.create", err) }()

	now := s.now()
	room := domain.Room{
		Name:      in.Name,
		Capacity:  in.Capacity,
		Equipment: in.Equipment,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Available != nil {
		room.Available = *in.Available
	}
	if err := s.rules.Room(room); err != nil {
		return nil, err
	}

	err = lock.Do(ctx, s.d.Locker, roomNameKey(room.Name), func() error {
		existing, err := s.d.Rooms.FindByName(ctx, room.Name)
		if err != nil {
			return fmt.Errorf("find room by name: %w", err)
		}
		if existing != nil {
			return errDuplicateRoom
		}
		if err := s.d.Rooms.Insert(ctx, &room); err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				return errDuplicateRoom
			}
			return fmt.Errorf("insert room: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.RoomCreated, room.ID, room))
	return &room, nil
}

// Update 合并后整体重新校验；改名时检查与其它房间冲突
func (s *RoomService) Update(ctx context.Context, id string, p domain.RoomPatch) (out *domain.Room, err error) {
	defer func() { err = s.observe("room.update", err) }()

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := p.Apply(*existing)
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = s.now()
	if merged.Equipment == nil {
		merged.Equipment = []string{}
	}
	if err := s.rules.Room(merged); err != nil {
		return nil, err
	}

	renamed := merged.Name != existing.Name
	key := ""
	if renamed {
		key = roomNameKey(merged.Name)
	}
	err = lock.DoAll(ctx, s.d.Locker, []string{key}, func() error {
		if renamed {
			other, err := s.d.Rooms.FindByName(ctx, merged.Name)
			if err != nil {
				return fmt.Errorf("find room by name: %w", err)
			}
			if other != nil && other.ID != id {
				return errDuplicateRoom
			}
		}
		updated, err := s.d.Rooms.UpdateByID(ctx, id, merged)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				return errDuplicateRoom
			}
			return fmt.Errorf("update room: %w", err)
		}
		if updated == nil {
			return domain.Fail(domain.CodeRoomNotFound, "study room not found")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.RoomUpdated, id, out))
	return out, nil
}

// Delete 仍有预约引用时拒绝删除；与预约创建共用 room:<id> 锁
func (s *RoomService) Delete(ctx context.Context, id string) (err error) {
	defer func() { err = s.observe("room.delete", err) }()

	err = lock.Do(ctx, s.d.Locker, roomKey(id), func() error {
		if _, err := s.find(ctx, id); err != nil {
			return err
		}
		deps, err := s.d.Reservations.FindAll(ctx, domain.ReservationFilter{RoomID: id})
		if err != nil {
			return fmt.Errorf("list room reservations: %w", err)
		}
		if len(deps) > 0 {
			return domain.Fail(domain.CodeRoomHasReservations, "cannot delete study room with existing reservations")
		}
		ok, err := s.d.Rooms.DeleteByID(ctx, id)
		if err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		if !ok {
			return domain.Fail(domain.CodeRoomNotFound, "study room not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.New(events.RoomDeleted, id, nil))
	return nil
}
