package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"studybuddy/internal/core/events"
	"studybuddy/internal/core/lock"
	"studybuddy/internal/domain"
	"studybuddy/internal/schedule"
)

type ReservationService struct{ base }

func (s *ReservationService) List(ctx context.Context, f domain.ReservationFilter) ([]domain.Reservation, error) {
	out, err := s.d.Reservations.FindAll(ctx, f)
	if err != nil {
		return nil, s.observe("reservation.list", fmt.Errorf("list reservations: %w", err))
	}
	return out, nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	r, err := s.find(ctx, id)
	return r, s.observe("reservation.get", err)
}

func (s *ReservationService) find(ctx context.Context, id string) (*domain.Reservation, error) {
	r, err := s.d.Reservations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if r == nil {
		return nil, domain.Fail(domain.CodeReservationNotFound, "reservation not found")
	}
	return r, nil
}

// lockKeys 预约写入与房间删除、会话删除互斥
func lockKeys(rs ...domain.Reservation) []string {
	var keys []string
	for _, r := range rs {
		keys = append(keys, roomKey(r.RoomID))
		if r.SessionID != nil {
			keys = append(keys, sessionKey(*r.SessionID))
		}
	}
	return keys
}

// checkRefs 房间必须存在（INVALID_ROOM）；sessionId 若给出也必须存在
func (s *ReservationService) checkRefs(ctx context.Context, r domain.Reservation) error {
	room, err := s.d.Rooms.FindByID(ctx, r.RoomID)
	if err != nil {
		return fmt.Errorf("find room: %w", err)
	}
	if room == nil {
		return domain.Fail(domain.CodeInvalidRoom, "referenced study room does not exist")
	}
	if r.SessionID != nil {
		sess, err := s.d.Sessions.FindByID(ctx, *r.SessionID)
		if err != nil {
			return fmt.Errorf("find session: %w", err)
		}
		if sess == nil {
			return domain.Fail(domain.CodeSessionNotFound, "referenced study session does not exist")
		}
	}
	return nil
}

// checkConflict 同一房间同一天的半开区间冲突；r.ID 非空时排除自身
func (s *ReservationService) checkConflict(ctx context.Context, r domain.Reservation) error {
	candidate, err := schedule.SlotOf(r)
	if err != nil {
		return err
	}
	existing, err := s.d.Reservations.FindAll(ctx, domain.ReservationFilter{RoomID: r.RoomID, Date: r.Date})
	if err != nil {
		return fmt.Errorf("list room reservations: %w", err)
	}
	slots := make([]schedule.Slot, 0, len(existing))
	for _, e := range existing {
		sl, err := schedule.SlotOf(e)
		if err != nil {
			// 历史脏数据无法比较，跳过并记录
			s.d.Log.Warn("skip malformed reservation", zap.String("id", e.ID), zap.Error(err))
			continue
		}
		slots = append(slots, sl)
	}
	if hit, ok := schedule.FirstConflict(slots, candidate); ok {
		return domain.Fail(domain.CodeTimeConflict,
			fmt.Sprintf("time slot already booked for this room (%s-%s)", hit.Start, hit.End))
	}
	return nil
}

func (s *ReservationService) Create(ctx context.Context, in domain.ReservationInput) (out *domain.Reservation, err error) {
	defer func() { err = s.observe("reservation.create", err) }()

	now := s.now()
	r := domain.Reservation{
		RoomID:    in.RoomID,
		User:      in.User,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.SessionID != nil && *in.SessionID != "" {
		r.SessionID = in.SessionID
	}
	if err := s.rules.Reservation(r, now); err != nil {
		return nil, err
	}

	err = lock.DoAll(ctx, s.d.Locker, lockKeys(r), func() error {
		if err := s.checkRefs(ctx, r); err != nil {
			return err
		}
		if err := s.checkConflict(ctx, r); err != nil {
			return err
		}
		if err := s.d.Reservations.Insert(ctx, &r); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.ReservationCreated, r.ID, r))
	return &r, nil
}

// Update 重新校验合并结果，并用与创建相同的谓词检测冲突（排除自身）。
// 锁作用域来自锁外预读；锁内重读后若房间已被并发改动，按新作用域重试
func (s *ReservationService) Update(ctx context.Context, id string, p domain.ReservationPatch) (out *domain.Reservation, err error) {
	defer func() { err = s.observe("reservation.update", err) }()

	now := s.now()
	err = lock.DoScoped(ctx, s.d.Locker, func() ([]string, error) {
		pre, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		preview := p.Apply(*pre)
		if err := s.rules.Reservation(preview, now); err != nil {
			return nil, err
		}
		return lockKeys(*pre, preview), nil
	}, func(held []string) error {
		cur, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		merged := p.Apply(*cur)
		if !lock.Covers(held, lockKeys(*cur, merged)) {
			return lock.ErrScopeChanged
		}
		merged.ID = cur.ID
		merged.CreatedAt = cur.CreatedAt
		merged.UpdatedAt = now
		if err := s.rules.Reservation(merged, now); err != nil {
			return err
		}
		if err := s.checkRefs(ctx, merged); err != nil {
			return err
		}
		if err := s.checkConflict(ctx, merged); err != nil {
			return err
		}
		updated, err := s.d.Reservations.UpdateByID(ctx, id, merged)
		if err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		if updated == nil {
			return domain.Fail(domain.CodeReservationNotFound, "reservation not found")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.ReservationUpdated, id, out))
	return out, nil
}

func (s *ReservationService) Delete(ctx context.Context, id string) (err error) {
	defer func() { err = s.observe("reservation.delete", err) }()

	r, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.d.Reservations.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if !ok {
		return domain.Fail(domain.CodeReservationNotFound, "reservation not found")
	}
	s.publish(ctx, events.New(events.ReservationCanceled, id, r))
	return nil
}
