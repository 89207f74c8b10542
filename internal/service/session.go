package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"studybuddy/internal/core/events"
	"studybuddy/internal/core/lock"
	"studybuddy/internal/domain"
	"studybuddy/internal/schedule"
)

type SessionService struct{ base }

func sessionKey(id string) string { return "session:" + id }

// sessionSlotKey (location, startTime) 去重的作用域
func sessionSlotKey(location string, start time.Time) string {
	return "session-slot:" + location + "@" + start.UTC().Format(time.RFC3339)
}

var errSessionSlotTaken = domain.Fail(domain.CodeTimeConflict, "a session already exists at this location and time")

func (s *SessionService) List(ctx context.Context, f domain.SessionFilter) ([]domain.Session, error) {
	out, err := s.d.Sessions.FindAll(ctx, f)
	if err != nil {
		return nil, s.observe("session.list", fmt.Errorf("list sessions: %w", err))
	}
	slices.SortStableFunc(out, func(a, b domain.Session) int { return a.StartTime.Compare(b.StartTime) })
	return out, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.find(ctx, id)
	return sess, s.observe("session.get", err)
}

func (s *SessionService) find(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.d.Sessions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if sess == nil {
		return nil, domain.Fail(domain.CodeSessionNotFound, "study session not found")
	}
	return sess, nil
}

func parseStart(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil // 交给 required 规则
	}
	t, err := schedule.ParseInstant(v)
	if err != nil {
		return time.Time{}, domain.Invalid("invalid study session", map[string]string{
			"startTime": "must be a valid date/time",
		})
	}
	return t, nil
}

// syncMeetingLink 链接存在当且仅当 type = virtual
func (s *SessionService) syncMeetingLink(sess *domain.Session) {
	if sess.Type != domain.SessionVirtual {
		sess.MeetingLink = nil
		return
	}
	if sess.MeetingLink == nil {
		link := s.d.MeetingLink()
		sess.MeetingLink = &link
	}
}

// slotTaken 同一地点同一开始时刻已有其它会话
func (s *SessionService) slotTaken(ctx context.Context, sess domain.Session) (bool, error) {
	start := sess.StartTime
	same, err := s.d.Sessions.FindAll(ctx, domain.SessionFilter{Location: sess.Location, StartTime: &start})
	if err != nil {
		return false, fmt.Errorf("find sessions at slot: %w", err)
	}
	for _, o := range same {
		if o.ID != sess.ID && schedule.SameInstant(o.StartTime, sess.StartTime) {
			return true, nil
		}
	}
	return false, nil
}

func (s *SessionService) Create(ctx context.Context, in domain.SessionInput) (out *domain.Session, err error) {
	defer func() { err = s.observe("session.create", err) }()

	start, err := parseStart(in.StartTime)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := domain.Session{
		Name:      in.Name,
		Subject:   in.Subject,
		StartTime: start,
		Location:  in.Location,
		Type:      domain.SessionType(in.Type),
		Capacity:  in.Capacity,
		OwnerID:   in.OwnerID,
		Public:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.OwnerID != "" {
		sess.Participants = []string{in.OwnerID}
	}
	if in.Public != nil {
		sess.Public = *in.Public
	}
	if err := s.rules.Session(sess); err != nil {
		return nil, err
	}
	s.syncMeetingLink(&sess)

	err = lock.Do(ctx, s.d.Locker, sessionSlotKey(sess.Location, sess.StartTime), func() error {
		taken, err := s.slotTaken(ctx, sess)
		if err != nil {
			return err
		}
		if taken {
			return errSessionSlotTaken
		}
		if err := s.d.Sessions.Insert(ctx, &sess); err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				return errSessionSlotTaken
			}
			return fmt.Errorf("insert session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.SessionCreated, sess.ID, sess))
	return &sess, nil
}

func (s *SessionService) merge(cur domain.Session, p domain.SessionPatch) (domain.Session, error) {
	m := cur
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Subject != nil {
		m.Subject = *p.Subject
	}
	if p.StartTime != nil {
		t, err := parseStart(*p.StartTime)
		if err != nil {
			return m, err
		}
		m.StartTime = t
	}
	if p.Location != nil {
		m.Location = *p.Location
	}
	if p.Type != nil {
		m.Type = domain.SessionType(*p.Type)
	}
	if p.Capacity != nil {
		m.Capacity = *p.Capacity
	}
	if p.Public != nil {
		m.Public = *p.Public
	}
	if err := s.rules.Session(m); err != nil {
		return m, err
	}
	s.syncMeetingLink(&m)
	m.UpdatedAt = s.now()
	return m, nil
}

// slotKeys 更新需要持有的锁：session:<id>，换位时加上目标 slot
func slotKeys(id string, from, to domain.Session) []string {
	keys := []string{sessionKey(id)}
	if to.Location != from.Location || !to.StartTime.Equal(from.StartTime) {
		keys = append(keys, sessionSlotKey(to.Location, to.StartTime))
	}
	return keys
}

// Update 在 session:<id> 锁内重读并合并，避免覆盖并发 join/leave 的结果
func (s *SessionService) Update(ctx context.Context, id string, p domain.SessionPatch) (out *domain.Session, err error) {
	defer func() { err = s.observe("session.update", err) }()

	err = lock.DoScoped(ctx, s.d.Locker, func() ([]string, error) {
		pre, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		preview, err := s.merge(*pre, p)
		if err != nil {
			return nil, err
		}
		return slotKeys(id, *pre, preview), nil
	}, func(held []string) error {
		cur, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		merged, err := s.merge(*cur, p)
		if err != nil {
			return err
		}
		need := slotKeys(id, *cur, merged)
		if !lock.Covers(held, need) {
			return lock.ErrScopeChanged
		}
		if len(need) > 1 {
			taken, err := s.slotTaken(ctx, merged)
			if err != nil {
				return err
			}
			if taken {
				return errSessionSlotTaken
			}
		}
		updated, err := s.d.Sessions.UpdateByID(ctx, id, merged)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				return errSessionSlotTaken
			}
			return fmt.Errorf("update session: %w", err)
		}
		if updated == nil {
			return domain.Fail(domain.CodeSessionNotFound, "study session not found")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.SessionUpdated, id, out))
	return out, nil
}

func (s *SessionService) Delete(ctx context.Context, id string) (err error) {
	defer func() { err = s.observe("session.delete", err) }()

	err = lock.Do(ctx, s.d.Locker, sessionKey(id), func() error {
		if _, err := s.find(ctx, id); err != nil {
			return err
		}
		deps, err := s.d.Reservations.FindAll(ctx, domain.ReservationFilter{SessionID: id})
		if err != nil {
			return fmt.Errorf("list session reservations: %w", err)
		}
		if len(deps) > 0 {
			return domain.Fail(domain.CodeSessionHasReservations, "cannot delete study session with existing reservations")
		}
		ok, err := s.d.Sessions.DeleteByID(ctx, id)
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if !ok {
			return domain.Fail(domain.CodeSessionNotFound, "study session not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.New(events.SessionDeleted, id, nil))
	return nil
}

func requireUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.Invalid("userId is required", map[string]string{"userId": "is required"})
	}
	return nil
}

// Join 已是参与者 → ALREADY_PARTICIPANT；满员 → CAPACITY_FULL；
// 私有会话返回 JoinPending 且不加入
func (s *SessionService) Join(ctx context.Context, id, userID string) (out *domain.Session, res domain.JoinResult, err error) {
	defer func() { err = s.observe("session.join", err) }()

	if err := requireUserID(userID); err != nil {
		return nil, "", err
	}
	err = lock.Do(ctx, s.d.Locker, sessionKey(id), func() error {
		sess, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if sess.HasParticipant(userID) {
			return domain.Fail(domain.CodeAlreadyParticipant, "user is already a participant")
		}
		if sess.Full() {
			return domain.Fail(domain.CodeCapacityFull, "cannot join session: maximum capacity reached")
		}
		if !sess.Public {
			out, res = sess, domain.JoinPending
			return nil
		}
		next := *sess
		next.Participants = append(slices.Clone(sess.Participants), userID)
		next.UpdatedAt = s.now()
		updated, err := s.d.Sessions.UpdateByID(ctx, id, next)
		if err != nil {
			return fmt.Errorf("update participants: %w", err)
		}
		if updated == nil {
			return domain.Fail(domain.CodeSessionNotFound, "study session not found")
		}
		out, res = updated, domain.JoinAccepted
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if res == domain.JoinPending {
		s.publish(ctx, events.New(events.SessionJoinRequest, id, map[string]string{"userId": userID, "ownerId": out.OwnerID}))
	} else {
		s.publish(ctx, events.New(events.SessionJoined, id, map[string]string{"userId": userID}))
	}
	return out, res, nil
}

func (s *SessionService) Leave(ctx context.Context, id, userID string) (out *domain.Session, err error) {
	defer func() { err = s.observe("session.leave", err) }()

	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	err = lock.Do(ctx, s.d.Locker, sessionKey(id), func() error {
		sess, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if !sess.HasParticipant(userID) {
			return domain.Fail(domain.CodeNotParticipant, "user is not a participant in this session")
		}
		if userID == sess.OwnerID {
			return domain.Fail(domain.CodeOwnerCannotLeave, "the owner cannot leave their own session")
		}
		next := *sess
		next.Participants = slices.DeleteFunc(slices.Clone(sess.Participants), func(p string) bool { return p == userID })
		next.UpdatedAt = s.now()
		updated, err := s.d.Sessions.UpdateByID(ctx, id, next)
		if err != nil {
			return fmt.Errorf("update participants: %w", err)
		}
		if updated == nil {
			return domain.Fail(domain.CodeSessionNotFound, "study session not found")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.SessionLeft, id, map[string]string{"userId": userID}))
	return out, nil
}
