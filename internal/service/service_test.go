package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"studybuddy/internal/core/events"
	"studybuddy/internal/core/lock"
	"studybuddy/internal/domain"
	"studybuddy/internal/repo"
)

var fixedNow = time.Date(2030, 5, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svcs   *Services
	events *events.Recorder
	set    repo.Set
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureOn(t, repo.NewMemory(), nil)
}

// newFixtureOn 在给定仓储与锁之上构建服务，便于包装仓储注入并发时序
func newFixtureOn(t *testing.T, set repo.Set, locker lock.Locker) fixture {
	t.Helper()
	rec := &events.Recorder{}
	n := 0
	svcs := New(Deps{
		Users:        set.Users,
		Rooms:        set.Rooms,
		Sessions:     set.Sessions,
		Reservations: set.Reservations,
		Locker:       locker,
		Events:       rec,
		Now:          func() time.Time { return fixedNow },
		MeetingLink: func() string {
			n++
			return fmt.Sprintf("https://meet.test/j/%010d", n)
		},
	})
	return fixture{svcs: svcs, events: rec, set: set}
}

func ptr[T any](v T) *T { return &v }

func wantCode(t *testing.T, err error, code domain.Code) {
	t.Helper()
	if got := domain.CodeOf(err); got != code {
		t.Fatalf("want %s, got %v", code, err)
	}
}

func (f fixture) room(t *testing.T, name string) *domain.Room {
	t.Helper()
	r, err := f.svcs.Rooms.Create(context.Background(), domain.RoomInput{
		Name: name, Capacity: 6, Equipment: []string{"whiteboard"},
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return r
}

func (f fixture) reserve(roomID, date, start, end string) (*domain.Reservation, error) {
	return f.svcs.Reservations.Create(context.Background(), domain.ReservationInput{
		RoomID: roomID, User: "ana@school.edu", Date: date, StartTime: start, EndTime: end,
	})
}

func (f fixture) session(t *testing.T, in domain.SessionInput) *domain.Session {
	t.Helper()
	s, err := f.svcs.Sessions.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func sessionInput(typ string, capacity int) domain.SessionInput {
	return domain.SessionInput{
		Name: "Calculus review", Subject: "Math", StartTime: "2030-06-01T10:00:00Z",
		Location: "Library", Type: typ, Capacity: capacity, OwnerID: "owner",
	}
}

func TestDomainFailuresAreNotWrapped(t *testing.T) {
	f := newFixture(t)
	_, err := f.svcs.Rooms.Get(context.Background(), "missing")
	var de *domain.Error
	if !errors.As(err, &de) || de.Code != domain.CodeRoomNotFound {
		t.Fatalf("want *domain.Error ROOM_NOT_FOUND, got %v", err)
	}
}

func asDomain(err error, target **domain.Error) bool { return errors.As(err, target) }
