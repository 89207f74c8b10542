package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"studybuddy/internal/domain"
)

func TestMemoryRoomUniqueName(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	a := &domain.Room{Name: "Sala A", Capacity: 4, Equipment: []string{"tv"}}
	if err := s.Rooms.Insert(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected generated id")
	}
	err := s.Rooms.Insert(ctx, &domain.Room{Name: "Sala A", Capacity: 2})
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("want ErrDuplicateKey, got %v", err)
	}

	b := &domain.Room{Name: "Sala B", Capacity: 2}
	if err := s.Rooms.Insert(ctx, b); err != nil {
		t.Fatalf("insert b: %v", err)
	}
	renamed := *b
	renamed.Name = "Sala A"
	if _, err := s.Rooms.UpdateByID(ctx, b.ID, renamed); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("rename onto existing name: want ErrDuplicateKey, got %v", err)
	}
	// 保留自身名字不算冲突
	if _, err := s.Rooms.UpdateByID(ctx, a.ID, *a); err != nil {
		t.Fatalf("self update: %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	r := &domain.Room{Name: "Sala", Capacity: 2, Equipment: []string{"tv"}}
	_ = s.Rooms.Insert(ctx, r)

	got, _ := s.Rooms.FindByID(ctx, r.ID)
	got.Equipment[0] = "changed"
	again, _ := s.Rooms.FindByID(ctx, r.ID)
	if again.Equipment[0] != "tv" {
		t.Fatalf("stored row mutated through returned copy: %v", again.Equipment)
	}
}

func TestMemoryMissingRows(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if u, err := s.Users.FindByID(ctx, "nope"); u != nil || err != nil {
		t.Fatalf("FindByID: %v %v", u, err)
	}
	if u, err := s.Users.UpdateByID(ctx, "nope", domain.User{}); u != nil || err != nil {
		t.Fatalf("UpdateByID: %v %v", u, err)
	}
	if ok, err := s.Users.DeleteByID(ctx, "nope"); ok || err != nil {
		t.Fatalf("DeleteByID: %v %v", ok, err)
	}
}

func TestMemorySessionSlotUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	at := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)

	if err := s.Sessions.Insert(ctx, &domain.Session{Location: "Lib", StartTime: at}); err != nil {
		t.Fatal(err)
	}
	err := s.Sessions.Insert(ctx, &domain.Session{Location: "Lib", StartTime: at.In(time.FixedZone("X", 3600))})
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("same instant other zone: want ErrDuplicateKey, got %v", err)
	}
	if err := s.Sessions.Insert(ctx, &domain.Session{Location: "Lab", StartTime: at}); err != nil {
		t.Fatalf("other location: %v", err)
	}
}

func TestMemoryReservationFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	rows := []domain.Reservation{
		{RoomID: "r1", User: "u1", Date: "2030-01-01", StartTime: "09:00", EndTime: "10:00"},
		{RoomID: "r2", User: "u1", Date: "2030-01-01", StartTime: "09:00", EndTime: "10:00"},
		{RoomID: "r1", User: "u2", Date: "2030-01-02", StartTime: "11:00", EndTime: "12:00"},
	}
	for i := range rows {
		if err := s.Reservations.Insert(ctx, &rows[i]); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := s.Reservations.FindAll(ctx, domain.ReservationFilter{RoomID: "r1"})
	if len(got) != 2 || got[0].ID != rows[0].ID || got[1].ID != rows[2].ID {
		t.Fatalf("room filter: %+v", got)
	}
	got, _ = s.Reservations.FindAll(ctx, domain.ReservationFilter{RoomID: "r1", Date: "2030-01-01"})
	if len(got) != 1 {
		t.Fatalf("room+date filter: %+v", got)
	}
	if ok, _ := s.Reservations.DeleteByID(ctx, rows[0].ID); !ok {
		t.Fatal("delete")
	}
	got, _ = s.Reservations.FindAll(ctx, domain.ReservationFilter{})
	if len(got) != 2 || got[0].ID != rows[1].ID {
		t.Fatalf("after delete: %+v", got)
	}
}
