package service

import (
	"context"
	"testing"

	"studybuddy/internal/core/events"
	"studybuddy/internal/domain"
)

func TestRoomCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r := f.room(t, "Sala 1")
	if !r.Available {
		t.Error("available should default to true")
	}
	_, err := f.svcs.Rooms.Create(ctx, domain.RoomInput{Name: "Sala 1", Capacity: 2, Equipment: []string{}})
	wantCode(t, err, domain.CodeDuplicateRoom)

	_, err = f.svcs.Rooms.Create(ctx, domain.RoomInput{Name: "Sala 2", Capacity: 0, Equipment: []string{}})
	wantCode(t, err, domain.CodeInvalidInput)

	closed, err := f.svcs.Rooms.Create(ctx, domain.RoomInput{Name: "Sala 3", Capacity: 2, Equipment: []string{}, Available: ptr(false)})
	if err != nil || closed.Available {
		t.Fatalf("explicit available=false: %+v %v", closed, err)
	}
}

func TestRoomCreateFieldErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.svcs.Rooms.Create(context.Background(), domain.RoomInput{Capacity: -1})
	var de *domain.Error
	if !asDomain(err, &de) {
		t.Fatalf("want domain error, got %v", err)
	}
	for _, field := range []string{"name", "capacity", "equipment"} {
		if _, ok := de.Fields[field]; !ok {
			t.Errorf("missing field error for %q: %v", field, de.Fields)
		}
	}
}

func TestRoomUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.room(t, "A")
	f.room(t, "B")

	got, err := f.svcs.Rooms.Update(ctx, a.ID, domain.RoomPatch{Capacity: ptr(10)})
	if err != nil || got.Capacity != 10 || got.Name != "A" {
		t.Fatalf("partial update: %+v %v", got, err)
	}

	_, err = f.svcs.Rooms.Update(ctx, a.ID, domain.RoomPatch{Name: ptr("B")})
	wantCode(t, err, domain.CodeDuplicateRoom)

	_, err = f.svcs.Rooms.Update(ctx, a.ID, domain.RoomPatch{Capacity: ptr(0)})
	wantCode(t, err, domain.CodeInvalidInput)

	cur, _ := f.svcs.Rooms.Get(ctx, a.ID)
	if cur.Capacity != 10 || cur.Name != "A" {
		t.Fatalf("failed updates changed the room: %+v", cur)
	}

	_, err = f.svcs.Rooms.Update(ctx, "missing", domain.RoomPatch{})
	wantCode(t, err, domain.CodeRoomNotFound)

	// 只有成功的更新发布事件
	updates := 0
	for _, typ := range f.events.Types() {
		if typ == events.RoomUpdated {
			updates++
		}
	}
	if updates != 1 {
		t.Fatalf("room.updated published %d times", updates)
	}
}

func TestRoomDeleteWithReservations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.room(t, "A")
	r, err := f.reserve(a.ID, "2030-05-11", "09:00", "10:00")
	if err != nil {
		t.Fatal(err)
	}

	wantCode(t, f.svcs.Rooms.Delete(ctx, a.ID), domain.CodeRoomHasReservations)
	if _, err := f.svcs.Rooms.Get(ctx, a.ID); err != nil {
		t.Fatalf("room gone after refused delete: %v", err)
	}

	if err := f.svcs.Reservations.Delete(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.svcs.Rooms.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete empty room: %v", err)
	}
	wantCode(t, f.svcs.Rooms.Delete(ctx, a.ID), domain.CodeRoomNotFound)
}

func TestRoomListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.room(t, "A")
	_, _ = f.svcs.Rooms.Create(ctx, domain.RoomInput{Name: "Big", Capacity: 20, Equipment: []string{}})
	_, _ = f.svcs.Rooms.Create(ctx, domain.RoomInput{Name: "Closed", Capacity: 30, Equipment: []string{}, Available: ptr(false)})

	got, _ := f.svcs.Rooms.List(ctx, domain.RoomFilter{MinCapacity: ptr(10)})
	if len(got) != 2 {
		t.Fatalf("minCapacity: %d rooms", len(got))
	}
	got, _ = f.svcs.Rooms.List(ctx, domain.RoomFilter{MinCapacity: ptr(10), Available: ptr(true)})
	if len(got) != 1 || got[0].Name != "Big" {
		t.Fatalf("minCapacity+available: %+v", got)
	}
}
