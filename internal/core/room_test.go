package core

import (
	"strings"
	"testing"
	"time"
)

func TestRoomRegistryCreateCodeShape(t *testing.T) {
	reg := NewRoomRegistry()
	now := time.Now()
	creator := NewClient("conn-1", "anon-1")

	room, err := reg.Create(creator, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(room.ID) != roomCodeLen {
		t.Fatalf("expected %d-char code, got %q", roomCodeLen, room.ID)
	}
	for _, r := range room.ID {
		if !strings.ContainsRune(roomCodeAlphabet, r) {
			t.Fatalf("code %q contains %q outside the alphabet", room.ID, r)
		}
	}

	if room.Participants() != 1 || !room.Has("conn-1") {
		t.Fatalf("creator should be sole participant")
	}
	if _, ok := creator.Rooms[room.ID]; !ok {
		t.Fatalf("creator's room set not updated")
	}
}

func TestRoomRegistryJoinCreatesImplicitly(t *testing.T) {
	reg := NewRoomRegistry()
	now := time.Now()
	c := NewClient("conn-1", "anon-1")

	room := reg.Join("ROOMCODE", c, now)
	if room == nil || reg.Get("ROOMCODE") != room {
		t.Fatalf("expected implicit room creation")
	}
	if room.Participants() != 1 {
		t.Fatalf("expected 1 participant, got %d", room.Participants())
	}
}

func TestRoomRegistryMembershipInvariant(t *testing.T) {
	reg := NewRoomRegistry()
	now := time.Now()
	a := NewClient("a", "anon-a")
	b := NewClient("b", "anon-b")

	room, err := reg.Create(a, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reg.Join(room.ID, b, now)

	// Both sides of the invariant hold after join.
	for _, c := range []*Client{a, b} {
		if _, ok := c.Rooms[room.ID]; !ok {
			t.Fatalf("%s missing room in its set", c.ID)
		}
		if !room.Has(c.ID) {
			t.Fatalf("room missing participant %s", c.ID)
		}
	}

	// And after leave.
	reg.Leave(room.ID, a)
	if _, ok := a.Rooms[room.ID]; ok {
		t.Fatalf("a still has room after leave")
	}
	if room.Has("a") {
		t.Fatalf("room still has a after leave")
	}
	if !room.Has("b") {
		t.Fatalf("b should remain")
	}
}

func TestRoomRegistryLeaveDeletesEmptyRoomEagerly(t *testing.T) {
	reg := NewRoomRegistry()
	now := time.Now()
	a := NewClient("a", "anon-a")

	room, err := reg.Create(a, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	left, wasMember := reg.Leave(room.ID, a)
	if !wasMember || left != room {
		t.Fatalf("expected member leave, got wasMember=%v", wasMember)
	}
	if reg.Get(room.ID) != nil {
		t.Fatalf("empty room should be deleted immediately, not by the reaper")
	}

	// Re-joining the same code yields a brand-new room, not stale state.
	fresh := reg.Join(room.ID, a, now)
	if fresh == room {
		t.Fatalf("expected a fresh room object")
	}
	if fresh.Participants() != 1 {
		t.Fatalf("expected fresh room with 1 participant, got %d", fresh.Participants())
	}
}

func TestRoomRegistryLeaveNonMember(t *testing.T) {
	reg := NewRoomRegistry()
	now := time.Now()
	a := NewClient("a", "anon-a")
	b := NewClient("b", "anon-b")
	room, _ := reg.Create(a, now)

	if _, wasMember := reg.Leave(room.ID, b); wasMember {
		t.Fatalf("b was never a member")
	}
	if _, wasMember := reg.Leave("NOSUCH00", b); wasMember {
		t.Fatalf("unknown room cannot report membership")
	}
}

func TestRoomRegistryEvictStale(t *testing.T) {
	reg := NewRoomRegistry()
	base := time.Now()
	a := NewClient("a", "anon-a")
	b := NewClient("b", "anon-b")

	idleRoom, _ := reg.Create(a, base)
	activeRoom, _ := reg.Create(b, base)
	reg.Touch(activeRoom.ID, base.Add(30*time.Minute))

	evicted := reg.EvictStale(base.Add(61*time.Minute), 60*time.Minute)
	if len(evicted) != 1 || evicted[0] != idleRoom {
		t.Fatalf("expected only the idle room evicted, got %d", len(evicted))
	}
	if reg.Get(activeRoom.ID) == nil {
		t.Fatalf("active room should survive")
	}
	// Members of an evicted room get their room set cleaned to keep the
	// invariant.
	if _, ok := a.Rooms[idleRoom.ID]; ok {
		t.Fatalf("a still references the evicted room")
	}
}

func TestRoomBroadcastExcludesSenderAndDropsSlowConsumers(t *testing.T) {
	reg := NewRoomRegistry()
	now := time.Now()
	a := NewClient("a", "anon-a")
	b := NewClient("b", "anon-b")

	room, _ := reg.Create(a, now)
	reg.Join(room.ID, b, now)

	room.Broadcast(&Event{Kind: EventUserTyping, Room: room.ID}, "a")

	select {
	case <-a.Events:
		t.Fatalf("sender must not receive its own broadcast")
	default:
	}
	select {
	case <-b.Events:
	default:
		t.Fatalf("b should have received the broadcast")
	}

	// Fill b's buffer; further broadcasts are dropped, never block.
	for i := 0; i < cap(b.Events)+8; i++ {
		room.Broadcast(&Event{Kind: EventUserTyping, Room: room.ID}, "a")
	}
}
