package room

import (
	"testing"
	"time"
)

func TestManagerCreateListAndRemoveOnEmpty(t *testing.T) {
	m := NewManager(10, nil)
	defer m.Close()

	code := m.CreateRoom()
	if len(code) != 6 {
		t.Fatalf("room code %q, want 6 chars", code)
	}
	r := m.GetOrCreateRoom(code)
	if r == nil || r.Code != code {
		t.Fatalf("GetOrCreateRoom(%q) returned %+v", code, r)
	}
	if m.GetOrCreateRoom("") != nil {
		t.Fatalf("expected nil room for empty code")
	}

	fc := newFakeConn()
	id := join(t, r, fc)

	rooms := m.ListRooms()
	if len(rooms) != 1 || rooms[0].Code != code || rooms[0].Players != 1 {
		t.Fatalf("ListRooms = %+v, want one room %q with 1 player", rooms, code)
	}

	r.Inbox <- Leave{ClientID: id}
	select {
	case <-r.Done():
	case <-time.After(1 * time.Second):
		t.Fatalf("room was not stopped after last client left")
	}
	if got := m.ListRooms(); len(got) != 0 {
		t.Fatalf("ListRooms after leave = %+v, want empty", got)
	}
}

func TestManagerGetOrCreateReusesRoom(t *testing.T) {
	m := NewManager(10, nil)
	defer m.Close()

	a := m.GetOrCreateRoom("ABC123")
	b := m.GetOrCreateRoom("ABC123")
	if a != b {
		t.Fatalf("expected the same room for the same code")
	}
	if got := m.ListRooms(); len(got) != 1 {
		t.Fatalf("ListRooms = %+v, want 1 room", got)
	}
}

func TestManagerCloseStopsRooms(t *testing.T) {
	m := NewManager(10, nil)
	r := m.GetOrCreateRoom("ZZZ999")
	m.Close()

	select {
	case <-r.Done():
	case <-time.After(1 * time.Second):
		t.Fatalf("room not stopped by Close")
	}
	if len(m.ListRooms()) != 0 {
		t.Fatalf("rooms remain after Close")
	}
}

func TestManagerRecreatesRemovedRoom(t *testing.T) {
	m := NewManager(10, nil)
	defer m.Close()

	old := m.GetOrCreateRoom("QWE234")
	old.OnEmpty(old.Code)
	<-old.Done()

	fresh := m.GetOrCreateRoom("QWE234")
	if fresh == old {
		t.Fatalf("expected a new room after the old one was removed")
	}
	if !fresh.Send(Leave{}) {
		t.Fatalf("new room rejected a command")
	}
}
