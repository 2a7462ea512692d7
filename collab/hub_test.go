package collab

import (
	"context"
	"testing"
	"time"
)

type sentMsg struct {
	event   string
	payload any
}

type fakeConn struct {
	id   string
	msgs chan sentMsg
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, msgs: make(chan sentMsg, 64)}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event string, payload any) {
	c.msgs <- sentMsg{event: event, payload: payload}
}

func newTestHub(t *testing.T) (*Hub, *Registry) {
	t.Helper()
	registry := NewRegistry()
	hub := NewHub(registry)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub, registry
}

func recvMsg(t *testing.T, conn *fakeConn) sentMsg {
	t.Helper()
	select {
	case msg := <-conn.msgs:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("conn %s received no message", conn.id)
		return sentMsg{}
	}
}

// settle waits until every previously enqueued event has been processed.
// Rooms round-trips through the event loop, so once it returns the loop has
// drained everything ahead of it.
func settle(hub *Hub) {
	hub.Rooms()
}

func expectNoMsg(t *testing.T, hub *Hub, conn *fakeConn) {
	t.Helper()
	settle(hub)
	select {
	case msg := <-conn.msgs:
		t.Fatalf("conn %s unexpectedly received %q: %v", conn.id, msg.event, msg.payload)
	default:
	}
}

func TestJoin_UnseenRoomSendsDefaultSnapshot(t *testing.T) {
	hub, _ := newTestHub(t)
	conn := newFakeConn("a")

	hub.Join(conn, "abc123")

	msg := recvMsg(t, conn)
	if msg.event != EventLoadCode {
		t.Fatalf("first message = %q, want %q", msg.event, EventLoadCode)
	}
	if msg.payload != DefaultRoomText {
		t.Errorf("snapshot = %q, want default placeholder", msg.payload)
	}
}

func TestJoin_SnapshotReflectsStoredText(t *testing.T) {
	hub, _ := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "abc123")
	recvMsg(t, a) // snapshot
	hub.Change(a, "abc123", "hello world")

	hub.Join(b, "abc123")
	msg := recvMsg(t, b)
	if msg.event != EventLoadCode {
		t.Fatalf("first message to joiner = %q, want %q", msg.event, EventLoadCode)
	}
	if msg.payload != "hello world" {
		t.Errorf("snapshot = %q, want %q", msg.payload, "hello world")
	}
}

func TestJoin_NotifiesExistingMembersOnly(t *testing.T) {
	hub, _ := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "abc123")
	recvMsg(t, a)
	hub.Join(b, "abc123")
	recvMsg(t, b) // b's own snapshot

	msg := recvMsg(t, a)
	if msg.event != EventUserJoined {
		t.Fatalf("existing member got %q, want %q", msg.event, EventUserJoined)
	}
	payload, ok := msg.payload.(UserJoinedPayload)
	if !ok {
		t.Fatalf("payload type = %T, want UserJoinedPayload", msg.payload)
	}
	if payload.SocketID != "b" {
		t.Errorf("payload names %q, want %q", payload.SocketID, "b")
	}

	// The joiner itself must not be told about its own arrival.
	expectNoMsg(t, hub, b)
}

func TestChange_LastWriterWins(t *testing.T) {
	hub, registry := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "abc123")
	hub.Join(b, "abc123")
	hub.Change(a, "abc123", "X")
	hub.Change(b, "abc123", "Y")
	settle(hub)

	if got := registry.GetOrDefault("abc123"); got != "Y" {
		t.Errorf("registry holds %q, want %q", got, "Y")
	}

	c := newFakeConn("c")
	hub.Join(c, "abc123")
	msg := recvMsg(t, c)
	if msg.payload != "Y" {
		t.Errorf("late joiner snapshot = %q, want %q", msg.payload, "Y")
	}
}

func TestChange_NoSelfEcho(t *testing.T) {
	hub, _ := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "abc123")
	recvMsg(t, a)
	hub.Join(b, "abc123")
	recvMsg(t, b)
	recvMsg(t, a) // user-joined for b

	hub.Change(a, "abc123", "edit from a")

	msg := recvMsg(t, b)
	if msg.event != EventCodeChange || msg.payload != "edit from a" {
		t.Errorf("peer got %q %v, want code-change %q", msg.event, msg.payload, "edit from a")
	}
	expectNoMsg(t, hub, a)
}

func TestChange_MalformedDropped(t *testing.T) {
	hub, registry := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "abc123")
	recvMsg(t, a)
	hub.Join(b, "abc123")
	recvMsg(t, b)
	recvMsg(t, a)

	hub.Change(a, "", "orphan text")
	hub.Change(a, "abc123", "")
	settle(hub)

	if registry.Len() != 0 {
		t.Errorf("registry has %d rooms after malformed changes, want 0", registry.Len())
	}
	expectNoMsg(t, hub, b)
}

func TestChange_MemberIsolation(t *testing.T) {
	hub, _ := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "r1")
	recvMsg(t, a)
	hub.Join(b, "r2")
	recvMsg(t, b)

	hub.Change(a, "r1", "only for r1")

	expectNoMsg(t, hub, b)
}

func TestPeerResync_TargetsOnlyNewcomer(t *testing.T) {
	hub, _ := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")
	c := newFakeConn("c")

	hub.Join(a, "abc123")
	recvMsg(t, a)
	hub.Join(b, "abc123")
	recvMsg(t, b)
	recvMsg(t, a)
	hub.Join(c, "abc123")
	recvMsg(t, c)
	recvMsg(t, a)
	recvMsg(t, b)

	hub.PeerResync(a, "c", "a's fresher buffer")

	msg := recvMsg(t, c)
	if msg.event != EventLoadCode || msg.payload != "a's fresher buffer" {
		t.Errorf("target got %q %v, want load-code with a's buffer", msg.event, msg.payload)
	}
	expectNoMsg(t, hub, b)
}

func TestPeerResync_GoneTargetIgnored(t *testing.T) {
	hub, registry := newTestHub(t)
	a := newFakeConn("a")

	hub.Join(a, "abc123")
	recvMsg(t, a)

	hub.PeerResync(a, "nobody", "buffer")
	settle(hub)

	// No registry mutation either way.
	if registry.Len() != 0 {
		t.Errorf("registry has %d rooms, want 0", registry.Len())
	}
}

func TestJoin_RejoinLeavesPreviousRoom(t *testing.T) {
	hub, _ := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "r1")
	recvMsg(t, a)
	hub.Join(b, "r1")
	recvMsg(t, b)
	recvMsg(t, a)

	// a moves to r2; it must stop receiving r1 traffic.
	hub.Join(a, "r2")
	recvMsg(t, a)

	hub.Change(b, "r1", "r1 edit")
	expectNoMsg(t, hub, a)

	rooms := hub.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("Rooms() = %v, want two rooms", rooms)
	}
	for _, room := range rooms {
		if room.Members != 1 {
			t.Errorf("room %s has %d members, want 1", room.ID, room.Members)
		}
	}
}

func TestDisconnect_StopsBroadcastsKeepsText(t *testing.T) {
	hub, registry := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "abc123")
	recvMsg(t, a)
	hub.Join(b, "abc123")
	recvMsg(t, b)
	recvMsg(t, a)
	hub.Change(a, "abc123", "before disconnect")
	recvMsg(t, b)

	hub.Disconnect(b)
	hub.Change(a, "abc123", "after disconnect")
	expectNoMsg(t, hub, b)

	// No peer notification on disconnect.
	expectNoMsg(t, hub, a)

	// Room text survives members leaving.
	settle(hub)
	if got := registry.GetOrDefault("abc123"); got != "after disconnect" {
		t.Errorf("registry holds %q, want %q", got, "after disconnect")
	}
}

func TestRooms_ListsActiveRooms(t *testing.T) {
	hub, _ := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")
	c := newFakeConn("c")

	hub.Join(a, "r1")
	hub.Join(b, "r1")
	hub.Join(c, "r2")

	rooms := hub.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("Rooms() returned %d rooms, want 2", len(rooms))
	}
	if rooms[0].ID != "r1" || rooms[0].Members != 2 {
		t.Errorf("rooms[0] = %+v, want r1 with 2 members", rooms[0])
	}
	if rooms[1].ID != "r2" || rooms[1].Members != 1 {
		t.Errorf("rooms[1] = %+v, want r2 with 1 member", rooms[1])
	}

	hub.Disconnect(a)
	hub.Disconnect(b)
	rooms = hub.Rooms()
	if len(rooms) != 1 || rooms[0].ID != "r2" {
		t.Errorf("Rooms() = %v after r1 emptied, want only r2", rooms)
	}
}

// Full walkthrough: empty room, first joiner edits, second joiner snapshots
// the edit, then edits back.
func TestRoomLifecycleScenario(t *testing.T) {
	hub, registry := newTestHub(t)
	a := newFakeConn("a")
	b := newFakeConn("b")

	hub.Join(a, "abc123")
	if msg := recvMsg(t, a); msg.payload != DefaultRoomText {
		t.Fatalf("A's snapshot = %q, want default placeholder", msg.payload)
	}

	hub.Change(a, "abc123", "hello world")

	hub.Join(b, "abc123")
	if msg := recvMsg(t, b); msg.payload != "hello world" {
		t.Fatalf("B's snapshot = %q, want %q", msg.payload, "hello world")
	}
	recvMsg(t, a) // user-joined for b

	hub.Change(b, "abc123", "hello world!!")
	if msg := recvMsg(t, a); msg.event != EventCodeChange || msg.payload != "hello world!!" {
		t.Fatalf("A got %q %v, want code-change %q", msg.event, msg.payload, "hello world!!")
	}

	settle(hub)
	if got := registry.GetOrDefault("abc123"); got != "hello world!!" {
		t.Errorf("registry holds %q, want %q", got, "hello world!!")
	}
}
