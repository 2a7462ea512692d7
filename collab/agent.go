package collab

import "sync"

// initialBuffer matches the editor's starting content before any sync.
const initialBuffer = "// Start coding here...\n"

// EmitFunc sends one protocol event upstream to the server.
type EmitFunc func(event string, payload any)

// Agent is the client-side sync endpoint. It owns the local editor buffer
// and a cursor offset, emits full-buffer updates on local edits and applies
// remote updates without disturbing the cursor, so an incoming change never
// yanks the user's editing position around.
//
// Agent is transport-agnostic: the embedding editor supplies an EmitFunc and
// feeds server events into HandleEvent.
type Agent struct {
	mu     sync.Mutex
	emit   EmitFunc
	roomID string
	buffer string
	cursor int
}

func NewAgent(emit EmitFunc) *Agent {
	return &Agent{emit: emit, buffer: initialBuffer}
}

// JoinRoom requests entry into roomID. The server answers with a load-code
// snapshot that replaces the local buffer.
func (a *Agent) JoinRoom(roomID string) {
	a.mu.Lock()
	a.roomID = roomID
	a.mu.Unlock()
	a.emit(EventJoinRoom, roomID)
}

// LocalEdit replaces the buffer with the editor's current content and
// broadcasts it. Outside a room only the bare text is emitted, which the
// server drops for lack of a room ID, so solo editing degrades to a no-op
// sync rather than an error.
func (a *Agent) LocalEdit(text string, cursor int) {
	a.mu.Lock()
	a.buffer = text
	a.cursor = clampCursor(cursor, len(text))
	roomID := a.roomID
	a.mu.Unlock()

	if roomID == "" {
		a.emit(EventCodeChange, text)
		return
	}
	a.emit(EventCodeChange, CodeChangePayload{RoomID: roomID, Code: text})
}

// HandleEvent applies one server-sent event to local state. Unknown events
// and malformed payloads are ignored.
func (a *Agent) HandleEvent(event string, payload any) {
	switch event {
	case EventLoadCode:
		code, ok := payload.(string)
		if !ok {
			return
		}
		a.mu.Lock()
		a.buffer = code
		a.cursor = clampCursor(a.cursor, len(code))
		a.mu.Unlock()

	case EventCodeChange:
		code, ok := payload.(string)
		if !ok {
			return
		}
		a.mu.Lock()
		if code != a.buffer {
			// Keep the cursor where the user left it; only clamp when the
			// new text is shorter.
			a.buffer = code
			a.cursor = clampCursor(a.cursor, len(code))
		}
		a.mu.Unlock()

	case EventUserJoined:
		joined, ok := payload.(UserJoinedPayload)
		if !ok {
			return
		}
		a.mu.Lock()
		code := a.buffer
		a.mu.Unlock()
		a.emit(EventSyncCode, SyncCodePayload{Code: code, ToSocketID: joined.SocketID})
	}
}

// Buffer returns the current local document text.
func (a *Agent) Buffer() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buffer
}

// Cursor returns the current cursor offset into the buffer.
func (a *Agent) Cursor() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cursor
}

// RoomID returns the room the agent last joined, or "" when outside a room.
func (a *Agent) RoomID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.roomID
}

func clampCursor(cursor, max int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > max {
		return max
	}
	return cursor
}
