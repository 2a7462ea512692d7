package collab

// Wire events exchanged between editor clients and the server. The names are
// part of the protocol and must stay stable across client versions.
const (
	// EventJoinRoom is sent by a client to enter a room, creating it if it
	// has never been seen. Payload: room ID string.
	EventJoinRoom = "join-room"

	// EventLoadCode carries a full-text snapshot to a single client, either
	// from the registry on join or from a peer resync. Payload: code string.
	EventLoadCode = "load-code"

	// EventUserJoined tells the existing members of a room that a new peer
	// arrived, so any of them can push a fresher buffer via EventSyncCode.
	EventUserJoined = "user-joined"

	// EventSyncCode is sent by an existing member to hand its own buffer to
	// one specific newcomer.
	EventSyncCode = "sync-code"

	// EventCodeChange is a full-buffer update. Clients emit it with a room
	// ID on every local edit; the server re-emits the bare code string to
	// every other member of the room.
	EventCodeChange = "code-change"
)

// DefaultRoomText is what a client sees when it joins a room that has never
// received an edit.
const DefaultRoomText = "// Welcome! Waiting for code sync...\n"

type (
	// UserJoinedPayload names the connection that just entered a room.
	UserJoinedPayload struct {
		SocketID string `json:"socketId"`
	}

	// CodeChangePayload is the client-to-server form of EventCodeChange.
	CodeChangePayload struct {
		RoomID string `json:"roomId"`
		Code   string `json:"code"`
	}

	// SyncCodePayload targets one newcomer with the sender's full buffer.
	SyncCodePayload struct {
		Code       string `json:"code"`
		ToSocketID string `json:"toSocketId"`
	}
)
