package collab

// Registry holds the last-known document text per room. Rooms are created
// implicitly by the first write and live until the process exits.
//
// The map is deliberately unsynchronized: the hub's event loop is the only
// goroutine allowed to touch a registry, and it processes one event at a
// time (see Hub.Run). Constructing a fresh registry per test keeps tests
// isolated from each other.
type Registry struct {
	texts map[string]string
}

func NewRegistry() *Registry {
	return &Registry{texts: make(map[string]string)}
}

// GetOrDefault returns the stored text for roomID, or DefaultRoomText if the
// room has never been written to. Reading does not create the room.
func (r *Registry) GetOrDefault(roomID string) string {
	if text, ok := r.texts[roomID]; ok {
		return text
	}
	return DefaultRoomText
}

// SetText overwrites the stored text for roomID, creating the entry if
// absent. Any string is accepted; whichever write lands last wins.
func (r *Registry) SetText(roomID, text string) {
	r.texts[roomID] = text
}

// Len reports how many rooms have received at least one edit.
func (r *Registry) Len() int {
	return len(r.texts)
}
