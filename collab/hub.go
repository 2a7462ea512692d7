package collab

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
)

// Conn is the hub's view of one live client connection. Send is
// fire-and-forget: if the transport cannot deliver, the message is lost and
// the next full-buffer update reconciles the client.
type Conn interface {
	ID() string
	Send(event string, payload any)
}

// RoomInfo describes one active room for listing endpoints.
type RoomInfo struct {
	ID      string `json:"id"`
	Members int    `json:"users"`
}

// Hub mediates every message between connections and the room registry. All
// handlers are funneled through a single ops channel consumed by Run, so
// each one runs to completion before the next starts. That ordering is what
// makes the lock-free registry safe, and it is also the conflict policy:
// two racing edits resolve to whichever one the loop processed last.
type Hub struct {
	registry *Registry
	ops      chan func()

	rooms  map[string]map[string]Conn // room ID -> conn ID -> conn
	joined map[string]string          // conn ID -> room ID
	conns  map[string]Conn            // every conn currently in a room
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry: registry,
		ops:      make(chan func(), 256),
		rooms:    make(map[string]map[string]Conn),
		joined:   make(map[string]string),
		conns:    make(map[string]Conn),
	}
}

// Run consumes queued events until ctx is cancelled. It must be running for
// any of the handler methods to make progress.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case op := <-h.ops:
			op()
		case <-ctx.Done():
			return
		}
	}
}

// Join moves conn into roomID, sends it the registry's snapshot and tells
// the other members a peer arrived. A connection belongs to at most one room
// at a time: joining a new room removes it from the previous one, so stale
// members never receive broadcasts.
func (h *Hub) Join(conn Conn, roomID string) {
	h.ops <- func() {
		if roomID == "" {
			return
		}
		h.leave(conn.ID())

		members, ok := h.rooms[roomID]
		if !ok {
			members = make(map[string]Conn)
			h.rooms[roomID] = members
		}
		members[conn.ID()] = conn
		h.joined[conn.ID()] = roomID
		h.conns[conn.ID()] = conn

		conn.Send(EventLoadCode, h.registry.GetOrDefault(roomID))
		for id, member := range members {
			if id == conn.ID() {
				continue
			}
			member.Send(EventUserJoined, UserJoinedPayload{SocketID: conn.ID()})
		}

		logrus.WithFields(logrus.Fields{
			"conn_id": conn.ID(),
			"room_id": roomID,
			"members": len(members),
		}).Info("connection joined room")
	}
}

// Change stores the new full text and fans it out to every member of the
// room except the sender. Events missing a room or text are dropped without
// a reply: the next complete edit reconciles every buffer, so there is
// nothing useful to tell the sender.
func (h *Hub) Change(conn Conn, roomID, code string) {
	h.ops <- func() {
		if roomID == "" || code == "" {
			logrus.WithField("conn_id", conn.ID()).Debug("dropping incomplete code change")
			return
		}
		h.registry.SetText(roomID, code)
		for id, member := range h.rooms[roomID] {
			if id == conn.ID() {
				continue
			}
			member.Send(EventCodeChange, code)
		}
	}
}

// PeerResync hands from's buffer directly to one newcomer, bypassing a
// possibly stale registry copy. The registry is not touched. A target that
// already disconnected is silently skipped; the newcomer still has the
// snapshot it received on join.
func (h *Hub) PeerResync(from Conn, targetID, code string) {
	h.ops <- func() {
		target, ok := h.conns[targetID]
		if !ok {
			logrus.WithFields(logrus.Fields{
				"conn_id": from.ID(),
				"target":  targetID,
			}).Debug("resync target is gone")
			return
		}
		target.Send(EventLoadCode, code)
	}
}

// Disconnect removes conn from its room, if any. The room's text stays in
// the registry and the remaining members are not notified.
func (h *Hub) Disconnect(conn Conn) {
	h.ops <- func() {
		delete(h.conns, conn.ID())
		h.leave(conn.ID())
		logrus.WithField("conn_id", conn.ID()).Info("connection closed")
	}
}

// Rooms lists rooms that currently have members, sorted by ID. Unlike the
// handler methods this one waits for the loop, so callers see a state that
// reflects everything enqueued before it.
func (h *Hub) Rooms() []RoomInfo {
	reply := make(chan []RoomInfo, 1)
	h.ops <- func() {
		infos := make([]RoomInfo, 0, len(h.rooms))
		for id, members := range h.rooms {
			infos = append(infos, RoomInfo{ID: id, Members: len(members)})
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
		reply <- infos
	}
	return <-reply
}

// leave drops connID from its current room. Must run on the event loop.
func (h *Hub) leave(connID string) {
	roomID, ok := h.joined[connID]
	if !ok {
		return
	}
	delete(h.joined, connID)
	if members, ok := h.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}
