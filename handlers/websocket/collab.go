// Package websocket bridges the socket.io transport to the collaboration
// hub. All room state lives in the hub; this layer only translates events.
package websocket

import (
	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"

	"github.com/Darshanscodehub/CodeCollab/collab"
)

// socketConn adapts a live socket.io connection to the hub's Conn.
type socketConn struct {
	socket *socketio.Socket
}

func (c socketConn) ID() string { return string(c.socket.Id()) }

func (c socketConn) Send(event string, payload any) {
	if err := c.socket.Emit(event, payload); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"socket_id": c.socket.Id(),
			"event":     event,
		}).Debug("Failed to emit event")
	}
}

// SetupSocketIO builds the socket.io server and wires its events into the
// hub. The hub's event loop must already be running.
func SetupSocketIO(hub *collab.Hub) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	ioo := socketio.NewServer(nil, opts)

	ioo.On("connection", func(clients ...any) {
		socket := clients[0].(*socketio.Socket)
		conn := socketConn{socket: socket}
		logrus.WithField("socket_id", socket.Id()).Debug("Socket connected")

		socket.On(collab.EventJoinRoom, func(datas ...any) {
			roomID, ok := stringArg(datas)
			if !ok {
				return
			}
			logrus.WithFields(logrus.Fields{
				"socket_id": socket.Id(),
				"room_id":   roomID,
			}).Info("Socket joined room")
			hub.Join(conn, roomID)
		})

		socket.On(collab.EventCodeChange, func(datas ...any) {
			roomID, code := parseCodeChange(datas)
			hub.Change(conn, roomID, code)
		})

		socket.On(collab.EventSyncCode, func(datas ...any) {
			code, toSocketID, ok := parseSyncCode(datas)
			if !ok {
				return
			}
			hub.PeerResync(conn, toSocketID, code)
		})

		socket.On("disconnect", func(datas ...any) {
			logrus.WithField("socket_id", socket.Id()).Debug("Socket disconnected")
			hub.Disconnect(conn)
			socket.RemoveAllListeners("")
		})
	})
	return ioo
}

// stringArg extracts the single string argument of a bare event.
func stringArg(datas []any) (string, bool) {
	if len(datas) == 0 {
		return "", false
	}
	s, ok := datas[0].(string)
	return s, ok
}

// parseCodeChange accepts both the object form {roomId, code} and a bare
// code string. The bare form carries no room and is dropped by the hub.
func parseCodeChange(datas []any) (roomID, code string) {
	if len(datas) == 0 {
		return "", ""
	}
	switch payload := datas[0].(type) {
	case map[string]any:
		roomID, _ = payload["roomId"].(string)
		code, _ = payload["code"].(string)
		return roomID, code
	case string:
		return "", payload
	}
	return "", ""
}

func parseSyncCode(datas []any) (code, toSocketID string, ok bool) {
	if len(datas) == 0 {
		return "", "", false
	}
	payload, isMap := datas[0].(map[string]any)
	if !isMap {
		return "", "", false
	}
	code, _ = payload["code"].(string)
	toSocketID, hasTarget := payload["toSocketId"].(string)
	if !hasTarget || toSocketID == "" {
		return "", "", false
	}
	return code, toSocketID, true
}
