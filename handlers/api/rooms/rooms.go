package rooms

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/Darshanscodehub/CodeCollab/collab"
)

// RoomLister reports the rooms that currently have members.
type RoomLister interface {
	Rooms() []collab.RoomInfo
}

// HandleList returns all active rooms with their member socket ids.
func HandleList(lister RoomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := lister.Rooms()
		if rooms == nil {
			rooms = []collab.RoomInfo{}
		}
		render.JSON(w, r, rooms)
	}
}
