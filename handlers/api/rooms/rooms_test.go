package rooms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Darshanscodehub/CodeCollab/collab"
)

type stubLister struct {
	rooms []collab.RoomInfo
}

func (s *stubLister) Rooms() []collab.RoomInfo { return s.rooms }

func TestHandleList(t *testing.T) {
	lister := &stubLister{rooms: []collab.RoomInfo{
		{ID: "abc123", Members: 2},
		{ID: "xyz", Members: 1},
	}}
	rr := httptest.NewRecorder()
	HandleList(lister)(rr, httptest.NewRequest("GET", "/api/rooms", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got []collab.RoomInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(got) != 2 || got[0].ID != "abc123" || got[0].Members != 2 {
		t.Errorf("rooms = %+v", got)
	}
}

func TestHandleListEmpty(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleList(&stubLister{})(rr, httptest.NewRequest("GET", "/api/rooms", nil))
	if body := rr.Body.String(); body != "[]\n" && body != "[]" {
		t.Errorf("empty list body = %q, want JSON array", body)
	}
}
