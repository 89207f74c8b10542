package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studybuddy/internal/core/config"
	"studybuddy/internal/repo"
	"studybuddy/internal/service"
)

func newTestServices() *service.Services {
	set := repo.NewMemory()
	return service.New(service.Deps{
		Users:        set.Users,
		Rooms:        set.Rooms,
		Sessions:     set.Sessions,
		Reservations: set.Reservations,
		Now:          func() time.Time { return time.Date(2030, 5, 10, 9, 0, 0, 0, time.UTC) },
		MeetingLink:  func() string { return "https://zoom.us/j/0123456789" },
	})
}

func newTestAPI(t *testing.T, lim config.Limits) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewAPIEngine(zap.NewNop(), newTestServices(), lim)
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code, out
}

func doList(t *testing.T, r http.Handler, path string) (int, []map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out []map[string]any
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode list %s: %v", path, err)
		}
	}
	return w.Code, out
}

func createRoom(t *testing.T, r http.Handler, name string) string {
	t.Helper()
	code, body := do(t, r, http.MethodPost, "/api/study-rooms", map[string]any{
		"name": name, "capacity": 4, "equipment": []string{"projector"},
	})
	if code != http.StatusCreated {
		t.Fatalf("create room: %d %v", code, body)
	}
	return body["id"].(string)
}

func reservation(room, start, end string) map[string]any {
	return map[string]any{"roomId": room, "user": "ana@school.edu", "date": "2030-05-11", "startTime": start, "endTime": end}
}

func TestHealth(t *testing.T) {
	r := newTestAPI(t, config.Limits{})
	code, body := do(t, r, http.MethodGet, "/health", nil)
	if code != http.StatusOK || body["ok"] != float64(1) {
		t.Fatalf("health: %d %v", code, body)
	}
	code, body = do(t, r, http.MethodGet, "/api/nope", nil)
	if code != http.StatusNotFound || body["code"] != "ROUTE_NOT_FOUND" {
		t.Fatalf("no route: %d %v", code, body)
	}
}

func TestReservationOverlapAndTouching(t *testing.T) {
	r := newTestAPI(t, config.Limits{})
	room := createRoom(t, r, "Sala A")

	code, _ := do(t, r, http.MethodPost, "/api/reservations", reservation(room, "10:00", "11:00"))
	if code != http.StatusCreated {
		t.Fatalf("first: %d", code)
	}
	code, body := do(t, r, http.MethodPost, "/api/reservations", reservation(room, "10:30", "11:30"))
	if code != http.StatusConflict || body["code"] != "TIME_CONFLICT" {
		t.Fatalf("overlap: %d %v", code, body)
	}
	code, _ = do(t, r, http.MethodPost, "/api/reservations", reservation(room, "11:00", "12:00"))
	if code != http.StatusCreated {
		t.Fatalf("touching: %d", code)
	}

	_, list := doList(t, r, "/api/reservations?roomId="+room)
	if len(list) != 2 {
		t.Fatalf("list by room: %v", list)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	r := newTestAPI(t, config.Limits{})
	room := createRoom(t, r, "Sala A")

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad clock", http.MethodPost, "/api/reservations", reservation(room, "9:00", "10:00"), 400, "INVALID_INPUT"},
		{"outside hours", http.MethodPost, "/api/reservations", reservation(room, "07:00", "09:00"), 400, "OUTSIDE_OPENING_HOURS"},
		{"invalid time", http.MethodPost, "/api/reservations", reservation(room, "10:00", "09:00"), 400, "INVALID_TIME"},
		{"unknown room", http.MethodPost, "/api/reservations", reservation("ghost", "09:00", "10:00"), 400, "INVALID_ROOM"},
		{"duplicate room", http.MethodPost, "/api/study-rooms", map[string]any{"name": "Sala A", "capacity": 2, "equipment": []string{}}, 409, "DUPLICATE_ROOM"},
		{"room not found", http.MethodGet, "/api/study-rooms/ghost", nil, 404, "ROOM_NOT_FOUND"},
		{"reservation not found", http.MethodDelete, "/api/reservations/ghost", nil, 404, "RESERVATION_NOT_FOUND"},
		{"malformed json", http.MethodPost, "/api/study-rooms", `{"name":`, 400, "INVALID_INPUT"},
		{"wrong type", http.MethodPost, "/api/study-rooms", `{"name":"X","capacity":"four"}`, 400, "INVALID_INPUT"},
		{"empty body", http.MethodPost, "/api/users", "", 400, "INVALID_INPUT"},
		{"bad bool filter", http.MethodGet, "/api/study-rooms?available=maybe", nil, 400, "INVALID_INPUT"},
		{"bad start filter", http.MethodGet, "/api/study-sessions?startTime=tomorrow", nil, 400, "INVALID_INPUT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, r, tc.method, tc.path, tc.body)
			if code != tc.status || body["code"] != tc.code {
				t.Fatalf("got %d %v, want %d %s", code, body, tc.status, tc.code)
			}
			if msg, _ := body["message"].(string); msg == "" {
				t.Fatalf("missing message: %v", body)
			}
		})
	}
}

func TestInvalidInputCarriesFields(t *testing.T) {
	r := newTestAPI(t, config.Limits{})
	code, body := do(t, r, http.MethodPost, "/api/users", map[string]any{"fullName": "Ana", "email": "nope"})
	if code != http.StatusBadRequest {
		t.Fatalf("status %d", code)
	}
	fields, _ := body["fields"].(map[string]any)
	if _, ok := fields["email"]; !ok {
		t.Fatalf("fields = %v", body["fields"])
	}
	if _, ok := fields["role"]; !ok {
		t.Fatalf("fields = %v", body["fields"])
	}
}

func TestDeleteRoomWithReservations(t *testing.T) {
	r := newTestAPI(t, config.Limits{})
	room := createRoom(t, r, "Sala A")
	_, res := do(t, r, http.MethodPost, "/api/reservations", reservation(room, "09:00", "10:00"))

	code, body := do(t, r, http.MethodDelete, "/api/study-rooms/"+room, nil)
	if code != http.StatusBadRequest || body["code"] != "ROOM_HAS_RESERVATIONS" {
		t.Fatalf("delete busy room: %d %v", code, body)
	}
	code, _ = do(t, r, http.MethodDelete, "/api/reservations/"+res["id"].(string), nil)
	if code != http.StatusOK {
		t.Fatalf("delete reservation: %d", code)
	}
	code, body = do(t, r, http.MethodDelete, "/api/study-rooms/"+room, nil)
	if code != http.StatusOK || body["message"] == "" {
		t.Fatalf("delete room: %d %v", code, body)
	}
}

func TestInvalidUpdateLeavesRecord(t *testing.T) {
	r := newTestAPI(t, config.Limits{})
	room := createRoom(t, r, "Sala A")
	_, res := do(t, r, http.MethodPost, "/api/reservations", reservation(room, "09:00", "10:00"))
	id := res["id"].(string)

	code, _ := do(t, r, http.MethodPut, "/api/reservations/"+id, map[string]any{"endTime": "23:00"})
	if code != http.StatusBadRequest {
		t.Fatalf("invalid update: %d", code)
	}
	_, got := do(t, r, http.MethodGet, "/api/reservations/"+id, nil)
	if got["endTime"] != "10:00" {
		t.Fatalf("record changed: %v", got)
	}
}

func TestSessionLinkAndMembership(t *testing.T) {
	r := newTestAPI(t, config.Limits{})

	code, virt := do(t, r, http.MethodPost, "/api/study-sessions", map[string]any{
		"name": "Algebra", "subject": "Math", "startTime": "2030-06-01T10:00:00Z",
		"location": "Online", "type": "virtual", "capacity": 2, "ownerId": "owner",
	})
	if code != http.StatusCreated || virt["meetingLink"] != "https://zoom.us/j/0123456789" {
		t.Fatalf("virtual: %d %v", code, virt)
	}
	code, pres := do(t, r, http.MethodPost, "/api/study-sessions", map[string]any{
		"name": "Algebra", "subject": "Math", "startTime": "2030-06-01T10:00:00Z",
		"location": "Library", "type": "presential", "capacity": 2, "ownerId": "owner", "public": false,
	})
	if code != http.StatusCreated || pres["meetingLink"] != nil {
		t.Fatalf("presential: %d %v", code, pres)
	}

	id := virt["id"].(string)
	code, body := do(t, r, http.MethodPost, "/api/study-sessions/"+id+"/join", map[string]any{"userId": "bob"})
	if code != http.StatusOK || len(body["participants"].([]any)) != 2 {
		t.Fatalf("join: %d %v", code, body)
	}
	code, body = do(t, r, http.MethodPost, "/api/study-sessions/"+id+"/join", map[string]any{"userId": "carol"})
	if code != http.StatusBadRequest || body["code"] != "CAPACITY_FULL" {
		t.Fatalf("full: %d %v", code, body)
	}
	code, body = do(t, r, http.MethodPost, "/api/study-sessions/"+id+"/leave", map[string]any{"userId": "bob"})
	if code != http.StatusOK || len(body["participants"].([]any)) != 1 {
		t.Fatalf("leave: %d %v", code, body)
	}
	code, _ = do(t, r, http.MethodPost, "/api/study-sessions/"+id+"/join", map[string]any{"userId": "carol"})
	if code != http.StatusOK {
		t.Fatalf("rejoin: %d", code)
	}

	code, body = do(t, r, http.MethodPost, "/api/study-sessions/"+pres["id"].(string)+"/join", map[string]any{"userId": "bob"})
	if code != http.StatusAccepted || body["participants"] != nil {
		t.Fatalf("pending: %d %v", code, body)
	}
}

func TestUserRoundTrip(t *testing.T) {
	r := newTestAPI(t, config.Limits{})
	in := map[string]any{"fullName": "Ana Lima", "email": "ana@school.edu", "role": "student", "major": "Physics"}

	code, created := do(t, r, http.MethodPost, "/api/users", in)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, created)
	}
	_, got := do(t, r, http.MethodGet, "/api/users/"+created["id"].(string), nil)
	for k, v := range in {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	code, body := do(t, r, http.MethodPost, "/api/users", in)
	if code != http.StatusConflict || body["code"] != "EMAIL_CONFLICT" {
		t.Fatalf("dup email: %d %v", code, body)
	}
}

func TestBodyLimit(t *testing.T) {
	r := newTestAPI(t, config.Limits{MaxBodyBytes: 64})
	big := `{"name":"` + strings.Repeat("x", 256) + `","capacity":1,"equipment":[]}`
	code, body := do(t, r, http.MethodPost, "/api/study-rooms", big)
	if code != http.StatusRequestEntityTooLarge || body["code"] != "BODY_TOO_LARGE" {
		t.Fatalf("body limit: %d %v", code, body)
	}
}

func TestRateLimit(t *testing.T) {
	r := newTestAPI(t, config.Limits{RPS: 0.001, Burst: 1})
	if code, _ := do(t, r, http.MethodGet, "/health", nil); code != http.StatusOK {
		t.Fatalf("first: %d", code)
	}
	code, body := do(t, r, http.MethodGet, "/health", nil)
	if code != http.StatusTooManyRequests || body["code"] != "TOO_MANY_REQUESTS" {
		t.Fatalf("second: %d %v", code, body)
	}
}
