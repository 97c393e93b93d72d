package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mediumish/internal/models"
	"mediumish/internal/service"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws/feed", defaultInterval},
		{"interval_string_valid", "/ws/feed?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws/feed?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws/feed?interval=2m", defaultInterval},
		{"interval_ms_too_large", "/ws/feed?interval_ms=60000", defaultInterval},
		{"interval_negative", "/ws/feed?interval=-1s", defaultInterval},
		{"interval_invalid_string", "/ws/feed?interval=bogus", defaultInterval},
		{"interval_ms_invalid", "/ws/feed?interval_ms=NaN", defaultInterval},
		{"both_present_interval_wins", "/ws/feed?interval=5s&interval_ms=150", 5 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws/feed?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

func TestLatestSeq(t *testing.T) {
	posts := []models.Post{{Seq: 4}, {Seq: 9}, {Seq: 2}}

	if got := latestSeq(posts, 3); got != 9 {
		t.Fatalf("got %d, want 9", got)
	}
	if got := latestSeq(nil, 3); got != 3 {
		t.Fatalf("empty input must keep cursor, got %d", got)
	}
}

// --- websocket integration tests ---

type feedEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialFeed(t *testing.T, s *service.Service, query string) (*websocket.Conn, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws/feed", h.feedConnect)

	srv := httptest.NewServer(r)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws/feed"
	u.RawQuery = query

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial error: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
		srv.Close()
	}
}

func TestFeed_SnapshotThenNewPosts(t *testing.T) {
	now := time.Now().UTC()
	snapshot := make([]models.Post, 0, feedSnapshotSize+5)
	for i := 0; i < feedSnapshotSize+5; i++ {
		snapshot = append(snapshot, models.Post{ID: "old", Seq: int64(100 - i), CreatedAt: now.Add(-time.Duration(i) * time.Minute)})
	}
	posts := &mockPosts{
		posts: snapshot,
		// stamped before the snapshot's newest post but stored after it
		since: []models.Post{{ID: "fresh", Title: "breaking", Seq: 101, CreatedAt: now.Add(-time.Hour)}},
	}
	conn, cleanup := dialFeed(t, &service.Service{Posts: posts}, "interval_ms=20")
	defer cleanup()

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env feedEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if env.Type != "posts" {
		t.Fatalf("bad envelope: %+v", env)
	}
	var got []models.Post
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(got) != feedSnapshotSize {
		t.Fatalf("snapshot size=%d want %d", len(got), feedSnapshotSize)
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = feedEnvelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read update: %v", err)
	}
	got = nil
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("unmarshal update: %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("unexpected update: %s", string(env.Data))
	}
	if cursors := posts.seenCursors(); len(cursors) == 0 || cursors[0] != 100 {
		t.Fatalf("first poll cursor: got %v, want 100", cursors)
	}
}

func TestFeed_InitialListError_Closes(t *testing.T) {
	posts := &mockPosts{listErr: errors.New("boom")}
	conn, cleanup := dialFeed(t, &service.Service{Posts: posts}, "")
	defer cleanup()

	// The server should close immediately after failing the initial snapshot
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
