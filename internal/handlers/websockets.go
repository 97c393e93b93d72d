package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mediumish/internal/models"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 2 * time.Second
	maxInterval      = 30 * time.Second
	maxIntervalMilli = 30_000
	feedSnapshotSize = 20
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The feed is public and read-only, so any origin may subscribe.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Live feed of new posts
// @Description  WebSocket. Sends the latest posts on connect, then every newly published post.
// @Tags         posts
// @Param        interval     query  string  false  "poll interval, e.g. 2s (max 30s)"
// @Param        interval_ms  query  int     false  "poll interval in milliseconds"
// @Router       /ws/feed [get]
func (h *Handler) feedConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	cursor, err := h.sendSnapshot(ctx, conn)
	if err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if cursor, err = h.sendNewPosts(ctx, conn, cursor); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// sendSnapshot writes the newest posts and returns the feed position of the
// newest one stored, which becomes the cursor for subsequent polls.
func (h *Handler) sendSnapshot(ctx context.Context, conn *websocket.Conn) (int64, error) {
	posts, err := h.services.ListPosts(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_list_posts_failed", "err", err)
		}
		return 0, err
	}
	// the cursor covers every post, including those cut from the snapshot
	cursor := latestSeq(posts, 0)
	if len(posts) > feedSnapshotSize {
		posts = posts[:feedSnapshotSize]
	}
	if err := writePosts(conn, posts); err != nil {
		return 0, err
	}
	return cursor, nil
}

// sendNewPosts writes posts stored after cursor, if any, and returns the
// advanced cursor.
func (h *Handler) sendNewPosts(ctx context.Context, conn *websocket.Conn, cursor int64) (int64, error) {
	posts, err := h.services.ListPostsAfter(ctx, cursor)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_list_posts_failed", "err", err)
		}
		return cursor, err
	}
	if len(posts) == 0 {
		return cursor, nil
	}
	if err := writePosts(conn, posts); err != nil {
		return cursor, err
	}
	return latestSeq(posts, cursor), nil
}

func writePosts(conn *websocket.Conn, posts []models.Post) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "posts", Data: posts})
}

func latestSeq(posts []models.Post, cursor int64) int64 {
	for _, p := range posts {
		if p.Seq > cursor {
			cursor = p.Seq
		}
	}
	return cursor
}
