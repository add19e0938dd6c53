package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zaliyaya/RunConnect/internal/store"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same trust model as the rest of the surface
	},
}

// WSMessage is the WebSocket message envelope for the update feed.
type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Feed pushes store change notifications to connected clients, so a
// mini-app view can re-render without polling the HTTP endpoints.
type Feed struct {
	store  *store.Store
	logger *zap.Logger
}

// NewFeed creates the live-update feed.
func NewFeed(st *store.Store, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{store: st, logger: logger}
}

// Serve handles the WebSocket upgrade for GET /ws. The client gets
// the current snapshot on connect and a fresh snapshot after every
// change to the collection until it disconnects.
func (f *Feed) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	send := make(chan WSMessage, 16)
	unsubscribe := f.store.Subscribe(func() {
		select {
		case send <- WSMessage{Event: "events_updated", Data: f.store.List()}:
		default:
			// Slow consumer: it will catch up on the next change.
		}
	})

	send <- WSMessage{Event: "events_snapshot", Data: f.store.List()}

	go f.writePump(conn, send)
	f.readPump(conn, unsubscribe)
}

func (f *Feed) readPump(conn *websocket.Conn, unsubscribe func()) {
	defer func() {
		unsubscribe()
		_ = conn.Close()
	}()
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(conn *websocket.Conn, send <-chan WSMessage) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
