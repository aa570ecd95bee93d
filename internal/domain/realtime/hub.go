// Package realtime pushes dashboard snapshots to connected browsers.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"realtorcrm/internal/domain/analytics"
	"realtorcrm/internal/domain/crm"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 16
)

// Event is a message pushed to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

const (
	EventDashboard = "dashboard"
	EventPong      = "pong"
)

// DashboardPayload is sent on connect and after every collection change.
type DashboardPayload struct {
	Dashboard analytics.Dashboard `json:"dashboard"`
	Leads     int                 `json:"leads"`
}

// connection represents a single WebSocket client
type connection struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks open dashboard sockets per user. A user may have several tabs.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*connection]struct{}

	upgrader websocket.Upgrader
	log      *zap.Logger
	now      func() time.Time
}

// NewHub accepts sockets from allowedOrigins; an empty list accepts any.
func NewHub(allowedOrigins []string, log *zap.Logger) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		connections: make(map[string]map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
		log: log,
		now: time.Now,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.userID]
	if !ok {
		set = make(map[*connection]struct{})
		h.connections[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
	}
	if len(set) == 0 {
		delete(h.connections, c.userID)
	}
}

// Connections returns how many sockets userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// LeadsChanged pushes a fresh dashboard to every socket of the workspace owner.
func (h *Hub) LeadsChanged(ws *crm.Workspace) {
	uid := ws.Identity().ID
	if h.Connections(uid) == 0 {
		return
	}
	h.SendToUser(uid, h.dashboardEvent(ws))
}

// SendToUser reports whether at least one socket accepted the event.
func (h *Hub) SendToUser(userID string, event *Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("failed to encode realtime event", zap.String("type", event.Type), zap.Error(err))
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := false
	for c := range h.connections[userID] {
		select {
		case c.send <- data:
			delivered = true
		default:
			// client too slow, it will catch up on the next change
		}
	}
	return delivered
}

func (h *Hub) dashboardEvent(ws *crm.Workspace) *Event {
	leads := ws.Snapshot().Leads()
	return &Event{
		Type: EventDashboard,
		Payload: DashboardPayload{
			Dashboard: analytics.Compute(leads, h.now()),
			Leads:     len(leads),
		},
	}
}

// Serve upgrades the request and blocks until the client disconnects.
func (h *Hub) Serve(c *gin.Context, ws *crm.Workspace) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &connection{
		userID: ws.Identity().ID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(client)
	h.log.Debug("dashboard stream connected", zap.String("user_id", client.userID))

	if data, err := json.Marshal(h.dashboardEvent(ws)); err == nil {
		client.send <- data
	}

	go h.writePump(client)
	h.readPump(client)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.log.Debug("dashboard stream closed", zap.String("user_id", c.userID))
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Info("dashboard stream error", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}

		var in struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &in); err != nil {
			continue
		}
		if in.Type == "ping" {
			h.reply(c, &Event{Type: EventPong})
		}
	}
}

// reply queues event for this connection only. c.send is closed by
// unregister, which runs in readPump's defer, so callers must be on readPump.
func (h *Hub) reply(c *connection, event *Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("failed to encode realtime event", zap.String("type", event.Type), zap.Error(err))
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
