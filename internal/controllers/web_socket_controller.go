package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"occamy_tracker/internal/middleware"
	"occamy_tracker/internal/models"
)

const writeWait = 10 * time.Second

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tokens are checked before the upgrade
	},
}

// ActivityHub fans appended activity entries out to connected admin dashboards.
type ActivityHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan models.ActivityEntry
	quit      chan struct{}
	once      sync.Once
	mu        sync.Mutex
}

// NewActivityHub creates the hub and starts its broadcast loop.
func NewActivityHub() *ActivityHub {
	hub := &ActivityHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan models.ActivityEntry, 100),
		quit:      make(chan struct{}),
	}
	go hub.run()
	return hub
}

func (h *ActivityHub) run() {
	for {
		select {
		case entry := <-h.broadcast:
			h.send(entry)
		case <-h.quit:
			return
		}
	}
}

func (h *ActivityHub) send(entry models.ActivityEntry) {
	msg := gin.H{"event": "activity", "entry": entry}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Dashboard client unreachable, unregistering.")
			h.Unregister(conn)
			conn.Close()
		}
	}
}

// Publish queues an entry for broadcast. It never blocks the writer.
func (h *ActivityHub) Publish(entry models.ActivityEntry) {
	select {
	case h.broadcast <- entry:
	default:
		logrus.WithField("seq", entry.Seq).Warn("Activity broadcast channel full, dropping message.")
	}
}

func (h *ActivityHub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	logrus.WithFields(logrus.Fields{
		"conn_ptr": fmt.Sprintf("%p", conn),
		"clients":  len(h.clients),
	}).Info("Dashboard client registered with ActivityHub.")
}

func (h *ActivityHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Dashboard client unregistered from ActivityHub.")
}

// Clients returns the number of connected dashboards.
func (h *ActivityHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops the broadcast loop and disconnects every client.
func (h *ActivityHub) Close() {
	h.once.Do(func() {
		close(h.quit)
		h.mu.Lock()
		defer h.mu.Unlock()
		for conn := range h.clients {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			conn.Close()
			delete(h.clients, conn)
		}
	})
}

// HandleActivityWebSocket upgrades an authenticated admin request and keeps the
// connection registered until the client goes away.
func (h *ActivityHub) HandleActivityWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	h.Register(conn)
	defer h.Unregister(conn)

	officerID := middleware.OfficerID(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("officer_id", officerID).Info("Dashboard WebSocket closed.")
			} else {
				logrus.WithError(err).WithField("officer_id", officerID).Warn("Error reading from dashboard WebSocket.")
			}
			return
		}
		logrus.WithField("officer_id", officerID).Debug("Dashboard client sent unexpected message. Ignoring.")
	}
}
