package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const rateLimitedMessage = "Too many forecast requests"

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// SelectRequest is sent by the browser when the selector changes
type SelectRequest struct {
	Region string `json:"region"`
}

// SelectorMessage is pushed back for every selection
type SelectorMessage struct {
	Type   string      `json:"type"` // "dashboard" or "error"
	Region string      `json:"region"`
	Status int         `json:"status,omitempty"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Selector streams a fresh dashboard every time the client selects a region.
// The default region is pushed right after the upgrade.
// GET /ws
func (h *Handler) Selector(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.metrics.WebsocketConnected(1)
	defer h.metrics.WebsocketConnected(-1)

	log := h.logger.WithContext(r.Context())
	log.Debug("Selector client connected")

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	if region, err := h.service.DefaultRegion(); err == nil {
		if err := h.push(conn, r, region); err != nil {
			return
		}
	}

	for {
		var req SelectRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("Selector read failed")
			}
			return
		}

		if err := h.push(conn, r, req.Region); err != nil {
			log.WithError(err).Warn("Selector write failed")
			return
		}
	}
}

// push recomputes the dashboard for region and writes it to conn.
// Every selection spends one token of the shared limiter.
func (h *Handler) push(conn *websocket.Conn, r *http.Request, region string) error {
	msg := SelectorMessage{Type: "dashboard", Region: region}

	if h.limiter != nil && !h.limiter.Allow() {
		msg.Type = "error"
		msg.Status = http.StatusTooManyRequests
		msg.Error = rateLimitedMessage
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	d, err := h.service.Build(r.Context(), region)
	if err != nil {
		msg.Type = "error"
		msg.Status = statusFor(err)
		msg.Error = err.Error()
		if msg.Status == http.StatusInternalServerError {
			h.logger.WithContext(r.Context()).WithError(err).Error("Selector build failed")
			msg.Error = "Internal server error"
		}
	} else {
		msg.Data = d
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// pingLoop sends periodic pings to keep the connection alive
func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
