package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/broadside/internal/auth"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware
	},
}

// SnapshotSource returns the latest snapshot of a match.
type SnapshotSource interface {
	Snapshot(ctx context.Context, matchID string) (json.RawMessage, error)
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub       *Hub
	jwtMgr    *auth.JWTManager
	snapshots SnapshotSource
}

// NewWSHandler creates a WSHandler. snapshots may be nil.
func NewWSHandler(hub *Hub, jwtMgr *auth.JWTManager, snapshots SnapshotSource) *WSHandler {
	return &WSHandler{hub: hub, jwtMgr: jwtMgr, snapshots: snapshots}
}

// ServeWS handles GET /api/v1/ws and upgrades to WebSocket.
// Auth via ?token= query parameter (WebSocket can't send headers). An
// optional ?match= subscribes the connection right after the welcome.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, `{"error":"missing token parameter"}`, http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtMgr.ValidateKind(tokenStr, auth.KindAccess)
	if err != nil {
		http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSConn{
		conn:        conn,
		spectatorID: claims.SpectatorID,
		send:        make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)

	h.hub.SendTo(client, WSEvent{Type: EventConnected, Data: map[string]string{"spectator_id": claims.SpectatorID}})
	if matchID := r.URL.Query().Get("match"); matchID != "" {
		h.handleClientMessage(client, ClientMessage{Action: "subscribe", MatchID: matchID})
	}

	go h.writePump(client)
	go h.readPump(client)

	log.Info().Str("spectatorId", claims.SpectatorID).Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// readPump reads messages from the WebSocket connection.
func (h *WSHandler) readPump(c *WSConn) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("spectatorId", c.spectatorID).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("spectatorId", c.spectatorID).Msg("WebSocket unexpected close")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.hub.SendTo(c, WSEvent{Type: EventError, Data: "malformed message"})
			continue
		}
		h.handleClientMessage(c, msg)
	}
}

// handleClientMessage applies a subscribe or unsubscribe request. A new
// subscriber gets the latest snapshot right away when one exists.
func (h *WSHandler) handleClientMessage(c *WSConn, msg ClientMessage) {
	if msg.MatchID == "" {
		return
	}
	switch msg.Action {
	case "subscribe":
		h.hub.Subscribe(c, msg.MatchID)
		var latest json.RawMessage
		if h.snapshots != nil {
			if snap, err := h.snapshots.Snapshot(context.Background(), msg.MatchID); err == nil {
				latest = snap
			}
		}
		h.hub.SendTo(c, WSEvent{Type: EventSubscribed, MatchID: msg.MatchID, Data: latest})
	case "unsubscribe":
		h.hub.Unsubscribe(c, msg.MatchID)
	default:
		h.hub.SendTo(c, WSEvent{Type: EventError, MatchID: msg.MatchID, Data: "unknown action " + msg.Action})
	}
}

// writePump sends queued events one frame each and keeps the connection
// alive with pings.
func (h *WSHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("spectatorId", c.spectatorID).Msg("WebSocket write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
