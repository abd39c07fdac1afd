package websocket

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxMessageSize  = 4096
	readBufferSize  = 1024
	writeBufferSize = 1024
	closeWriteWait  = time.Second
)

// Hub is the part of the broadcaster a connection talks to.
type Hub interface {
	Register(conn *websocket.Conn) error
	Unregister(conn *websocket.Conn)
	Submit(conn *websocket.Conn, payload []byte)
}

// Handler upgrades storefront status connections and pumps their messages into the hub.
type Handler struct {
	hub      Hub
	upgrader websocket.Upgrader
}

func NewHandler(hub Hub, origins *OriginPolicy) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     origins.CheckOrigin,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		slog.Debug("WebSocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	if err := h.hub.Register(conn); err != nil {
		slog.Warn("WebSocket registration failed", "error", err, "remote_addr", r.RemoteAddr)
		// A timed-out Register may still be applied later; the queued unregister undoes it.
		h.hub.Unregister(conn)
		closeWithReason(conn, websocket.CloseTryAgainLater, "server busy")
		return
	}

	go h.readPump(conn)
}

// readPump forwards client messages until the connection fails, then unregisters it.
func (h *Handler) readPump(conn *websocket.Conn) {
	defer h.hub.Unregister(conn)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("WebSocket read failed", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		h.hub.Submit(conn, payload)
	}
}

func closeWithReason(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		slog.Debug("Failed to send close frame", "error", err)
	}
	_ = conn.Close()
}
