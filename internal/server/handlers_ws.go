package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser clients connect from arbitrary origins
	},
}

// clientCommand is the control frame clients send on the socket.
// Delivery frames flow the other way only.
type clientCommand struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	ip := c.RealIP()
	ok, reason := s.limits.Acquire(ip)
	if !ok {
		slog.Warn("Connection rejected", "ip", ip, "reason", reason)
		if reason == limitReasonGlobal {
			return c.String(http.StatusServiceUnavailable, "Server at capacity")
		}
		return c.String(http.StatusTooManyRequests, "Too many connections")
	}
	defer s.limits.Release(ip)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	connID := uuid.New()
	s.hub.Register(connID, conn)

	// Rooms may also be joined at connect time via query parameters.
	for _, room := range c.QueryParams()["room"] {
		s.hub.Join(connID, room)
	}

	// Read pump — control frames only, blocks until the connection closes.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			slog.Debug("Ignoring malformed client frame", "connection_id", connID, "error", err)
			continue
		}

		switch cmd.Action {
		case "join":
			s.hub.Join(connID, cmd.Room)
		case "leave":
			s.hub.Leave(connID, cmd.Room)
		default:
			slog.Debug("Ignoring unknown client action", "connection_id", connID, "action", cmd.Action)
		}
	}

	s.hub.Unregister(connID)

	return nil
}
