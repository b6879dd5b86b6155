package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/texasdave2/chatroom/internal/domain"
	apperrors "github.com/texasdave2/chatroom/internal/errors"
)

const maxMessageLength = 2000

type submitRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

func validateSubmit(req submitRequest) error {
	if strings.TrimSpace(req.User) == "" {
		return apperrors.ValidationError("user cannot be empty")
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.ValidationError("text cannot be empty")
	}
	if len(req.Text) > maxMessageLength {
		return apperrors.ValidationError("text exceeds maximum length").
			WithField("max_length", maxMessageLength)
	}
	return nil
}

func (s *Server) handleSubmitMessage(c echo.Context) error {
	roomID := c.Param("room")
	if domain.IsReservedRoomID(roomID) {
		return apperrors.ValidationError("room identifier is reserved").
			WithField("room_id", roomID)
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validateSubmit(req); err != nil {
		return err
	}

	if err := s.chat.Submit(c.Request().Context(), roomID, req.User, req.Text); err != nil {
		return apperrors.InternalError("failed to publish message", err).
			WithField("room_id", roomID)
	}

	return c.JSON(200, map[string]string{"status": "message published"})
}

func (s *Server) handleListRooms(c echo.Context) error {
	rooms, err := s.chat.ListRooms(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to list chatrooms", err)
	}

	return c.JSON(200, map[string][]string{"chatrooms": rooms})
}

func (s *Server) handleBroadcast(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validateSubmit(req); err != nil {
		return err
	}

	if err := s.chat.Broadcast(c.Request().Context(), req.User, req.Text); err != nil {
		return apperrors.InternalError("failed to publish broadcast", err)
	}

	return c.JSON(200, map[string]string{"status": "message published to all clients"})
}

func (s *Server) handleAdminMetrics(c echo.Context) error {
	snapshot, err := s.chat.Metrics(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to read metrics", err)
	}

	return c.JSON(200, snapshot)
}

func (s *Server) handleMoodAnalysis(c echo.Context) error {
	counts, err := s.chat.MoodAnalysis(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to read mood analysis", err)
	}

	return c.JSON(200, counts)
}

func (s *Server) handleSafetyAnalysis(c echo.Context) error {
	counts, err := s.chat.SafetyAnalysis(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to read safety analysis", err)
	}

	return c.JSON(200, counts)
}
