package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/texasdave2/chatroom/internal/domain"
	"github.com/texasdave2/chatroom/internal/metrics"
)

// assistantTimeout bounds the synchronous assistant call on the submit path.
const assistantTimeout = 10 * time.Second

// Service is the application layer. It owns the ingress side effects and the
// admin read path; delivery and analysis consume the broker independently.
type Service struct {
	rooms     domain.RoomStore
	publisher domain.Publisher
	responder domain.Responder
}

// NewService creates the application layer service.
// responder may be nil when no agent is configured; the assistant path is
// then disabled.
func NewService(rooms domain.RoomStore, publisher domain.Publisher, responder domain.Responder) *Service {
	return &Service{
		rooms:     rooms,
		publisher: publisher,
		responder: responder,
	}
}

// Submit accepts a message for a room. On success the message has been
// accepted by the broker; delivery and analysis happen asynchronously.
//
// The three side effects (room activation, room publish, analysis publish)
// are independent and non-transactional: activation and analysis failures are
// logged but do not fail the submission.
func (s *Service) Submit(ctx context.Context, roomID, user, text string) error {
	if roomID == "" {
		return fmt.Errorf("room identifier is required")
	}
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	if err := s.rooms.ActivateRoom(ctx, roomID); err != nil {
		slog.Error("Failed to activate room", "room_id", roomID, "error", err)
	}

	msg := domain.Message{RoomID: roomID, User: user, Text: text}
	if err := s.publisher.PublishMessage(ctx, roomID, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	metrics.MessagesPublishedTotal.WithLabelValues("room").Inc()

	if err := s.publisher.PublishAnalysis(ctx, domain.AnalysisRequest{RoomID: roomID, Text: text}); err != nil {
		slog.Error("Failed to publish analysis request", "room_id", roomID, "error", err)
	}

	if s.responder != nil && strings.HasPrefix(strings.TrimSpace(text), domain.AssistantPrefix) {
		s.replyAsAssistant(ctx, roomID, text)
	}

	return nil
}

// replyAsAssistant publishes the assistant's answer as a second message.
// Best effort: any failure skips the reply, the original message stands.
func (s *Service) replyAsAssistant(ctx context.Context, roomID, prompt string) {
	callCtx, cancel := context.WithTimeout(ctx, assistantTimeout)
	defer cancel()

	reply, err := s.responder.Respond(callCtx, prompt)
	if err != nil {
		slog.Warn("Assistant reply failed, skipping", "room_id", roomID, "error", err)
		metrics.AssistantRepliesTotal.WithLabelValues("error").Inc()
		return
	}

	msg := domain.Message{RoomID: roomID, User: domain.AssistantUser, Text: reply}
	if err := s.publisher.PublishMessage(ctx, roomID, msg); err != nil {
		slog.Warn("Failed to publish assistant reply", "room_id", roomID, "error", err)
		metrics.AssistantRepliesTotal.WithLabelValues("error").Inc()
		return
	}
	metrics.AssistantRepliesTotal.WithLabelValues("ok").Inc()

	if err := s.publisher.PublishAnalysis(ctx, domain.AnalysisRequest{RoomID: roomID, Text: reply}); err != nil {
		slog.Error("Failed to publish analysis for assistant reply", "room_id", roomID, "error", err)
	}
}

// Broadcast publishes an admin message to every connected client. Broadcasts
// are not room messages: they skip activation and analysis.
func (s *Service) Broadcast(ctx context.Context, user, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	msg := domain.Message{User: user, Text: text}
	if err := s.publisher.PublishBroadcast(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish broadcast: %w", err)
	}
	metrics.MessagesPublishedTotal.WithLabelValues("broadcast").Inc()
	return nil
}

// ListRooms returns the active rooms, reserved identifiers excluded.
func (s *Service) ListRooms(ctx context.Context) ([]string, error) {
	return s.rooms.ListRooms(ctx)
}

// MetricsSnapshot is the admin metrics read model. Fields are read
// independently and may reflect slightly different points in time.
type MetricsSnapshot struct {
	Rooms          int64 `json:"chatrooms"`
	ConnectedUsers int64 `json:"connected_users"`
}

// Metrics returns the room count and connected-user count.
func (s *Service) Metrics(ctx context.Context) (MetricsSnapshot, error) {
	roomCount, err := s.rooms.RoomCount(ctx)
	if err != nil {
		return MetricsSnapshot{}, err
	}

	connected, err := s.rooms.ConnectedUsers(ctx)
	if err != nil {
		return MetricsSnapshot{}, err
	}

	return MetricsSnapshot{Rooms: roomCount, ConnectedUsers: connected}, nil
}

// MoodAnalysis returns per-room mood counters.
func (s *Service) MoodAnalysis(ctx context.Context) (map[string]map[string]int64, error) {
	return s.rooms.MoodCounts(ctx)
}

// SafetyAnalysis returns per-room safety counters.
func (s *Service) SafetyAnalysis(ctx context.Context) (map[string]map[string]int64, error) {
	return s.rooms.SafetyCounts(ctx)
}
