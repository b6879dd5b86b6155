package server

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/texasdave2/chatroom/internal/chat"
	"github.com/texasdave2/chatroom/internal/config"
	"github.com/texasdave2/chatroom/internal/registry"
	"github.com/texasdave2/chatroom/internal/websocket"
)

// mockChatService implements ChatService with overridable functions.
type mockChatService struct {
	submitFn    func(ctx context.Context, roomID, user, text string) error
	broadcastFn func(ctx context.Context, user, text string) error
	listRoomsFn func(ctx context.Context) ([]string, error)
	metricsFn   func(ctx context.Context) (chat.MetricsSnapshot, error)
	moodFn      func(ctx context.Context) (map[string]map[string]int64, error)
	safetyFn    func(ctx context.Context) (map[string]map[string]int64, error)
}

func (m *mockChatService) Submit(ctx context.Context, roomID, user, text string) error {
	if m.submitFn != nil {
		return m.submitFn(ctx, roomID, user, text)
	}
	return nil
}

func (m *mockChatService) Broadcast(ctx context.Context, user, text string) error {
	if m.broadcastFn != nil {
		return m.broadcastFn(ctx, user, text)
	}
	return nil
}

func (m *mockChatService) ListRooms(ctx context.Context) ([]string, error) {
	if m.listRoomsFn != nil {
		return m.listRoomsFn(ctx)
	}
	return nil, nil
}

func (m *mockChatService) Metrics(ctx context.Context) (chat.MetricsSnapshot, error) {
	if m.metricsFn != nil {
		return m.metricsFn(ctx)
	}
	return chat.MetricsSnapshot{}, nil
}

func (m *mockChatService) MoodAnalysis(ctx context.Context) (map[string]map[string]int64, error) {
	if m.moodFn != nil {
		return m.moodFn(ctx)
	}
	return nil, nil
}

func (m *mockChatService) SafetyAnalysis(ctx context.Context) (map[string]map[string]int64, error) {
	if m.safetyFn != nil {
		return m.safetyFn(ctx)
	}
	return nil, nil
}

type nopCounter struct{}

func (nopCounter) IncrConnected(context.Context) error { return nil }
func (nopCounter) DecrConnected(context.Context) error { return nil }

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

type testServer struct {
	*Server
	membership *registry.Membership
}

func newTestServer(t *testing.T, chatSvc ChatService) *testServer {
	t.Helper()

	cfg := &config.Config{Port: "0"}
	membership := registry.NewMembership()
	hub := websocket.NewHub(membership, nopCounter{}, clockwork.NewRealClock())
	t.Cleanup(hub.Stop)

	return &testServer{
		Server:     NewServer(cfg, chatSvc, hub, &fakePinger{}),
		membership: membership,
	}
}
