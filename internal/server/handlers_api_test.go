package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texasdave2/chatroom/internal/chat"
)

func doJSON(srv *testServer, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestSubmitMessage_Success(t *testing.T) {
	var gotRoom, gotUser, gotText string
	svc := &mockChatService{
		submitFn: func(_ context.Context, roomID, user, text string) error {
			gotRoom, gotUser, gotText = roomID, user, text
			return nil
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(srv, http.MethodPost, "/chatrooms/lobby/messages", `{"user":"alice","text":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"message published"}`, rec.Body.String())
	assert.Equal(t, "lobby", gotRoom)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "hello", gotText)
}

func TestSubmitMessage_EmptyText(t *testing.T) {
	srv := newTestServer(t, &mockChatService{})

	rec := doJSON(srv, http.MethodPost, "/chatrooms/lobby/messages", `{"user":"alice","text":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text cannot be empty")
}

func TestSubmitMessage_EmptyUser(t *testing.T) {
	srv := newTestServer(t, &mockChatService{})

	rec := doJSON(srv, http.MethodPost, "/chatrooms/lobby/messages", `{"user":"","text":"hello"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user cannot be empty")
}

func TestSubmitMessage_ReservedRoom(t *testing.T) {
	srv := newTestServer(t, &mockChatService{})

	for _, room := range []string{"all", "broadcast"} {
		rec := doJSON(srv, http.MethodPost, "/chatrooms/"+room+"/messages", `{"user":"alice","text":"hello"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "room %q should be rejected", room)
	}
}

func TestSubmitMessage_TooLong(t *testing.T) {
	srv := newTestServer(t, &mockChatService{})

	long := strings.Repeat("a", maxMessageLength+1)
	rec := doJSON(srv, http.MethodPost, "/chatrooms/lobby/messages", `{"user":"alice","text":"`+long+`"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitMessage_ServiceFailure(t *testing.T) {
	svc := &mockChatService{
		submitFn: func(context.Context, string, string, string) error {
			return errors.New("broker down")
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(srv, http.MethodPost, "/chatrooms/lobby/messages", `{"user":"alice","text":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListRooms(t *testing.T) {
	svc := &mockChatService{
		listRoomsFn: func(context.Context) ([]string, error) {
			return []string{"lobby", "games"}, nil
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(srv, http.MethodGet, "/chatrooms", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chatrooms":["lobby","games"]}`, rec.Body.String())
}

func TestBroadcast_Success(t *testing.T) {
	var gotUser, gotText string
	svc := &mockChatService{
		broadcastFn: func(_ context.Context, user, text string) error {
			gotUser, gotText = user, text
			return nil
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(srv, http.MethodPost, "/admin/broadcast", `{"user":"admin","text":"maintenance at noon"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"message published to all clients"}`, rec.Body.String())
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "maintenance at noon", gotText)
}

func TestBroadcast_EmptyText(t *testing.T) {
	srv := newTestServer(t, &mockChatService{})

	rec := doJSON(srv, http.MethodPost, "/admin/broadcast", `{"user":"admin","text":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminMetrics(t *testing.T) {
	svc := &mockChatService{
		metricsFn: func(context.Context) (chat.MetricsSnapshot, error) {
			return chat.MetricsSnapshot{Rooms: 3, ConnectedUsers: 12}, nil
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(srv, http.MethodGet, "/admin/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chatrooms":3,"connected_users":12}`, rec.Body.String())
}

func TestMoodAnalysis(t *testing.T) {
	svc := &mockChatService{
		moodFn: func(context.Context) (map[string]map[string]int64, error) {
			return map[string]map[string]int64{
				"lobby": {"happy": 2, "sad": 0, "neutral": 1},
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(srv, http.MethodGet, "/admin/mood_analysis", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lobby":{"happy":2,"sad":0,"neutral":1}}`, rec.Body.String())
}

func TestSafetyAnalysis_ReadFailure(t *testing.T) {
	svc := &mockChatService{
		safetyFn: func(context.Context) (map[string]map[string]int64, error) {
			return nil, errors.New("redis down")
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(srv, http.MethodGet, "/admin/safety_analysis", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
