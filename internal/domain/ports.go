package domain

import "context"

// Publisher is the ingress-side broker contract: fire a payload at a channel
// and return once the broker accepts it.
type Publisher interface {
	PublishMessage(ctx context.Context, roomID string, msg Message) error
	PublishBroadcast(ctx context.Context, msg Message) error
	PublishAnalysis(ctx context.Context, req AnalysisRequest) error
}

// RoomStore tracks which rooms have ever received a message, plus the derived
// counters the admin read path reports on.
type RoomStore interface {
	ActivateRoom(ctx context.Context, roomID string) error
	ListRooms(ctx context.Context) ([]string, error)
	RoomCount(ctx context.Context) (int64, error)

	IncrMood(ctx context.Context, roomID, label string) error
	IncrSafety(ctx context.Context, roomID, label string) error
	MoodCounts(ctx context.Context) (map[string]map[string]int64, error)
	SafetyCounts(ctx context.Context) (map[string]map[string]int64, error)

	ConnectedUsers(ctx context.Context) (int64, error)
	IncrConnected(ctx context.Context) error
	DecrConnected(ctx context.Context) error
}

// Classifier labels a piece of text along one dimension. Implementations own
// their transport; callers own the timeout via ctx.
type Classifier interface {
	Classify(ctx context.Context, text string, dim Dimension) (string, error)
}

// Responder produces an assistant reply for a prompt. Best effort: callers
// drop the reply on error.
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
}
