package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/texasdave2/chatroom/internal/domain"
)

// PubSub is the broker used between ingress, fan-out, and analysis. Ingress
// publishes and never waits for consumers; consumers hold long-lived
// subscriptions.
type PubSub struct {
	rdb *goredis.Client
}

// NewPubSub creates a new PubSub instance.
func NewPubSub(client *Client) *PubSub {
	return &PubSub{rdb: client.rdb}
}

// PublishMessage publishes a chat message to its room channel.
func (ps *PubSub) PublishMessage(ctx context.Context, roomID string, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return ps.rdb.Publish(ctx, domain.RoomChannel(roomID), data).Err()
}

// PublishBroadcast publishes an admin message to the broadcast channel.
// The payload carries no room identifier; the fan-out engine tags it.
func (ps *PubSub) PublishBroadcast(ctx context.Context, msg domain.Message) error {
	msg.RoomID = ""
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}
	return ps.rdb.Publish(ctx, domain.BroadcastChannel(), data).Err()
}

// PublishAnalysis enqueues a message for the analysis pipeline.
func (ps *PubSub) PublishAnalysis(ctx context.Context, req domain.AnalysisRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis request: %w", err)
	}
	return ps.rdb.Publish(ctx, domain.AnalysisChannel, data).Err()
}

// RoomEvent is one message received on a room channel, still encoded. Channel
// tells the consumer which room channel delivered it.
type RoomEvent struct {
	Channel string
	Payload []byte
}

// RoomSubscription is an active pattern subscription over all room channels.
// Ch closes when the underlying subscription dies; consumers treat that as
// fatal and exit their loop.
type RoomSubscription struct {
	sub    *goredis.PubSub
	Ch     <-chan RoomEvent
	cancel context.CancelFunc
}

// Close unsubscribes and closes the subscription.
func (s *RoomSubscription) Close() {
	s.cancel()
	_ = s.sub.Close()
}

// SubscribeRooms subscribes to every room channel, including the broadcast
// channel, via a single pattern subscription.
func (ps *PubSub) SubscribeRooms(ctx context.Context) *RoomSubscription {
	sub := ps.rdb.PSubscribe(ctx, domain.RoomChannelPattern)

	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan RoomEvent, 64)

	go func() {
		defer close(ch)
		msgCh := sub.Channel()
		for {
			select {
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				select {
				case ch <- RoomEvent{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-subCtx.Done():
					return
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &RoomSubscription{sub: sub, Ch: ch, cancel: cancel}
}

// AnalysisSubscription is an active subscription on the analysis channel.
type AnalysisSubscription struct {
	sub    *goredis.PubSub
	Ch     <-chan domain.AnalysisRequest
	cancel context.CancelFunc
}

// Close unsubscribes and closes the subscription.
func (s *AnalysisSubscription) Close() {
	s.cancel()
	_ = s.sub.Close()
}

// SubscribeAnalysis subscribes to the analysis channel. Undecodable payloads
// are logged and skipped; they never stop the stream.
func (ps *PubSub) SubscribeAnalysis(ctx context.Context) *AnalysisSubscription {
	sub := ps.rdb.Subscribe(ctx, domain.AnalysisChannel)

	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan domain.AnalysisRequest, 64)

	go func() {
		defer close(ch)
		msgCh := sub.Channel()
		for {
			select {
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				var req domain.AnalysisRequest
				if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
					slog.Warn("Failed to unmarshal analysis request", "error", err)
					continue
				}
				select {
				case ch <- req:
				case <-subCtx.Done():
					return
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &AnalysisSubscription{sub: sub, Ch: ch, cancel: cancel}
}
