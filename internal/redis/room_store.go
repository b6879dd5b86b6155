package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/texasdave2/chatroom/internal/domain"
)

const (
	roomSetKey      = "chatrooms"
	connectedKey    = "connected_users"
	moodKeyPrefix   = "mood_counts:"
	safetyKeyPrefix = "safety_counts:"

	scanBatchSize = 100
)

// RoomStore keeps the active-room set, the per-room analysis counters, and
// the connected-user counter. Shared by every instance; all writes are single
// atomic commands.
type RoomStore struct {
	rdb *goredis.Client
}

// NewRoomStore creates a RoomStore on top of an existing client.
func NewRoomStore(client *Client) *RoomStore {
	return &RoomStore{rdb: client.rdb}
}

// ActivateRoom marks a room as active. Idempotent.
func (s *RoomStore) ActivateRoom(ctx context.Context, roomID string) error {
	if err := s.rdb.SAdd(ctx, roomSetKey, roomID).Err(); err != nil {
		return fmt.Errorf("failed to activate room: %w", err)
	}
	return nil
}

// ListRooms returns every active room, excluding the reserved identifiers.
func (s *RoomStore) ListRooms(ctx context.Context) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, roomSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]string, 0, len(members))
	for _, room := range members {
		if domain.IsReservedRoomID(room) {
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// RoomCount returns the size of the active-room set, reserved ids included.
func (s *RoomStore) RoomCount(ctx context.Context) (int64, error) {
	count, err := s.rdb.SCard(ctx, roomSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

// IncrMood atomically increments a room's mood counter for a label.
func (s *RoomStore) IncrMood(ctx context.Context, roomID, label string) error {
	if err := s.rdb.HIncrBy(ctx, moodKeyPrefix+roomID, label, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment mood counter: %w", err)
	}
	return nil
}

// IncrSafety atomically increments a room's safety counter for a label.
func (s *RoomStore) IncrSafety(ctx context.Context, roomID, label string) error {
	if err := s.rdb.HIncrBy(ctx, safetyKeyPrefix+roomID, label, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment safety counter: %w", err)
	}
	return nil
}

// MoodCounts returns mood counters for every room that has been analyzed,
// with every label of the dimension present (zero if never incremented).
func (s *RoomStore) MoodCounts(ctx context.Context) (map[string]map[string]int64, error) {
	return s.counts(ctx, moodKeyPrefix, domain.MoodLabels)
}

// SafetyCounts returns safety counters for every analyzed room.
func (s *RoomStore) SafetyCounts(ctx context.Context) (map[string]map[string]int64, error) {
	return s.counts(ctx, safetyKeyPrefix, domain.SafetyLabels)
}

func (s *RoomStore) counts(ctx context.Context, prefix string, labels []string) (map[string]map[string]int64, error) {
	result := make(map[string]map[string]int64)

	iter := s.rdb.Scan(ctx, 0, prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		roomID := strings.TrimPrefix(key, prefix)

		fields, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read counters for %s: %w", key, err)
		}

		counts := make(map[string]int64, len(labels))
		for _, label := range labels {
			counts[label] = 0
			if raw, ok := fields[label]; ok {
				n, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					continue // corrupt field, report as zero
				}
				counts[label] = n
			}
		}
		result[roomID] = counts
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan counter keys: %w", err)
	}

	return result, nil
}

// ConnectedUsers returns the current connected-user count. Missing key reads
// as zero.
func (s *RoomStore) ConnectedUsers(ctx context.Context) (int64, error) {
	raw, err := s.rdb.Get(ctx, connectedKey).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read connected users: %w", err)
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("connected users counter holds invalid value %q: %w", raw, err)
	}
	return count, nil
}

// IncrConnected increments the connected-user counter.
func (s *RoomStore) IncrConnected(ctx context.Context) error {
	if err := s.rdb.Incr(ctx, connectedKey).Err(); err != nil {
		return fmt.Errorf("failed to increment connected users: %w", err)
	}
	return nil
}

// DecrConnected decrements the connected-user counter.
func (s *RoomStore) DecrConnected(ctx context.Context) error {
	if err := s.rdb.Decr(ctx, connectedKey).Err(); err != nil {
		return fmt.Errorf("failed to decrement connected users: %w", err)
	}
	return nil
}
