package domain

import "strings"

const (
	// roomChannelPrefix scopes every room channel on the broker.
	roomChannelPrefix = "chatroom:"

	// RoomChannelPattern matches all room channels, including the broadcast
	// channel. The fan-out engine subscribes to this pattern once at startup.
	RoomChannelPattern = roomChannelPrefix + "*"

	// BroadcastRoomID is the reserved room identifier for the admin broadcast
	// channel. Messages published here reach every connected client.
	BroadcastRoomID = "broadcast"

	// AnalysisChannel is the single fixed channel the analysis pipeline
	// consumes from.
	AnalysisChannel = "chat-analysis"
)

// ReservedRoomIDs are identifiers excluded from room listings because they
// denote the administrative broadcast channel, not chat rooms.
var ReservedRoomIDs = []string{"all", BroadcastRoomID}

// RoomChannel returns the broker channel name for a room.
func RoomChannel(roomID string) string {
	return roomChannelPrefix + roomID
}

// BroadcastChannel is the broker channel name for admin broadcasts.
func BroadcastChannel() string {
	return RoomChannel(BroadcastRoomID)
}

// RoomFromChannel extracts the room identifier from a broker channel name.
// The second return is false if the channel is not room-scoped.
func RoomFromChannel(channel string) (string, bool) {
	room, ok := strings.CutPrefix(channel, roomChannelPrefix)
	if !ok || room == "" {
		return "", false
	}
	return room, true
}

// IsReservedRoomID reports whether the identifier is excluded from room
// listings.
func IsReservedRoomID(roomID string) bool {
	for _, r := range ReservedRoomIDs {
		if r == roomID {
			return true
		}
	}
	return false
}
