package domain

// Message is a chat message as published to a room channel and pushed to
// websocket clients. Mood and Safety are set only when the message has been
// through analysis before delivery; they are omitted otherwise.
type Message struct {
	RoomID string `json:"room_id,omitempty"`
	User   string `json:"user"`
	Text   string `json:"text"`
	Mood   string `json:"mood,omitempty"`
	Safety string `json:"safety,omitempty"`
}

// AnalysisRequest is the payload published to the analysis channel for every
// submitted message. Only the fields the analysis worker needs travel here.
type AnalysisRequest struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

// AdminRoomID is the sentinel room identifier attached to broadcast messages
// before they are pushed to clients. It marks the message as coming from the
// admin channel rather than any chat room.
const AdminRoomID = "ADMIN"

// AssistantUser is the author name used when the assistant replies to a
// message that addressed it.
const AssistantUser = "Assistant"

// AssistantPrefix marks a message that requests an assistant reply.
const AssistantPrefix = "@assistant"
