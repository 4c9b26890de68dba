package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pomecrenate/parley/internal/core"
	"github.com/pomecrenate/parley/internal/domain"
)

// Inbound event names accepted on the wire.
const (
	EvCreateRoom  = "create_room"
	EvJoinRoom    = "join_room"
	EvLeaveRoom   = "leave_room"
	EvChatMessage = "chat_message"
	EvListRooms   = "list_rooms"
	EvWhoami      = "whoami"
	EvPing        = "ping"
)

// Outbound event names.
const (
	EvRoomCreated          = "room_created"
	EvRoomCreationFailed   = "room_creation_failed"
	EvJoinConfirmed        = "join_confirmed"
	EvJoinFailed           = "join_failed"
	EvUserJoined           = "user_joined"
	EvUserLeft             = "user_left"
	EvOwnershipTransferred = "ownership_transferred"
	EvOwnerChanged         = "owner_changed"
	EvLeaveConfirmed       = "leave_confirmed"
	EvRoomsList            = "rooms_list"
	EvPong                 = "pong"
	EvError                = "error"
)

// Error codes carried by EvError payloads.
const (
	CodeNotInRoom      = "not_in_room"
	CodeInvalidMessage = "invalid_message"
	CodeBadPayload     = "bad_payload"
	CodeRateLimited    = "rate_limited"
)

// Envelope is the wire framing: a tagged type plus an opaque payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeFrame marshals one outbound event into a wire frame. Callers
// encode once and fan the same frame out to every target.
func EncodeFrame(eventType string, payload any) (core.Frame, error) {
	env := Envelope{Type: eventType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
		}
		env.Payload = raw
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", eventType, err)
	}
	return core.Frame(frame), nil
}

// Event is the closed set of inbound coordinator events. The transport
// adapter decodes wire frames into exactly these values; nothing else
// reaches the coordinator.
type Event interface{ isEvent() }

type CreateRoom struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type JoinRoom struct {
	RoomID      domain.RoomID `json:"room_id"`
	DisplayName string        `json:"display_name"`
}

type LeaveRoom struct {
	RoomID domain.RoomID `json:"room_id"`
}

type ChatMessage struct {
	RoomID domain.RoomID `json:"room_id"`
	Text   string        `json:"text"`
}

type ListRooms struct{}

type Whoami struct{}

func (CreateRoom) isEvent()  {}
func (JoinRoom) isEvent()    {}
func (LeaveRoom) isEvent()   {}
func (ChatMessage) isEvent() {}
func (ListRooms) isEvent()   {}
func (Whoami) isEvent()      {}

// Outbound payload shapes.

type RoomCreatedPayload struct {
	Room core.RoomSummary `json:"room"`
}

type RoomCreationFailedPayload struct {
	Reason string `json:"reason"`
}

type JoinConfirmedPayload struct {
	Room    core.RoomSummary `json:"room"`
	Members []string         `json:"members"`
}

type JoinFailedPayload struct {
	Reason string `json:"reason"`
}

type ChatMessagePayload struct {
	ID      int64     `json:"id"`
	User    string    `json:"user"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
	IsOwner bool      `json:"is_owner"`
}

type UserJoinedPayload struct {
	DisplayName string `json:"display_name"`
}

type UserLeftPayload struct {
	DisplayName string `json:"display_name"`
	WasOwner    bool   `json:"was_owner"`
}

type OwnershipTransferredPayload struct {
	Room core.RoomSummary `json:"room"`
}

type OwnerChangedPayload struct {
	NewOwner string `json:"new_owner"`
}

type LeaveConfirmedPayload struct {
	RoomDeleted bool   `json:"room_deleted"`
	NewOwner    string `json:"new_owner,omitempty"`
}

type RoomsListPayload struct {
	Rooms []core.RoomSummary `json:"rooms"`
}

type WhoamiPayload struct {
	ConnectionID string            `json:"connection_id"`
	DisplayName  string            `json:"display_name"`
	Room         *core.RoomSummary `json:"room,omitempty"`
}

type ErrorPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}
