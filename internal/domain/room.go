package domain

import (
	"errors"
	"strings"
	"time"
)

const MaxRoomNameLen = 36

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
)

type (
	RoomName string
	RoomID   string
)

// Key is the case-insensitive uniqueness key for a room name.
func (n RoomName) Key() string {
	return strings.ToLower(string(n))
}

// NormalizeRoomName trims and validates a client-supplied room name.
func NormalizeRoomName(raw string) (RoomName, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrRoomNameEmpty
	}
	if len([]rune(name)) > MaxRoomNameLen {
		return "", ErrRoomNameTooLong
	}
	return RoomName(name), nil
}

// Room is the coordinator's record of one live room. Members keep
// arrival order; that order is the tie-break for ownership succession.
type Room struct {
	ID        RoomID
	Name      RoomName
	OwnerID   ConnID
	Members   []Member
	CreatedAt time.Time

	seq int64
}

// NextSeq hands out the room's monotonic message id.
func (r *Room) NextSeq() int64 {
	r.seq++
	return r.seq
}

// MemberIndex returns the position of id in the member list, or -1.
func (r *Room) MemberIndex(id ConnID) int {
	for i, m := range r.Members {
		if m.ConnID == id {
			return i
		}
	}
	return -1
}

// HasMember reports whether id currently occupies the room.
func (r *Room) HasMember(id ConnID) bool {
	return r.MemberIndex(id) >= 0
}

// MemberIDs snapshots the member connection ids in arrival order.
func (r *Room) MemberIDs() []ConnID {
	ids := make([]ConnID, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.ConnID
	}
	return ids
}

// MemberNames snapshots the member display names in arrival order.
func (r *Room) MemberNames() []string {
	names := make([]string, len(r.Members))
	for i, m := range r.Members {
		names[i] = m.DisplayName
	}
	return names
}

// OwnerName returns the display name of the current owner, or "" if the
// owner is somehow absent from the member list.
func (r *Room) OwnerName() string {
	if i := r.MemberIndex(r.OwnerID); i >= 0 {
		return r.Members[i].DisplayName
	}
	return ""
}
