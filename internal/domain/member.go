package domain

import "time"

// Member represents one connection's participation in a room.
// No transport or lifecycle logic here.
type Member struct {
	ConnID      ConnID    `json:"conn_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// NewMember avoids raw literals in the store and keeps construction obvious.
func NewMember(id ConnID, displayName string, joinedAt time.Time) Member {
	return Member{ConnID: id, DisplayName: displayName, JoinedAt: joinedAt}
}
