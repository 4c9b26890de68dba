// Package domain contains entities without behaviour, just meta-data
// and the validation rules that guard it.
package domain

import (
	"strings"
)

const (
	MaxDisplayNameLen = 36

	// DefaultDisplayName is used when a client supplies no name at all.
	DefaultDisplayName = "guest"
)

type ConnID string

// Session is the per-connection state the coordinator tracks: who the
// connection claims to be and which room, if any, it currently occupies.
type Session struct {
	ID          ConnID `json:"id"`
	DisplayName string `json:"display_name"`
	RoomID      RoomID `json:"room_id,omitempty"`
}

// NewSession is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewSession(id ConnID, displayName string) *Session {
	return &Session{ID: id, DisplayName: NormalizeDisplayName(displayName)}
}

// InRoom reports whether the session currently occupies a room.
func (s *Session) InRoom() bool {
	return s.RoomID != ""
}

// NormalizeDisplayName trims, truncates to MaxDisplayNameLen runes and
// falls back to DefaultDisplayName when nothing usable remains.
func NormalizeDisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return DefaultDisplayName
	}
	if runes := []rune(name); len(runes) > MaxDisplayNameLen {
		name = string(runes[:MaxDisplayNameLen])
	}
	return name
}
