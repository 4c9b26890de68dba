package core

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pomecrenate/parley/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNameTaken    = errors.New("room name taken")
)

// RoomSummary is a read-only view for listings (no transport fields).
type RoomSummary struct {
	ID          domain.RoomID   `json:"id"`
	Name        domain.RoomName `json:"name"`
	Owner       string          `json:"owner"`
	MemberCount int             `json:"member_count"`
	Members     []string        `json:"members"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewRoomSummary snapshots a live room into its listing view.
func NewRoomSummary(room *domain.Room) RoomSummary {
	return RoomSummary{
		ID:          room.ID,
		Name:        room.Name,
		Owner:       room.OwnerName(),
		MemberCount: len(room.Members),
		Members:     room.MemberNames(),
		CreatedAt:   room.CreatedAt,
	}
}

// Removal reports what RemoveMember did so the coordinator can decide
// on succession and deletion notices. Member is the entry as the room
// knew it, valid only when Removed is true.
type Removal struct {
	Removed     bool
	WasOwner    bool
	RoomDeleted bool
	Member      domain.Member
	Room        *domain.Room
}

// RoomStore is the in-memory home of every live room, keyed by id and by
// case-insensitive name. Like the registry it carries no lock: the
// coordinator is its only caller and serializes every access.
type RoomStore struct {
	byID   map[domain.RoomID]*domain.Room
	byName map[string]domain.RoomID
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		byID:   make(map[domain.RoomID]*domain.Room),
		byName: make(map[string]domain.RoomID),
	}
}

// Create makes a room with the caller as sole member and owner.
// Name collisions are checked case-insensitively against live rooms only;
// a deleted room frees its name immediately.
func (s *RoomStore) Create(name domain.RoomName, owner domain.ConnID, ownerName string, now time.Time) (*domain.Room, error) {
	if _, taken := s.byName[name.Key()]; taken {
		return nil, ErrNameTaken
	}
	room := &domain.Room{
		ID:        domain.RoomID(uuid.NewString()),
		Name:      name,
		OwnerID:   owner,
		Members:   []domain.Member{domain.NewMember(owner, ownerName, now)},
		CreatedAt: now,
	}
	s.byID[room.ID] = room
	s.byName[name.Key()] = room.ID
	log.Info().Str("module", "core.store").Str("room", string(room.ID)).Str("name", string(name)).Msg("room created")
	return room, nil
}

func (s *RoomStore) Get(id domain.RoomID) (*domain.Room, bool) {
	room, ok := s.byID[id]
	return room, ok
}

// NameTaken reports whether a live room already claims the name. Create
// checks this itself; the coordinator peeks before running an implicit
// leave so a doomed create leaves no trace.
func (s *RoomStore) NameTaken(name domain.RoomName) bool {
	_, taken := s.byName[name.Key()]
	return taken
}

// AddMember appends the connection to the room's member list. Adding an
// existing member is a no-op reported through added=false.
func (s *RoomStore) AddMember(id domain.RoomID, conn domain.ConnID, displayName string, now time.Time) (room *domain.Room, added bool, err error) {
	room, ok := s.byID[id]
	if !ok {
		return nil, false, ErrRoomNotFound
	}
	if room.HasMember(conn) {
		return room, false, nil
	}
	room.Members = append(room.Members, domain.NewMember(conn, displayName, now))
	return room, true, nil
}

// RemoveMember drops the connection from the room. When the last member
// goes, the room is deleted in the same step so no empty room is ever
// observable. Ownership succession is the coordinator's call; this only
// reports whether the departing member owned the room.
func (s *RoomStore) RemoveMember(id domain.RoomID, conn domain.ConnID) (Removal, error) {
	room, ok := s.byID[id]
	if !ok {
		return Removal{}, ErrRoomNotFound
	}
	i := room.MemberIndex(conn)
	if i < 0 {
		return Removal{Room: room}, nil
	}
	res := Removal{Removed: true, WasOwner: room.OwnerID == conn, Member: room.Members[i], Room: room}
	room.Members = append(room.Members[:i], room.Members[i+1:]...)
	if len(room.Members) == 0 {
		delete(s.byID, room.ID)
		delete(s.byName, room.Name.Key())
		res.RoomDeleted = true
		log.Info().Str("module", "core.store").Str("room", string(room.ID)).Str("name", string(room.Name)).Msg("room deleted")
	}
	return res, nil
}

// SetOwner records the succession decision made by the coordinator.
func (s *RoomStore) SetOwner(id domain.RoomID, owner domain.ConnID) error {
	room, ok := s.byID[id]
	if !ok {
		return ErrRoomNotFound
	}
	room.OwnerID = owner
	return nil
}

// NextSeq hands out the room's next monotonic message id.
func (s *RoomStore) NextSeq(id domain.RoomID) (int64, error) {
	room, ok := s.byID[id]
	if !ok {
		return 0, ErrRoomNotFound
	}
	return room.NextSeq(), nil
}

// List snapshots summaries of every live room, oldest first.
func (s *RoomStore) List() []RoomSummary {
	out := make([]RoomSummary, 0, len(s.byID))
	for _, room := range s.byID {
		out = append(out, NewRoomSummary(room))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *RoomStore) Len() int {
	return len(s.byID)
}
