package core

import (
	"github.com/rs/zerolog/log"

	"github.com/pomecrenate/parley/internal/domain"
)

type registryEntry struct {
	Session *domain.Session
	Sender  Sender
}

// Registry maps live connection ids to their session state and transport
// handle. It carries no lock of its own: the coordinator serializes every
// access, so accessors must only be called under its mutex.
type Registry struct {
	entries map[domain.ConnID]*registryEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ConnID]*registryEntry)}
}

// Bind registers a freshly connected session with its transport handle.
func (r *Registry) Bind(id domain.ConnID, displayName string, sender Sender) *domain.Session {
	sess := domain.NewSession(id, displayName)
	r.entries[id] = &registryEntry{Session: sess, Sender: sender}
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Str("name", sess.DisplayName).Msg("bound connection")
	return sess
}

// Unbind drops the connection. The transport handle is not closed here;
// the adapter owns that.
func (r *Registry) Unbind(id domain.ConnID) {
	delete(r.entries, id)
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Msg("unbound connection")
}

func (r *Registry) Get(id domain.ConnID) (*domain.Session, bool) {
	if e, ok := r.entries[id]; ok {
		return e.Session, true
	}
	return nil, false
}

// SenderOf resolves the live transport handle for id, if any. A missing
// entry means the connection raced away; callers skip it.
func (r *Registry) SenderOf(id domain.ConnID) (Sender, bool) {
	if e, ok := r.entries[id]; ok {
		return e.Sender, true
	}
	return nil, false
}

// SetRoom records which room the connection currently occupies.
func (r *Registry) SetRoom(id domain.ConnID, roomID domain.RoomID) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.Session.RoomID = roomID
	return true
}

// ClearRoom resets the connection to the unjoined state.
func (r *Registry) ClearRoom(id domain.ConnID) {
	if e, ok := r.entries[id]; ok {
		e.Session.RoomID = ""
	}
}

func (r *Registry) Len() int {
	return len(r.entries)
}
