// Package app holds the coordinator: the single serialized decision-maker
// for room membership, messaging and ownership succession.
package app

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pomecrenate/parley/internal/core"
	"github.com/pomecrenate/parley/internal/domain"
	"github.com/pomecrenate/parley/internal/metrics"
)

// Coordinator processes every inbound event against the registry and the
// room store. One mutex serializes all of it: handlers mutate state and
// enqueue outbound frames (non-blocking, via the dispatcher) before the
// lock is released, so each connection observes events in processing
// order. No blocking I/O happens under the lock.
type Coordinator struct {
	mu       sync.Mutex
	registry *core.Registry
	rooms    *core.RoomStore
	disp     *Dispatcher

	now func() time.Time
}

func NewCoordinator(registry *core.Registry, rooms *core.RoomStore, disp *Dispatcher) *Coordinator {
	return &Coordinator{
		registry: registry,
		rooms:    rooms,
		disp:     disp,
		now:      time.Now,
	}
}

// Connect registers a new connection before any of its events arrive.
func (c *Coordinator) Connect(id domain.ConnID, displayName string, sender core.Sender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Bind(id, displayName, sender)
	metrics.Connections.Inc()
}

// Disconnect runs the same cleanup as an explicit leave, then drops the
// session. Safe to call for an unknown id; the adapter guarantees at most
// one call per connection.
func (c *Coordinator) Disconnect(id domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.registry.Get(id)
	if !ok {
		return
	}
	if sess.InRoom() {
		c.leave(id, sess.RoomID)
	}
	c.registry.Unbind(id)
	metrics.Connections.Dec()
	log.Info().Str("module", "app.coordinator").Str("conn", string(id)).Msg("disconnected")
}

// Dispatch routes one inbound event to its handler. Events from ids the
// registry no longer knows are dropped; the connection is already gone.
func (c *Coordinator) Dispatch(id domain.ConnID, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.registry.Get(id)
	if !ok {
		log.Warn().Str("module", "app.coordinator").Str("conn", string(id)).Msg("event from unknown connection")
		return
	}

	switch ev := ev.(type) {
	case CreateRoom:
		c.handleCreate(sess, ev)
	case JoinRoom:
		c.handleJoin(sess, ev)
	case LeaveRoom:
		c.handleLeave(sess, ev)
	case ChatMessage:
		c.handleMessage(sess, ev)
	case ListRooms:
		c.disp.DeliverOne(sess.ID, EvRoomsList, RoomsListPayload{Rooms: c.rooms.List()})
	case Whoami:
		c.handleWhoami(sess)
	}
}

// Summaries snapshots the live rooms for read-only HTTP listings.
func (c *Coordinator) Summaries() []core.RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.List()
}

func (c *Coordinator) handleCreate(sess *domain.Session, ev CreateRoom) {
	c.maybeRename(sess, ev.DisplayName)

	name, err := domain.NormalizeRoomName(ev.Name)
	if err != nil {
		c.disp.DeliverOne(sess.ID, EvRoomCreationFailed, RoomCreationFailedPayload{Reason: err.Error()})
		return
	}
	// Checked before the implicit leave so a doomed create changes nothing.
	if c.rooms.NameTaken(name) {
		c.disp.DeliverOne(sess.ID, EvRoomCreationFailed, RoomCreationFailedPayload{Reason: core.ErrNameTaken.Error()})
		return
	}

	if sess.InRoom() {
		c.leave(sess.ID, sess.RoomID)
	}

	room, err := c.rooms.Create(name, sess.ID, sess.DisplayName, c.now())
	if err != nil {
		c.disp.DeliverOne(sess.ID, EvRoomCreationFailed, RoomCreationFailedPayload{Reason: err.Error()})
		return
	}
	c.registry.SetRoom(sess.ID, room.ID)
	metrics.Rooms.Inc()

	c.disp.DeliverOne(sess.ID, EvRoomCreated, RoomCreatedPayload{Room: core.NewRoomSummary(room)})
	log.Info().Str("module", "app.coordinator").Str("conn", string(sess.ID)).Str("room", string(room.ID)).Str("name", string(name)).Msg("room created")
}

func (c *Coordinator) handleJoin(sess *domain.Session, ev JoinRoom) {
	c.maybeRename(sess, ev.DisplayName)

	room, ok := c.rooms.Get(ev.RoomID)
	if !ok {
		c.disp.DeliverOne(sess.ID, EvJoinFailed, JoinFailedPayload{Reason: core.ErrRoomNotFound.Error()})
		return
	}

	// Re-joining the current room just re-confirms; members stay as they
	// are and nobody hears a second arrival.
	if sess.RoomID == room.ID {
		summary := core.NewRoomSummary(room)
		c.disp.DeliverOne(sess.ID, EvJoinConfirmed, JoinConfirmedPayload{Room: summary, Members: summary.Members})
		return
	}

	if sess.InRoom() {
		c.leave(sess.ID, sess.RoomID)
	}

	c.rooms.AddMember(room.ID, sess.ID, sess.DisplayName, c.now())
	c.registry.SetRoom(sess.ID, room.ID)

	summary := core.NewRoomSummary(room)
	c.disp.DeliverOne(sess.ID, EvJoinConfirmed, JoinConfirmedPayload{Room: summary, Members: summary.Members})
	c.disp.Deliver(membersExcept(room, sess.ID), EvUserJoined, UserJoinedPayload{DisplayName: sess.DisplayName})
	log.Info().Str("module", "app.coordinator").Str("conn", string(sess.ID)).Str("room", string(room.ID)).Msg("joined room")
}

func (c *Coordinator) handleLeave(sess *domain.Session, ev LeaveRoom) {
	// Leaving a room that is already gone, or was never joined, ends in
	// the same state as a successful leave and is confirmed as one.
	out := c.leave(sess.ID, ev.RoomID)
	c.disp.DeliverOne(sess.ID, EvLeaveConfirmed, LeaveConfirmedPayload{RoomDeleted: out.roomDeleted, NewOwner: out.newOwner})
}

func (c *Coordinator) handleMessage(sess *domain.Session, ev ChatMessage) {
	if !sess.InRoom() || sess.RoomID != ev.RoomID {
		c.disp.DeliverOne(sess.ID, EvError, ErrorPayload{Code: CodeNotInRoom, Reason: "join the room before sending"})
		return
	}
	room, ok := c.rooms.Get(sess.RoomID)
	if !ok {
		c.disp.DeliverOne(sess.ID, EvError, ErrorPayload{Code: CodeNotInRoom, Reason: "join the room before sending"})
		return
	}

	text, err := domain.NormalizeMessage(ev.Text)
	if err != nil {
		c.disp.DeliverOne(sess.ID, EvError, ErrorPayload{Code: CodeInvalidMessage, Reason: err.Error()})
		return
	}

	payload := ChatMessagePayload{
		ID:      room.NextSeq(),
		User:    sess.DisplayName,
		Text:    text,
		SentAt:  c.now(),
		IsOwner: room.OwnerID == sess.ID,
	}
	c.disp.Deliver(room.MemberIDs(), EvChatMessage, payload)
	metrics.Messages.Inc()
}

func (c *Coordinator) handleWhoami(sess *domain.Session) {
	payload := WhoamiPayload{ConnectionID: string(sess.ID), DisplayName: sess.DisplayName}
	if sess.InRoom() {
		if room, ok := c.rooms.Get(sess.RoomID); ok {
			summary := core.NewRoomSummary(room)
			payload.Room = &summary
		}
	}
	c.disp.DeliverOne(sess.ID, EvWhoami, payload)
}

type leaveOutcome struct {
	roomDeleted bool
	newOwner    string
}

// leave removes the connection from the room, announces the departure to
// the survivors and, when the owner left, hands the room to the earliest
// joined survivor. The leaver gets no departure notice here; explicit
// leaves are confirmed by the caller, disconnects not at all.
func (c *Coordinator) leave(id domain.ConnID, roomID domain.RoomID) leaveOutcome {
	res, err := c.rooms.RemoveMember(roomID, id)
	if err != nil || !res.Removed {
		return leaveOutcome{}
	}

	if sess, ok := c.registry.Get(id); ok && sess.RoomID == roomID {
		c.registry.ClearRoom(id)
	}

	if res.RoomDeleted {
		metrics.Rooms.Dec()
		log.Info().Str("module", "app.coordinator").Str("conn", string(id)).Str("room", string(roomID)).Msg("left room, room deleted")
		return leaveOutcome{roomDeleted: true}
	}

	room := res.Room
	survivors := room.MemberIDs()
	c.disp.Deliver(survivors, EvUserLeft, UserLeftPayload{DisplayName: res.Member.DisplayName, WasOwner: res.WasOwner})

	out := leaveOutcome{}
	if res.WasOwner {
		successor := room.Members[0]
		c.rooms.SetOwner(roomID, successor.ConnID)
		out.newOwner = successor.DisplayName

		c.disp.DeliverOne(successor.ConnID, EvOwnershipTransferred, OwnershipTransferredPayload{Room: core.NewRoomSummary(room)})
		c.disp.Deliver(survivors, EvOwnerChanged, OwnerChangedPayload{NewOwner: successor.DisplayName})
		log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("conn", string(successor.ConnID)).Msg("ownership transferred")
	}
	return out
}

// maybeRename applies a display name carried by create/join events.
// An absent or blank name keeps the current one.
func (c *Coordinator) maybeRename(sess *domain.Session, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	sess.DisplayName = domain.NormalizeDisplayName(raw)
}

func membersExcept(room *domain.Room, id domain.ConnID) []domain.ConnID {
	out := make([]domain.ConnID, 0, len(room.Members))
	for _, m := range room.Members {
		if m.ConnID == id {
			continue
		}
		out = append(out, m.ConnID)
	}
	return out
}
