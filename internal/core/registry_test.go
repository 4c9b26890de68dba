package core

import (
	"testing"

	"github.com/pomecrenate/parley/internal/domain"
)

type nullSender struct{ closed bool }

func (n *nullSender) TrySend(Frame) error { return nil }
func (n *nullSender) Close()              { n.closed = true }

func TestRegistryBindGet(t *testing.T) {
	r := NewRegistry()
	snd := &nullSender{}

	sess := r.Bind("c1", "  alice ", snd)
	if sess.DisplayName != "alice" {
		t.Errorf("DisplayName = %q, want normalized alice", sess.DisplayName)
	}
	if sess.InRoom() {
		t.Error("fresh session should not be in a room")
	}

	got, ok := r.Get("c1")
	if !ok || got != sess {
		t.Fatal("Get did not return the bound session")
	}
	if s, ok := r.SenderOf("c1"); !ok || s != Sender(snd) {
		t.Fatal("SenderOf did not return the bound sender")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryDefaultsEmptyName(t *testing.T) {
	r := NewRegistry()
	sess := r.Bind("c1", "", &nullSender{})
	if sess.DisplayName != domain.DefaultDisplayName {
		t.Errorf("DisplayName = %q, want %q", sess.DisplayName, domain.DefaultDisplayName)
	}
}

func TestRegistryRoomTracking(t *testing.T) {
	r := NewRegistry()
	r.Bind("c1", "alice", &nullSender{})

	if ok := r.SetRoom("c1", "r1"); !ok {
		t.Fatal("SetRoom on bound connection failed")
	}
	sess, _ := r.Get("c1")
	if sess.RoomID != "r1" || !sess.InRoom() {
		t.Errorf("RoomID = %q, want r1", sess.RoomID)
	}

	r.ClearRoom("c1")
	if sess.InRoom() {
		t.Error("ClearRoom did not reset the session")
	}

	if ok := r.SetRoom("missing", "r1"); ok {
		t.Error("SetRoom on unknown connection should report false")
	}
}

func TestRegistryUnbind(t *testing.T) {
	r := NewRegistry()
	r.Bind("c1", "alice", &nullSender{})
	r.Unbind("c1")

	if _, ok := r.Get("c1"); ok {
		t.Error("Get after Unbind should fail")
	}
	if _, ok := r.SenderOf("c1"); ok {
		t.Error("SenderOf after Unbind should fail")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}
