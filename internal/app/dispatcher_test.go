package app

import (
	"encoding/json"
	"testing"

	"github.com/pomecrenate/parley/internal/core"
	"github.com/pomecrenate/parley/internal/domain"
)

func TestEncodeFrame(t *testing.T) {
	frame, err := EncodeFrame(EvPong, nil)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("frame is not an envelope: %v", err)
	}
	if env.Type != EvPong || len(env.Payload) != 0 {
		t.Errorf("envelope = %+v, want bare pong", env)
	}

	frame, err = EncodeFrame(EvError, ErrorPayload{Code: CodeBadPayload, Reason: "nope"})
	if err != nil {
		t.Fatalf("EncodeFrame with payload: %v", err)
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("frame is not an envelope: %v", err)
	}
	var p ErrorPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.Code != CodeBadPayload || p.Reason != "nope" {
		t.Errorf("payload = %+v, want bad_payload/nope", p)
	}
}

func TestDeliverSkipsDeadAndFullTargets(t *testing.T) {
	reg := core.NewRegistry()
	alive := &fakeSender{}
	full := &fakeSender{full: true}
	reg.Bind("alive", "alice", alive)
	reg.Bind("full", "bob", full)

	d := NewDispatcher(reg)
	targets := []domain.ConnID{"alive", "gone", "full"}
	d.Deliver(targets, EvPong, nil)

	if len(alive.frames) != 1 {
		t.Errorf("alive target got %d frames, want 1", len(alive.frames))
	}
	if len(full.frames) != 0 {
		t.Errorf("full target got %d frames, want dropped", len(full.frames))
	}
}

func TestDeliverPreservesPerTargetOrder(t *testing.T) {
	reg := core.NewRegistry()
	snd := &fakeSender{}
	reg.Bind("a", "alice", snd)
	d := NewDispatcher(reg)

	d.DeliverOne("a", EvUserJoined, UserJoinedPayload{DisplayName: "bob"})
	d.DeliverOne("a", EvUserLeft, UserLeftPayload{DisplayName: "bob"})

	if len(snd.frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(snd.frames))
	}
	var first, second Envelope
	if err := json.Unmarshal(snd.frames[0], &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(snd.frames[1], &second); err != nil {
		t.Fatal(err)
	}
	if first.Type != EvUserJoined || second.Type != EvUserLeft {
		t.Errorf("order = [%s %s], want submission order", first.Type, second.Type)
	}
}
