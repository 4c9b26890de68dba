package app

import (
	"github.com/rs/zerolog/log"

	"github.com/pomecrenate/parley/internal/core"
	"github.com/pomecrenate/parley/internal/domain"
	"github.com/pomecrenate/parley/internal/metrics"
)

// Dispatcher fans one outbound event out to a set of connections.
// It never blocks: frames go into each target's bounded send buffer and
// a full buffer costs that target the frame, not the batch. Targets
// whose connection raced away are skipped silently.
type Dispatcher struct {
	registry *core.Registry
}

func NewDispatcher(registry *core.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Deliver encodes the event once and hands the same frame to every target.
// Per-target delivery order follows submission order; order across targets
// is unspecified.
func (d *Dispatcher) Deliver(targets []domain.ConnID, eventType string, payload any) {
	frame, err := EncodeFrame(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Str("event", eventType).Msg("encode failed")
		return
	}

	sent, dropped := 0, 0
	for _, id := range targets {
		snd, ok := d.registry.SenderOf(id)
		if !ok {
			continue
		}
		if err := snd.TrySend(frame); err != nil {
			dropped++
			metrics.DroppedFrames.Inc()
			log.Warn().Str("module", "app.dispatcher").Str("conn", string(id)).Str("event", eventType).Msg("frame dropped")
			continue
		}
		sent++
		metrics.Deliveries.Inc()
	}
	log.Debug().Str("module", "app.dispatcher").Str("event", eventType).Int("sent_to", sent).Int("dropped", dropped).Msg("delivered")
}

// DeliverOne sends a single-target event, typically a direct reply.
func (d *Dispatcher) DeliverOne(id domain.ConnID, eventType string, payload any) {
	d.Deliver([]domain.ConnID{id}, eventType, payload)
}
