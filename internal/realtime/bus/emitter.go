package bus

import (
	"context"

	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

// Emitter publishes through the bus when one is configured and falls back to
// the local hub otherwise. With a bus, the local hub receives the message back
// through the forwarder, so it is not broadcast twice.
type Emitter struct {
	log *logger.Logger
	hub *realtime.SSEHub
	bus Bus
}

func NewEmitter(log *logger.Logger, hub *realtime.SSEHub, b Bus) *Emitter {
	return &Emitter{log: log.With("component", "SSEEmitter"), hub: hub, bus: b}
}

func (e *Emitter) Emit(ctx context.Context, msgs ...realtime.SSEMessage) {
	if e == nil {
		return
	}
	for _, msg := range msgs {
		if msg.Channel == "" {
			continue
		}
		if e.bus != nil {
			err := e.bus.Publish(ctx, msg)
			if err == nil {
				continue
			}
			e.log.Warn("bus publish failed; broadcasting locally", "event", msg.Event, "error", err)
		}
		if e.hub != nil {
			e.hub.Broadcast(msg)
		}
	}
}
