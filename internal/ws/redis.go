package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/marbles/internal/session"
)

// StartEventSubscriber relays round events published on Redis, so watchers
// connected to another server instance still hear about concluded rounds.
func (h *Hub) StartEventSubscriber(ctx context.Context) {
	pubsub := h.sessions.Subscribe(ctx)
	if pubsub == nil {
		log.Println("[WS] Redis client not set; round event subscriber not started")
		return
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Println("[WS] round_events subscriber started")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h.relayEvent([]byte(msg.Payload))
			}
		}
	}()
}

// relayEvent broadcasts a round event to its session's room. Events this
// instance published are skipped: local watchers already got the outcome from
// PublishShot. It reports whether the event was broadcast.
func (h *Hub) relayEvent(payload []byte) bool {
	var ev session.RoundEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return false
	}
	if ev.Origin == h.sessions.InstanceID() {
		return false
	}
	if h.RoomSize(ev.Token) == 0 {
		return false
	}
	log.Printf("[WS] event received: type=%s session=%s origin=%s", ev.Type, ev.Token, ev.Origin)
	h.Broadcast(ev.Token, ev)
	return true
}
