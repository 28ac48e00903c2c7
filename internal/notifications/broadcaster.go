package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"postfeed/internal/observability"
)

// Envelope is the frame written to websocket clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// actioner is implemented by payloads that carry an action name.
type actioner interface {
	EventAction() string
}

// Broadcaster emits events to every connected client across instances. With
// Redis configured the event is published once and each instance's hub
// delivers it from its subscription; otherwise the local hub delivers it.
type Broadcaster struct {
	hub      *Hub
	notifier *Notifier
}

// NewBroadcaster returns a Broadcaster. notifier may be nil.
func NewBroadcaster(hub *Hub, notifier *Notifier) *Broadcaster {
	return &Broadcaster{hub: hub, notifier: notifier}
}

// Emit sends payload as event to all clients.
func (b *Broadcaster) Emit(ctx context.Context, event string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	action := ""
	if a, ok := payload.(actioner); ok {
		action = a.EventAction()
	}
	observability.BroadcastEvents.WithLabelValues(event, action).Inc()

	if b.notifier.Enabled() {
		return b.notifier.PublishBroadcast(ctx, event, data)
	}
	if b.hub != nil {
		b.hub.BroadcastAll(data)
	}
	return nil
}
