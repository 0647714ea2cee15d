package service

import (
	"context"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// publish sends an event after the write has committed. Failures are logged
// and never reach the caller.
func publish(ctx context.Context, pub events.Publisher, topic, key, eventType string, payload any) {
	if pub == nil {
		return
	}
	l := logging.FromContext(ctx)

	e, err := events.New(eventType, payload)
	if err != nil {
		l.Error("event_encode_error", "type", eventType, "error", err)
		return
	}
	if err := pub.PublishEvent(ctx, topic, key, e); err != nil {
		l.Warn("event_publish_error", "topic", topic, "type", eventType, "error", err)
	}
}
