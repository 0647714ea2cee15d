// Package events publishes domain events to Kafka as a JSON envelope.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TopicCart         = "cart_events"
	TopicOrder        = "order_events"
	TopicNotification = "notification_events"
	TopicUser         = "user_events"
	TopicProduct      = "product_events"
)

// Topics lists every topic the services write to.
var Topics = []string{TopicCart, TopicOrder, TopicNotification, TopicUser, TopicProduct}

const (
	TypeBasketItemAdded    = "basket.item_added"
	TypeBasketItemRemoved  = "basket.item_removed"
	TypeOrderCreated       = "order.created"
	TypeOrderPaid          = "order.paid"
	TypeOrderStatusChanged = "order.status_changed"
	TypePaymentOTPIssued   = "payment.otp_issued"
	TypeAuthOTPIssued      = "auth.otp_issued"
	TypeUserRegistered     = "user.registered"
	TypeProductCreated     = "product.created"
	TypeProductUpdated     = "product.updated"
	TypeProductDeleted     = "product.deleted"
)

type Event struct {
	ID         string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New wraps payload in an envelope with a fresh id.
func New(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Decode unmarshals the envelope payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Published []Published
}

type Published struct {
	Topic string
	Key   string
	Event any
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.Published = append(r.Published, Published{Topic: topic, Key: key, Event: event})
	return nil
}

// Types returns the envelope types recorded so far, in order.
func (r *Recorder) Types() []string {
	out := make([]string, 0, len(r.Published))
	for _, p := range r.Published {
		if e, ok := p.Event.(Event); ok {
			out = append(out, e.Type)
		}
	}
	return out
}
