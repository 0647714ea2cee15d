// Package delivery turns notification events into outgoing messages.
package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

type Message struct {
	Channel   string
	Recipient string
	Purpose   string
	Code      string
	EventID   string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// LogSender writes each message as a structured log record. Real SMS and
// e-mail providers plug in behind Sender.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(_ context.Context, m Message) error {
	s.Log.Info("notification_delivered",
		"channel", m.Channel,
		"recipient", m.Recipient,
		"purpose", m.Purpose,
		"code", m.Code,
		"event_id", m.EventID,
	)
	return nil
}

type paymentOTP struct {
	OrderID     uint   `json:"order_id"`
	UserID      uint   `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type authOTP struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

type Dispatcher struct {
	Sender     Sender
	deliveries *prometheus.CounterVec
}

func NewDispatcher(sender Sender, reg prometheus.Registerer) *Dispatcher {
	d := &Dispatcher{
		Sender: sender,
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "notifier",
			Name:      "deliveries_total",
			Help:      "Notifications handed to a sender, by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(d.deliveries)
	}
	return d
}

// Handle is an events.Handler. Unknown types are skipped; payloads that do
// not decode are dropped with a warning since a retry cannot fix them.
func (d *Dispatcher) Handle(ctx context.Context, e events.Event) error {
	l := logging.FromContext(ctx).With("event_id", e.ID, "type", e.Type)

	var m Message
	switch e.Type {
	case events.TypePaymentOTPIssued:
		var p paymentOTP
		if err := e.Decode(&p); err != nil || p.PhoneNumber == "" || p.Code == "" {
			l.Warn("notification_skipped", "reason", "malformed payload", "error", err)
			d.count("sms", "malformed")
			return nil
		}
		m = Message{Channel: ChannelSMS, Recipient: p.PhoneNumber, Purpose: fmt.Sprintf("order %d confirmation", p.OrderID), Code: p.Code}
	case events.TypeAuthOTPIssued:
		var p authOTP
		if err := e.Decode(&p); err != nil || p.Email == "" || p.Code == "" {
			l.Warn("notification_skipped", "reason", "malformed payload", "error", err)
			d.count("email", "malformed")
			return nil
		}
		m = Message{Channel: ChannelEmail, Recipient: p.Email, Purpose: p.Purpose, Code: p.Code}
	default:
		l.Debug("notification_skipped", "reason", "unknown type")
		return nil
	}
	m.EventID = e.ID

	if err := d.Sender.Send(ctx, m); err != nil {
		d.count(m.Channel, "failed")
		return fmt.Errorf("send %s: %w", m.Channel, err)
	}
	d.count(m.Channel, "sent")
	return nil
}

func (d *Dispatcher) count(channel, outcome string) {
	if d.deliveries != nil {
		d.deliveries.WithLabelValues(channel, outcome).Inc()
	}
}
