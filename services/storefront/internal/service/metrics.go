package service

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomePaid                 = "paid"
	outcomeDeclined             = "declined"
	outcomeAwaitingPayment      = "awaiting_payment"
	outcomeAwaitingConfirmation = "awaiting_confirmation"
	outcomeInvalidCode          = "invalid_code"
	outcomeAlreadyPaid          = "already_paid"
	outcomeRejected             = "rejected"
)

type Metrics struct {
	Payments      *prometheus.CounterVec
	OrdersCreated prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "payments_total",
			Help:      "Payment attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_created_total",
			Help:      "Orders created at checkout.",
		}),
	}
	reg.MustRegister(m.Payments, m.OrdersCreated)
	return m
}

func (m *Metrics) payment(method, outcome string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) orderCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}
