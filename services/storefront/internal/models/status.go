package models

import "fmt"

type OrderStatus string

const (
	StatusCreated              OrderStatus = "Created"
	StatusAwaitingPayment      OrderStatus = "AwaitingPayment"
	StatusAwaitingConfirmation OrderStatus = "AwaitingConfirmation"
	StatusPaid                 OrderStatus = "Paid"
	StatusInProcessing         OrderStatus = "InProcessing"
	StatusDelivered            OrderStatus = "Delivered"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusCreated:              {StatusAwaitingPayment, StatusAwaitingConfirmation, StatusPaid},
	StatusAwaitingPayment:      {StatusAwaitingConfirmation, StatusPaid, StatusInProcessing},
	StatusAwaitingConfirmation: {StatusAwaitingConfirmation, StatusAwaitingPayment, StatusPaid},
	StatusPaid:                 {StatusInProcessing, StatusDelivered},
	StatusInProcessing:         {StatusDelivered},
	StatusDelivered:            nil,
}

// fulfillment is the subset an admin may apply by hand. Paying is left to the
// payment flow, which records the method and the transaction id.
var fulfillment = map[OrderStatus][]OrderStatus{
	StatusAwaitingPayment: {StatusPaid},
	StatusPaid:            {StatusInProcessing, StatusDelivered},
	StatusInProcessing:    {StatusDelivered},
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CanAdvance reports whether an admin may move an order from s to to.
func (s OrderStatus) CanAdvance(to OrderStatus) bool {
	for _, next := range fulfillment[s] {
		if next == to {
			return true
		}
	}
	return false
}

func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", v)
	}
	return s, nil
}

type PaymentMethod string

const (
	PaymentCard  PaymentMethod = "Card"
	PaymentCash  PaymentMethod = "Cash"
	PaymentMBank PaymentMethod = "MBank"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentMBank:
		return true
	}
	return false
}

// OrDefault reports Card for orders that were never paid.
func (m PaymentMethod) OrDefault() PaymentMethod {
	if m == "" {
		return PaymentCard
	}
	return m
}
