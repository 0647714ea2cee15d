package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
	"github.com/Skotchmaster/storefront/services/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/services/storefront/internal/transport"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Events   events.Publisher
	Metrics  *Metrics
	Location *time.Location

	NewTxID func() (string, error)
}

func (s *OrderService) txID() (string, error) {
	if s.NewTxID != nil {
		return s.NewTxID()
	}
	return NewTransactionID()
}

func (s *OrderService) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func orderKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// Checkout materializes an order from the basket. The total is recomputed from
// current product prices rather than taken from the cached basket total.
func (s *OrderService) Checkout(ctx context.Context, userID, basketID uint) (*models.Order, error) {
	if basketID == 0 {
		return nil, FieldErrors{"basket_id": "required"}
	}

	order, err := s.Repo.Checkout(ctx, userID, basketID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrBasketMissing
	case errors.Is(err, repo.ErrEmptyBasket):
		return nil, ErrEmptyBasket
	case err != nil:
		return nil, fmt.Errorf("checkout: %w", err)
	}

	s.Metrics.orderCreated()

	lines := make([]map[string]any, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, map[string]any{
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice.StringFixed(2),
		})
	}
	publish(ctx, s.Events, events.TopicOrder, orderKey(order.ID), events.TypeOrderCreated, map[string]any{
		"order_id":    order.ID,
		"user_id":     userID,
		"total_price": order.TotalPrice.StringFixed(2),
		"items":       lines,
	})
	return order, nil
}

func (s *OrderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.Repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *OrderService) Detail(ctx context.Context, userID, orderID uint) (*transport.OrderDetail, error) {
	o, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	d := OrderDetail(o, s.loc())
	return &d, nil
}

func (s *OrderService) Receipt(ctx context.Context, userID, orderID uint) (*transport.Receipt, error) {
	o, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	r := BuildReceipt(o, s.loc())
	return &r, nil
}

// AdvanceStatus moves an order along the fulfillment table on behalf of an
// admin. Marking an order Paid stamps a transaction id like a payment would.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uint, raw string) (*models.Order, error) {
	to, err := models.ParseOrderStatus(raw)
	if err != nil {
		return nil, FieldErrors{"status": err.Error()}
	}

	var (
		from models.OrderStatus
		o    *models.Order
	)
	err = retryTxID(func() error {
		var merr error
		o, _, merr = s.Repo.MutateOrder(ctx, 0, orderID, func(o *models.Order) (bool, error) {
			from = o.Status
			if !o.Status.CanAdvance(to) {
				return false, validation(fmt.Sprintf("cannot move order from %s to %s", o.Status, to))
			}
			if to == models.StatusPaid {
				return true, markPaid(o, s.txID)
			}
			o.Status = to
			return true, nil
		})
		return merr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("advance status: %w", err)
	}

	publish(ctx, s.Events, events.TopicOrder, orderKey(o.ID), events.TypeOrderStatusChanged, map[string]any{
		"order_id":       o.ID,
		"user_id":        o.UserID,
		"from":           from,
		"to":             o.Status,
		"transaction_id": o.TransactionID,
	})
	return o, nil
}
