package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
	"github.com/Skotchmaster/storefront/services/storefront/internal/transport"
)

func TestCheckout_EmptyBasket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.basket.Items(ctx, 1)
	require.NoError(t, err)

	_, err = f.orders.Checkout(ctx, 1, b.ID)
	require.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrEmptyBasket)

	var count int64
	require.NoError(t, f.repo.DB.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckout_ForeignBasket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", "1.00", "")

	b, err := f.basket.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	_, err = f.orders.Checkout(ctx, 2, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.Checkout(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckout_MaterializesBasket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", "10.00", "")
	c := f.product(t, "C", "8.00", "6.00")

	_, err := f.basket.AddItem(ctx, 1, a.ID, 2)
	require.NoError(t, err)
	b, err := f.basket.AddItem(ctx, 1, c.ID, 3)
	require.NoError(t, err)

	// Price moves after the basket total was cached; checkout must use the new one.
	f.setPrice(t, a.ID, "11.00")

	o, err := f.orders.Checkout(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCreated, o.Status)
	assert.Equal(t, "40.00", o.TotalPrice.StringFixed(2))

	stored, err := f.orders.Get(ctx, 1, o.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, a.ID, stored.Items[0].ProductID)
	assert.EqualValues(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, "11.00", stored.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, c.ID, stored.Items[1].ProductID)
	assert.EqualValues(t, 3, stored.Items[1].Quantity)
	assert.Equal(t, "6.00", stored.Items[1].UnitPrice.StringFixed(2))

	after, err := f.basket.Items(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, b.ID, after.ID)
	assert.Empty(t, after.Items)
	assert.True(t, after.TotalPrice.IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrdersCreated))
	assert.Contains(t, f.events.Types(), events.TypeOrderCreated)
}

func TestListOrders_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.placeOrder(t, 1, "1.00", 1)
	second := f.placeOrder(t, 1, "2.00", 1)
	third := f.placeOrder(t, 1, "3.00", 1)
	f.placeOrder(t, 2, "4.00", 1)

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, f.repo.DB.Model(&models.Order{}).Where("id = ?", first.ID).Update("created_at", ts.Add(time.Hour)).Error)
	require.NoError(t, f.repo.DB.Model(&models.Order{}).Where("id IN ?", []uint{second.ID, third.ID}).Update("created_at", ts).Error)

	orders, err := f.orders.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []uint{first.ID, third.ID, second.ID}, []uint{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestGetOrder_HidesForeignOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t, 1, "5.00", 1)

	_, err := f.orders.Get(ctx, 2, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.orders.Receipt(ctx, 2, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.orders.Get(ctx, 2, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetailAndReceipt_UseCurrentPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t, 1, "5.00", 3)

	f.setPrice(t, o.Items[0].ProductID, "7.00")

	d, err := f.orders.Detail(ctx, 1, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "21.00", d.Subtotal)
	assert.Equal(t, "15.00", d.TotalPrice)
	assert.Equal(t, "5.00", d.Items[0].CheckoutUnitPrice)

	r, err := f.orders.Receipt(ctx, 1, o.ID)
	require.NoError(t, err)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, "7.00", r.Lines[0].UnitPrice)
	assert.Equal(t, "21.00", r.Lines[0].LineTotal)
	assert.Equal(t, "21.00", r.Subtotal)
	assert.Equal(t, "Card", r.PaymentMethod)
	assert.Nil(t, r.TransactionID)
}

func TestAdvanceStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.orders.NewTxID = func() (string, error) { return "TADMIN00001X", nil }
	o := f.placeOrder(t, 1, "5.00", 1)

	for _, to := range []string{"Paid", "AwaitingPayment", "AwaitingConfirmation", "InProcessing", "Delivered"} {
		_, err := f.orders.AdvanceStatus(ctx, o.ID, to)
		assert.ErrorIs(t, err, ErrValidation, to)
	}
	untouched := f.reload(t, o.ID)
	assert.Equal(t, models.StatusCreated, untouched.Status)
	assert.Nil(t, untouched.TransactionID)

	_, err := f.orders.AdvanceStatus(ctx, o.ID, "Shipped")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.AdvanceStatus(ctx, 9999, "Paid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.pay.Pay(ctx, 1, o.ID, transport.PayRequest{PaymentMethod: "Cash"})
	require.NoError(t, err)

	_, err = f.orders.AdvanceStatus(ctx, o.ID, "InProcessing")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.orders.AdvanceStatus(ctx, o.ID, "Paid")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)
	assert.Equal(t, models.PaymentCash, got.PaymentMethod)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, "TADMIN00001X", *got.TransactionID)

	for _, to := range []string{"InProcessing", "Delivered"} {
		got, err := f.orders.AdvanceStatus(ctx, o.ID, to)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(to), got.Status)
	}

	_, err = f.orders.AdvanceStatus(ctx, o.ID, "Paid")
	assert.ErrorIs(t, err, ErrValidation)

	final := f.reload(t, o.ID)
	assert.Equal(t, models.StatusDelivered, final.Status)
	require.NotNil(t, final.TransactionID)
	assert.Equal(t, "TADMIN00001X", *final.TransactionID)
}

func TestAdvanceStatus_PaidStampsTransactionID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t, 1, "5.00", 1)

	_, err := f.pay.Pay(ctx, 1, o.ID, transport.PayRequest{PaymentMethod: "Cash"})
	require.NoError(t, err)

	got, err := f.orders.AdvanceStatus(ctx, o.ID, "Paid")
	require.NoError(t, err)
	require.NotNil(t, got.TransactionID)
	assert.Len(t, *got.TransactionID, 12)
	assert.True(t, strings.HasPrefix(*got.TransactionID, "T"))
	assert.Equal(t, *got.TransactionID, *f.reload(t, o.ID).TransactionID)
	assert.Contains(t, f.events.Types(), events.TypeOrderStatusChanged)
}

func TestAdvanceStatus_RetriesTransactionIDCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t, 1, "5.00", 1)

	_, err := f.pay.Pay(ctx, 1, o.ID, transport.PayRequest{PaymentMethod: "Cash"})
	require.NoError(t, err)

	calls := 0
	f.orders.NewTxID = func() (string, error) {
		calls++
		if calls < 2 {
			return "", gorm.ErrDuplicatedKey
		}
		return "TCCCCCCCCCCC", nil
	}

	got, err := f.orders.AdvanceStatus(ctx, o.ID, "Paid")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "TCCCCCCCCCCC", *got.TransactionID)
}

func TestCheckout_RollsBackWhenItemsFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.product(t, "item", "5.00", "")
	b, err := f.basket.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	errDisk := errors.New("disk full")
	require.NoError(t, f.repo.DB.Callback().Create().Before("gorm:create").
		Register("test:fail_order_items", func(tx *gorm.DB) {
			if tx.Statement.Table == "order_items" {
				_ = tx.AddError(errDisk)
			}
		}))

	_, err = f.orders.Checkout(ctx, 1, b.ID)
	require.ErrorIs(t, err, errDisk)

	var orders, lines int64
	require.NoError(t, f.repo.DB.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, f.repo.DB.Model(&models.OrderItem{}).Count(&lines).Error)
	assert.Zero(t, orders)
	assert.Zero(t, lines)

	kept, err := f.basket.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, kept.Items, 1)
	assert.Equal(t, uint(2), kept.Items[0].Quantity)
	assert.Equal(t, "10.00", kept.TotalPrice.StringFixed(2))
	assert.NotContains(t, f.events.Types(), events.TypeOrderCreated)
}
