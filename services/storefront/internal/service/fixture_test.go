package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/dbtest"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
	"github.com/Skotchmaster/storefront/services/storefront/internal/repo"
)

type fixture struct {
	repo    *repo.GormRepo
	events  *events.Recorder
	metrics *Metrics
	basket  *BasketService
	orders  *OrderService
	pay     *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t, models.All()...)
	r := &repo.GormRepo{DB: db}
	rec := &events.Recorder{}
	m := NewMetrics(prometheus.NewRegistry())

	return &fixture{
		repo:    r,
		events:  rec,
		metrics: m,
		basket:  &BasketService{Repo: r, Events: rec},
		orders:  &OrderService{Repo: r, Events: rec, Metrics: m},
		pay:     &PaymentService{Repo: r, Events: rec, Metrics: m, Sandbox: true},
	}
}

func (f *fixture) product(t *testing.T, title, price, newPrice string) models.Product {
	t.Helper()

	p := models.Product{Title: title, Price: decimal.RequireFromString(price)}
	if newPrice != "" {
		p.NewPrice = decimal.NewNullDecimal(decimal.RequireFromString(newPrice))
	}
	require.NoError(t, f.repo.DB.Create(&p).Error)
	return p
}

func (f *fixture) setPrice(t *testing.T, productID uint, price string) {
	t.Helper()
	require.NoError(t, f.repo.DB.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"price": price, "new_price": nil}).Error)
}

// placeOrder fills the user's basket with one product and checks it out.
func (f *fixture) placeOrder(t *testing.T, userID uint, price string, qty int) *models.Order {
	t.Helper()
	ctx := context.Background()

	p := f.product(t, "item", price, "")
	b, err := f.basket.AddItem(ctx, userID, p.ID, qty)
	require.NoError(t, err)

	o, err := f.orders.Checkout(ctx, userID, b.ID)
	require.NoError(t, err)
	return o
}

func (f *fixture) reload(t *testing.T, orderID uint) models.Order {
	t.Helper()
	var o models.Order
	require.NoError(t, f.repo.DB.First(&o, orderID).Error)
	return o
}
