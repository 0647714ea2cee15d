package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
)

func receiptOrder() *models.Order {
	txID := "T7K2M9Q4X1ZB"
	return &models.Order{
		ID:            17,
		UserID:        3,
		Status:        models.StatusPaid,
		PaymentMethod: models.PaymentMBank,
		TransactionID: &txID,
		TotalPrice:    decimal.RequireFromString("41.00"),
		CreatedAt:     time.Date(2024, 3, 8, 18, 45, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{
				ProductID: 4,
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("12.50"),
				Product: models.Product{
					ID:    4,
					Title: "Margherita",
					Price: decimal.RequireFromString("12.50"),
				},
			},
			{
				ProductID: 9,
				Quantity:  3,
				UnitPrice: decimal.RequireFromString("5.00"),
				Product: models.Product{
					ID:       9,
					Title:    "Lemonade",
					Price:    decimal.RequireFromString("6.00"),
					NewPrice: decimal.NewNullDecimal(decimal.RequireFromString("4.50")),
				},
			},
		},
	}
}

func TestBuildReceipt_Golden(t *testing.T) {
	bishkek := time.FixedZone("+06", 6*60*60)

	got, err := json.MarshalIndent(BuildReceipt(receiptOrder(), bishkek), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "receipt", append(got, '\n'))
}

func TestBuildReceipt_Totals(t *testing.T) {
	r := BuildReceipt(receiptOrder(), time.UTC)

	require.Len(t, r.Lines, 2)
	assert.Equal(t, "25.00", r.Lines[0].LineTotal)
	assert.Equal(t, "4.50", r.Lines[1].UnitPrice)
	assert.Equal(t, "13.50", r.Lines[1].LineTotal)
	assert.Equal(t, "38.50", r.Subtotal)
	assert.Equal(t, "41.00", r.TotalPrice)
	assert.Equal(t, "08.03.2024 18:45", r.CreatedAtDisplay)
}

func TestBuildReceipt_UnpaidDefaults(t *testing.T) {
	o := receiptOrder()
	o.Status = models.StatusCreated
	o.PaymentMethod = ""
	o.TransactionID = nil

	r := BuildReceipt(o, time.UTC)
	assert.Equal(t, "Card", r.PaymentMethod)
	assert.Nil(t, r.TransactionID)
}
