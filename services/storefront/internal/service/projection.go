package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
	"github.com/Skotchmaster/storefront/services/storefront/internal/transport"
)

const displayLayout = "02.01.2006 15:04"

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func productSnapshot(p models.Product) transport.ProductSnapshot {
	out := transport.ProductSnapshot{
		ID:    p.ID,
		Title: p.Title,
		Price: money(p.Price),
		Cover: p.Cover,
	}
	if p.NewPrice.Valid {
		np := money(p.NewPrice.Decimal)
		out.NewPrice = &np
	}
	if p.Category != nil {
		out.Category = &transport.Category{ID: p.Category.ID, Title: p.Category.Title}
	}
	return out
}

func BasketView(b *models.Basket) transport.Basket {
	out := transport.Basket{
		ID:         b.ID,
		TotalPrice: money(b.TotalPrice),
		Items:      make([]transport.BasketItem, 0, len(b.Items)),
	}
	for _, it := range b.Items {
		out.Items = append(out.Items, transport.BasketItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Product:   productSnapshot(it.Product),
			Quantity:  it.Quantity,
			LineTotal: money(it.LineTotal()),
		})
	}
	return out
}

func OrderSummaries(orders []models.Order, loc *time.Location) []transport.OrderSummary {
	out := make([]transport.OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, transport.OrderSummary{
			ID:            o.ID,
			Status:        string(o.Status),
			TotalPrice:    money(o.TotalPrice),
			PaymentMethod: string(o.PaymentMethod.OrDefault()),
			TransactionID: o.TransactionID,
			ItemCount:     len(o.Items),
			CreatedAt:     o.CreatedAt.In(loc).Format(time.RFC3339),
		})
	}
	return out
}

// currentLine prices an order item at the product's current effective price.
func currentLine(it models.OrderItem) (unit, total decimal.Decimal) {
	unit = it.Product.EffectivePrice()
	return unit, unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func OrderDetail(o *models.Order, loc *time.Location) transport.OrderDetail {
	out := transport.OrderDetail{
		ID:            o.ID,
		Status:        string(o.Status),
		TotalPrice:    money(o.TotalPrice),
		PaymentMethod: string(o.PaymentMethod.OrDefault()),
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt.In(loc).Format(time.RFC3339),
		Items:         make([]transport.OrderLine, 0, len(o.Items)),
	}

	subtotal := decimal.Zero
	for _, it := range o.Items {
		unit, line := currentLine(it)
		subtotal = subtotal.Add(line)
		out.Items = append(out.Items, transport.OrderLine{
			ID:                it.ID,
			ProductID:         it.ProductID,
			Title:             it.Product.Title,
			Quantity:          it.Quantity,
			UnitPrice:         money(unit),
			CheckoutUnitPrice: money(it.UnitPrice),
			Subtotal:          money(line),
		})
	}
	out.Subtotal = money(subtotal)
	return out
}

// BuildReceipt renders an order for display. Line totals follow the current
// product price; total_price stays the amount fixed at checkout.
func BuildReceipt(o *models.Order, loc *time.Location) transport.Receipt {
	created := o.CreatedAt.In(loc)
	out := transport.Receipt{
		OrderID:          o.ID,
		Status:           string(o.Status),
		PaymentMethod:    string(o.PaymentMethod.OrDefault()),
		TransactionID:    o.TransactionID,
		CreatedAt:        created.Format(time.RFC3339),
		CreatedAtDisplay: created.Format(displayLayout),
		Lines:            make([]transport.ReceiptLine, 0, len(o.Items)),
		TotalPrice:       money(o.TotalPrice),
	}

	subtotal := decimal.Zero
	for _, it := range o.Items {
		unit, line := currentLine(it)
		subtotal = subtotal.Add(line)
		out.Lines = append(out.Lines, transport.ReceiptLine{
			ProductID:         it.ProductID,
			Title:             it.Product.Title,
			Quantity:          it.Quantity,
			UnitPrice:         money(unit),
			LineTotal:         money(line),
			CheckoutUnitPrice: money(it.UnitPrice),
		})
	}
	out.Subtotal = money(subtotal)
	return out
}
