package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category and Product are owned by the catalog service. The storefront
// reads them inside its own transactions so totals follow current prices.
type Category struct {
	ID    uint   `gorm:"primaryKey"          json:"id"`
	Title string `gorm:"size:255;not null"   json:"title"`
}

type Product struct {
	ID         uint                `gorm:"primaryKey"                  json:"id"`
	CategoryID *uint               `gorm:"index"                       json:"category_id"`
	Category   *Category           `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Title      string              `gorm:"size:255;not null"           json:"title"`
	Price      decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"price"`
	NewPrice   decimal.NullDecimal `gorm:"type:numeric(10,2)"          json:"new_price"`
	Cover      string              `gorm:"size:512"                    json:"cover"`
}

// EffectivePrice is the discounted price when one is set, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.NewPrice.Valid {
		return p.NewPrice.Decimal
	}
	return p.Price
}

type Basket struct {
	ID         uint            `gorm:"primaryKey"                            json:"id"`
	UserID     uint            `gorm:"uniqueIndex;not null"                  json:"user_id"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_price"`
	Items      []BasketItem    `gorm:"constraint:OnDelete:CASCADE"           json:"items,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type BasketItem struct {
	ID        uint    `gorm:"primaryKey"                                json:"id"`
	BasketID  uint    `gorm:"uniqueIndex:idx_basket_product;not null"   json:"basket_id"`
	ProductID uint    `gorm:"uniqueIndex:idx_basket_product;not null"   json:"product_id"`
	Product   Product `json:"product"`
	Quantity  uint    `gorm:"not null;check:quantity>0"                 json:"quantity"`
}

func (i BasketItem) LineTotal() decimal.Decimal {
	return i.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// BasketTotal sums effective price times quantity. Items must have Product loaded.
func BasketTotal(items []BasketItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

type Order struct {
	ID            uint            `gorm:"primaryKey"                            json:"id"`
	UserID        uint            `gorm:"index;not null"                        json:"user_id"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null"           json:"total_price"`
	Status        OrderStatus     `gorm:"type:varchar(32);not null"               json:"status"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(16)"                      json:"payment_method"`
	TransactionID *string         `gorm:"type:varchar(12);uniqueIndex"          json:"transaction_id"`

	CardHolder string `gorm:"size:255" json:"card_holder,omitempty"`
	CardLast4  string `gorm:"size:4"   json:"card_last4,omitempty"`
	CardExpiry string `gorm:"size:5"   json:"card_expiry,omitempty"`

	PhoneNumber      string `gorm:"size:32" json:"phone_number,omitempty"`
	ConfirmationCode string `gorm:"size:4"  json:"-"`

	Items     []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time   `gorm:"index"                       json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey"        json:"id"`
	OrderID   uint    `gorm:"index;not null"    json:"order_id"`
	ProductID uint    `gorm:"not null"          json:"product_id"`
	Product   Product `json:"product"`
	Quantity  uint    `gorm:"not null;check:quantity>0" json:"quantity"`
	// UnitPrice is the effective price at checkout.
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
}

// All lists every table the storefront migrates, read models included.
func All() []any {
	return []any{&Category{}, &Product{}, &Basket{}, &BasketItem{}, &Order{}, &OrderItem{}}
}
