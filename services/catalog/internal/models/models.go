package models

import "github.com/shopspring/decimal"

type Category struct {
	ID    uint   `gorm:"primaryKey"        json:"id"`
	Title string `gorm:"size:255;not null" json:"title"`
}

type Product struct {
	ID          uint                `gorm:"primaryKey;autoIncrement"      json:"id"`
	CategoryID  *uint               `gorm:"index"                         json:"category_id"`
	Category    *Category           `gorm:"constraint:OnDelete:SET NULL"  json:"category,omitempty"`
	Title       string              `gorm:"size:255;not null"             json:"title"`
	Description string              `gorm:"type:text"                     json:"description"`
	Cover       string              `gorm:"size:512"                      json:"cover"`
	Price       decimal.Decimal     `gorm:"type:numeric(10,2);not null"   json:"price"`
	NewPrice    decimal.NullDecimal `gorm:"type:numeric(10,2)"            json:"new_price"`
	Rating      decimal.Decimal     `gorm:"type:numeric(3,1);not null;default:0" json:"rating"`
}

func (p Product) EffectivePrice() decimal.Decimal {
	if p.NewPrice.Valid {
		return p.NewPrice.Decimal
	}
	return p.Price
}

// Banner locations on the landing page.
const (
	BannerIndexHead   = "index_head"
	BannerIndexMiddle = "index_middle"
)

type Banner struct {
	ID       uint   `gorm:"primaryKey"        json:"id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Image    string `gorm:"size:512;not null" json:"image"`
	Location string `gorm:"size:50;not null;index" json:"location"`
}

func All() []any {
	return []any{&Category{}, &Product{}, &Banner{}}
}
