package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
)

type CreateProductRequest struct {
	CategoryID  *uint            `json:"category_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Cover       string           `json:"cover"`
	Price       decimal.Decimal  `json:"price"`
	NewPrice    *decimal.Decimal `json:"new_price"`
	Rating      decimal.Decimal  `json:"rating"`
}

// PatchProductRequest leaves nil fields unchanged. ClearNewPrice drops the
// discount.
type PatchProductRequest struct {
	CategoryID    *uint            `json:"category_id"`
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Cover         *string          `json:"cover"`
	Price         *decimal.Decimal `json:"price"`
	NewPrice      *decimal.Decimal `json:"new_price"`
	ClearNewPrice bool             `json:"clear_new_price"`
	Rating        *decimal.Decimal `json:"rating"`
}

type CreateCategoryRequest struct {
	Title string `json:"title"`
}

type CreateBannerRequest struct {
	Title    string `json:"title"`
	Image    string `json:"image"`
	Location string `json:"location"`
}

type Category struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type Banner struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image"`
	Location string `json:"location"`
}

// IndexPage is the landing payload. Banner lists are null when a location has
// no banners.
type IndexPage struct {
	TopBanner    []Banner    `json:"top_banner"`
	MiddleBanner []Banner    `json:"middle_banner"`
	Categories   []Category  `json:"categories"`
	Products     ProductPage `json:"products"`
}

type Product struct {
	ID          uint      `json:"id"`
	Category    *Category `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Cover       string    `json:"cover"`
	Price       string    `json:"price"`
	NewPrice    *string   `json:"new_price"`
	Rating      string    `json:"rating"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type ProductPage struct {
	Data []Product `json:"data"`
	Meta PageMeta  `json:"meta"`
}

func NewProduct(p *models.Product) Product {
	out := Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Cover:       p.Cover,
		Price:       p.Price.StringFixed(2),
		Rating:      p.Rating.StringFixed(1),
	}
	if p.NewPrice.Valid {
		np := p.NewPrice.Decimal.StringFixed(2)
		out.NewPrice = &np
	}
	if p.Category != nil {
		out.Category = &Category{ID: p.Category.ID, Title: p.Category.Title}
	}
	return out
}

func NewProducts(items []models.Product) []Product {
	out := make([]Product, 0, len(items))
	for i := range items {
		out = append(out, NewProduct(&items[i]))
	}
	return out
}

func NewCategories(items []models.Category) []Category {
	out := make([]Category, 0, len(items))
	for _, c := range items {
		out = append(out, Category{ID: c.ID, Title: c.Title})
	}
	return out
}

// NewBanners returns nil for an empty list.
func NewBanners(items []models.Banner) []Banner {
	if len(items) == 0 {
		return nil
	}
	out := make([]Banner, 0, len(items))
	for _, b := range items {
		out = append(out, NewBanner(&b))
	}
	return out
}

func NewBanner(b *models.Banner) Banner {
	return Banner{ID: b.ID, Title: b.Title, Image: b.Image, Location: b.Location}
}
