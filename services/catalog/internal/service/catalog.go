package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/search"
	"github.com/Skotchmaster/storefront/services/catalog/internal/transport"
)

var maxRating = decimal.NewFromInt(5)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Index is optional; without it search runs against the database.
	Index search.Index
}

type Page struct {
	Total int64
	Items []models.Product
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product: %w", ErrNotFound)
	}
	return p, err
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (*Page, error) {
	total, items, err := s.Repo.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Total: total, Items: items}, nil
}

// Search asks the index first and falls back to a database match when the
// index is missing or failing.
func (s *CatalogService) Search(ctx context.Context, q string, offset, limit int) (*Page, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, FieldErrors{"q": "required"}
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return &Page{Total: total, Items: items}, nil
		}
		l.Warn("search_index_error", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Total: total, Items: items}, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.Categories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, FieldErrors{"title": "required"}
	}
	c := models.Category{Title: title}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id *uint, fe FieldErrors) error {
	if id == nil {
		return nil
	}
	ok, err := s.Repo.CategoryExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		fe["category_id"] = "unknown category"
	}
	return nil
}

func checkMoney(fe FieldErrors, field string, v decimal.Decimal) {
	if v.IsNegative() {
		fe[field] = "must not be negative"
	}
}

func checkRating(fe FieldErrors, v decimal.Decimal) {
	if v.IsNegative() || v.GreaterThan(maxRating) {
		fe["rating"] = "must be between 0 and 5"
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	fe := FieldErrors{}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		fe["title"] = "required"
	}
	checkMoney(fe, "price", req.Price)
	if req.NewPrice != nil {
		checkMoney(fe, "new_price", *req.NewPrice)
	}
	checkRating(fe, req.Rating)
	if err := s.checkCategory(ctx, req.CategoryID, fe); err != nil {
		return nil, err
	}
	if err := fe.errOrNil(); err != nil {
		return nil, err
	}

	prod := models.Product{
		CategoryID:  req.CategoryID,
		Title:       title,
		Description: req.Description,
		Cover:       req.Cover,
		Price:       req.Price,
		Rating:      req.Rating,
	}
	if req.NewPrice != nil {
		prod.NewPrice = decimal.NewNullDecimal(*req.NewPrice)
	}

	created, err := s.Repo.CreateProduct(ctx, &prod)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, events.TypeProductCreated, created)
	s.indexPut(ctx, created)
	return created, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	fe := FieldErrors{}
	fields := map[string]any{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			fe["title"] = "must not be empty"
		}
		fields["title"] = title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Cover != nil {
		fields["cover"] = *req.Cover
	}
	if req.Price != nil {
		checkMoney(fe, "price", *req.Price)
		fields["price"] = *req.Price
	}
	switch {
	case req.ClearNewPrice:
		fields["new_price"] = decimal.NullDecimal{}
	case req.NewPrice != nil:
		checkMoney(fe, "new_price", *req.NewPrice)
		fields["new_price"] = decimal.NewNullDecimal(*req.NewPrice)
	}
	if req.Rating != nil {
		checkRating(fe, *req.Rating)
		fields["rating"] = *req.Rating
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID, fe); err != nil {
			return nil, err
		}
		fields["category_id"] = *req.CategoryID
	}
	if err := fe.errOrNil(); err != nil {
		return nil, err
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product: %w", ErrNotFound)
		}
		return nil, err
	}
	s.announce(ctx, events.TypeProductUpdated, prod)
	s.indexPut(ctx, prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("product: %w", ErrNotFound)
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrInUse
		}
		return err
	}
	s.announce(ctx, events.TypeProductDeleted, &models.Product{ID: id})
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "op", "delete", "product_id", id, "error", err)
		}
	}
	return nil
}

// Reindex pushes every product to the index. Used at startup so the index
// follows rows written by seeding or other services.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	n := 0
	err := s.Repo.EachProduct(ctx, 200, func(batch []models.Product) error {
		for i := range batch {
			if err := s.Index.Put(ctx, &batch[i]); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func (s *CatalogService) indexPut(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "op", "put", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) announce(ctx context.Context, eventType string, p *models.Product) {
	if s.Events == nil {
		return
	}
	l := logging.FromContext(ctx)

	payload := map[string]any{"product_id": p.ID}
	if eventType != events.TypeProductDeleted {
		payload["title"] = p.Title
		payload["price"] = p.Price.StringFixed(2)
		payload["effective_price"] = p.EffectivePrice().StringFixed(2)
	}
	e, err := events.New(eventType, payload)
	if err != nil {
		l.Error("event_encode_error", "type", eventType, "error", err)
		return
	}
	if err := s.Events.PublishEvent(ctx, events.TopicProduct, strconv.FormatUint(uint64(p.ID), 10), e); err != nil {
		l.Warn("event_publish_error", "topic", events.TopicProduct, "type", eventType, "error", err)
	}
}
