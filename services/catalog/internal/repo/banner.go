package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
)

// Banners returns the banners shown at location, oldest first.
func (r *GormRepo) Banners(ctx context.Context, location string) ([]models.Banner, error) {
	items := []models.Banner{}
	if err := r.DB.WithContext(ctx).Where("location = ?", location).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateBanner(ctx context.Context, b *models.Banner) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

// FirstCategories returns up to n categories in creation order.
func (r *GormRepo) FirstCategories(ctx context.Context, n int) ([]models.Category, error) {
	items := []models.Category{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Limit(n).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
