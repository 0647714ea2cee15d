package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
)

// UpsertCatalog writes categories and products keyed by id, overwriting
// existing rows. Used by the seed command.
func (r *GormRepo) UpsertCatalog(ctx context.Context, categories []models.Category, products []models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(categories) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&categories).Error; err != nil {
				return err
			}
		}
		if len(products) > 0 {
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(&products).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
