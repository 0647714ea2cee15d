package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
)

// lockBasket creates the user's basket if missing and locks its row for the
// rest of the transaction.
func lockBasket(tx *gorm.DB, userID uint) (*models.Basket, error) {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.Basket{UserID: userID}).Error; err != nil {
		return nil, err
	}

	var b models.Basket
	if err := locked(tx).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func basketItems(tx *gorm.DB, basketID uint) ([]models.BasketItem, error) {
	var items []models.BasketItem
	err := tx.Preload("Product.Category").
		Where("basket_id = ?", basketID).
		Order("id").
		Find(&items).Error
	return items, err
}

func recomputeTotal(tx *gorm.DB, b *models.Basket) error {
	items, err := basketItems(tx, b.ID)
	if err != nil {
		return err
	}
	b.Items = items
	b.TotalPrice = models.BasketTotal(items)
	return tx.Model(&models.Basket{}).Where("id = ?", b.ID).Update("total_price", b.TotalPrice).Error
}

// AddItem increments the quantity of productID in the user's basket, creating
// the basket and the item as needed. Returns the updated basket.
func (r *GormRepo) AddItem(ctx context.Context, userID, productID, quantity uint) (*models.Basket, *models.BasketItem, error) {
	var (
		basket *models.Basket
		added  models.BasketItem
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if basket, err = lockBasket(tx, userID); err != nil {
			return err
		}

		var p models.Product
		if err := tx.Select("id").First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		item := models.BasketItem{BasketID: basket.ID, ProductID: productID, Quantity: quantity}
		if err := tx.Omit("Product").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "basket_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("basket_items.quantity + excluded.quantity"),
			}),
		}).Create(&item).Error; err != nil {
			return err
		}

		if err := recomputeTotal(tx, basket); err != nil {
			return err
		}
		for _, it := range basket.Items {
			if it.ProductID == productID {
				added = it
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return basket, &added, nil
}

// Basket returns the user's basket with items, creating an empty one on first use.
func (r *GormRepo) Basket(ctx context.Context, userID uint) (*models.Basket, error) {
	var basket *models.Basket
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if basket, err = lockBasket(tx, userID); err != nil {
			return err
		}
		basket.Items, err = basketItems(tx, basket.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return basket, nil
}

// RemoveItem deletes itemID only when it belongs to the user's basket.
func (r *GormRepo) RemoveItem(ctx context.Context, userID, itemID uint) (*models.Basket, *models.BasketItem, error) {
	var (
		basket  models.Basket
		removed models.BasketItem
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := locked(tx).Where("user_id = ?", userID).First(&basket).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ? AND basket_id = ?", itemID, basket.ID).First(&removed).Error; err != nil {
			return err
		}
		if err := tx.Delete(&removed).Error; err != nil {
			return err
		}
		return recomputeTotal(tx, &basket)
	})
	if err != nil {
		return nil, nil, err
	}
	return &basket, &removed, nil
}
