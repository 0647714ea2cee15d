package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
)

// Checkout turns the user's basket into an order in one transaction: the
// order and its items are created and the basket is emptied, or nothing is.
func (r *GormRepo) Checkout(ctx context.Context, userID, basketID uint) (*models.Order, error) {
	var order models.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var basket models.Basket
		if err := locked(tx).Where("id = ? AND user_id = ?", basketID, userID).First(&basket).Error; err != nil {
			return err
		}

		items, err := basketItems(tx, basket.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyBasket
		}

		order = models.Order{
			UserID:     userID,
			Status:     models.StatusCreated,
			TotalPrice: models.BasketTotal(items),
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		lines := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			lines = append(lines, models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.Product.EffectivePrice(),
			})
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].Product = items[i].Product
		}
		order.Items = lines

		if err := tx.Where("basket_id = ?", basket.ID).Delete(&models.BasketItem{}).Error; err != nil {
			return err
		}
		return recomputeTotal(tx, &basket)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the user's orders newest first; ties are broken by id.
func (r *GormRepo) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// GetOrder looks the order up by id and owner together so callers cannot tell
// a foreign order from a missing one.
func (r *GormRepo) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MutateFunc changes the locked order in place and reports whether it must be saved.
type MutateFunc func(o *models.Order) (changed bool, err error)

// MutateOrder locks the order row, applies fn and saves the result in the same
// transaction. A userID of 0 skips the ownership filter; it is used by admin paths.
func (r *GormRepo) MutateOrder(ctx context.Context, userID, orderID uint, fn MutateFunc) (*models.Order, bool, error) {
	var (
		o       models.Order
		changed bool
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := locked(tx).Where("id = ?", orderID)
		if userID != 0 {
			q = q.Where("user_id = ?", userID)
		}
		if err := q.First(&o).Error; err != nil {
			return err
		}

		var err error
		if changed, err = fn(&o); err != nil || !changed {
			return err
		}
		return tx.Omit(clause.Associations).Save(&o).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &o, changed, nil
}
