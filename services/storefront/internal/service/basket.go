package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
	"github.com/Skotchmaster/storefront/services/storefront/internal/repo"
)

type BasketService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *BasketService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.Basket, error) {
	fe := FieldErrors{}
	if productID == 0 {
		fe["product_id"] = "required"
	}
	if quantity <= 0 {
		fe["quantity"] = "must be greater than zero"
	}
	if err := fe.errOrNil(); err != nil {
		return nil, err
	}

	basket, item, err := s.Repo.AddItem(ctx, userID, productID, uint(quantity))
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, FieldErrors{"product_id": "unknown product"}
		}
		return nil, fmt.Errorf("add item: %w", err)
	}

	publish(ctx, s.Events, events.TopicCart, strconv.FormatUint(uint64(userID), 10), events.TypeBasketItemAdded, map[string]any{
		"user_id":    userID,
		"basket_id":  basket.ID,
		"product_id": productID,
		"added":      quantity,
		"quantity":   item.Quantity,
	})
	return basket, nil
}

func (s *BasketService) Items(ctx context.Context, userID uint) (*models.Basket, error) {
	basket, err := s.Repo.Basket(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load basket: %w", err)
	}
	return basket, nil
}

func (s *BasketService) RemoveItem(ctx context.Context, userID, itemID uint) (*models.Basket, error) {
	if itemID == 0 {
		return nil, ErrItemNotFound
	}

	basket, item, err := s.Repo.RemoveItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("remove item: %w", err)
	}

	publish(ctx, s.Events, events.TopicCart, strconv.FormatUint(uint64(userID), 10), events.TypeBasketItemRemoved, map[string]any{
		"user_id":    userID,
		"basket_id":  basket.ID,
		"item_id":    item.ID,
		"product_id": item.ProductID,
	})
	return basket, nil
}
