package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/transport"
)

const landingCategories = 3

// Landing is everything the storefront home page renders in one call.
type Landing struct {
	TopBanners    []models.Banner
	MiddleBanners []models.Banner
	Categories    []models.Category
	Products      *Page
}

func (s *CatalogService) Landing(ctx context.Context, f repo.ProductFilter, offset, limit int) (*Landing, error) {
	top, err := s.Repo.Banners(ctx, models.BannerIndexHead)
	if err != nil {
		return nil, fmt.Errorf("top banners: %w", err)
	}
	middle, err := s.Repo.Banners(ctx, models.BannerIndexMiddle)
	if err != nil {
		return nil, fmt.Errorf("middle banners: %w", err)
	}
	cats, err := s.Repo.FirstCategories(ctx, landingCategories)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	page, err := s.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return nil, err
	}
	return &Landing{TopBanners: top, MiddleBanners: middle, Categories: cats, Products: page}, nil
}

func (s *CatalogService) CreateBanner(ctx context.Context, req transport.CreateBannerRequest) (*models.Banner, error) {
	b := models.Banner{
		Title:    strings.TrimSpace(req.Title),
		Image:    strings.TrimSpace(req.Image),
		Location: strings.TrimSpace(req.Location),
	}

	fe := FieldErrors{}
	if b.Title == "" {
		fe["title"] = "required"
	}
	if b.Image == "" {
		fe["image"] = "required"
	}
	if b.Location != models.BannerIndexHead && b.Location != models.BannerIndexMiddle {
		fe["location"] = fmt.Sprintf("must be %s or %s", models.BannerIndexHead, models.BannerIndexMiddle)
	}
	if err := fe.errOrNil(); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateBanner(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
