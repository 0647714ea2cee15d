package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/transport"
)

func TestLanding(t *testing.T) {
	s, _ := newService(t)
	pizza, _ := seed(t, s)
	ctx := context.Background()

	for _, title := range []string{"Salads", "Desserts"} {
		_, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{Title: title})
		require.NoError(t, err)
	}

	landing, err := s.Landing(ctx, repo.ProductFilter{}, 0, 2)
	require.NoError(t, err)
	assert.Empty(t, landing.TopBanners)
	assert.Empty(t, landing.MiddleBanners)
	require.Len(t, landing.Categories, 3)
	assert.Equal(t, pizza.ID, landing.Categories[0].ID)
	assert.Equal(t, "Salads", landing.Categories[2].Title)
	assert.Equal(t, int64(3), landing.Products.Total)
	assert.Len(t, landing.Products.Items, 2)

	for _, req := range []transport.CreateBannerRequest{
		{Title: "Summer sale", Image: "banners/summer.png", Location: models.BannerIndexHead},
		{Title: "Free delivery", Image: "banners/delivery.png", Location: models.BannerIndexMiddle},
		{Title: "New menu", Image: "banners/menu.png", Location: models.BannerIndexHead},
	} {
		_, err := s.CreateBanner(ctx, req)
		require.NoError(t, err)
	}

	landing, err = s.Landing(ctx, repo.ProductFilter{Category: "drinks"}, 0, 20)
	require.NoError(t, err)
	require.Len(t, landing.TopBanners, 2)
	assert.Equal(t, "Summer sale", landing.TopBanners[0].Title)
	require.Len(t, landing.MiddleBanners, 1)
	assert.Equal(t, "Free delivery", landing.MiddleBanners[0].Title)
	require.Len(t, landing.Products.Items, 1)
	assert.Equal(t, "Lemonade", landing.Products.Items[0].Title)
}

func TestCreateBannerValidation(t *testing.T) {
	s, _ := newService(t)

	_, err := s.CreateBanner(context.Background(), transport.CreateBannerRequest{Title: " ", Location: "footer"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, fe, "title")
	assert.Contains(t, fe, "image")
	assert.Contains(t, fe, "location")
}
