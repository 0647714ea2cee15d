package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/dbtest"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/transport"
)

type fakeIndex struct {
	docs      map[uint]string
	searchIDs []uint
	searchErr error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]string{}} }

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []uint, error) {
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	return int64(len(f.searchIDs)), f.searchIDs, nil
}

func (f *fakeIndex) Put(_ context.Context, p *models.Product) error {
	f.docs[p.ID] = p.Title
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id uint) error {
	delete(f.docs, id)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(t *testing.T) (*CatalogService, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	return &CatalogService{
		Repo:   &repo.GormRepo{DB: dbtest.Open(t, models.All()...)},
		Events: rec,
	}, rec
}

func seed(t *testing.T, s *CatalogService) (pizza, drinks *models.Category) {
	t.Helper()
	ctx := context.Background()
	pizza, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{Title: "Pizza"})
	require.NoError(t, err)
	drinks, err = s.CreateCategory(ctx, transport.CreateCategoryRequest{Title: "Cold drinks"})
	require.NoError(t, err)

	np := dec("10.00")
	for _, req := range []transport.CreateProductRequest{
		{CategoryID: &pizza.ID, Title: "Margherita", Description: "tomato, mozzarella", Price: dec("12.50"), NewPrice: &np, Rating: dec("4.5")},
		{CategoryID: &pizza.ID, Title: "Pepperoni", Price: dec("14.00"), Rating: dec("4.8")},
		{CategoryID: &drinks.ID, Title: "Lemonade", Description: "fresh lemon", Price: dec("4.50"), Rating: dec("3.9")},
	} {
		_, err := s.CreateProduct(ctx, req)
		require.NoError(t, err)
	}
	return pizza, drinks
}

func TestListProductsFilters(t *testing.T) {
	s, _ := newService(t)
	seed(t, s)
	ctx := context.Background()

	titles := func(f repo.ProductFilter) []string {
		page, err := s.ListProducts(ctx, f, 0, 10)
		require.NoError(t, err)
		out := make([]string, 0, len(page.Items))
		for _, p := range page.Items {
			out = append(out, p.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Margherita", "Pepperoni", "Lemonade"}, titles(repo.ProductFilter{}))
	assert.Equal(t, []string{"Margherita", "Pepperoni"}, titles(repo.ProductFilter{MinPrice: decimal.NewNullDecimal(dec("10"))}))
	assert.Equal(t, []string{"Lemonade"}, titles(repo.ProductFilter{MaxPrice: decimal.NewNullDecimal(dec("5"))}))
	assert.Equal(t, []string{"Pepperoni"}, titles(repo.ProductFilter{MinRating: decimal.NewNullDecimal(dec("4.6"))}))
	assert.Equal(t, []string{"Lemonade"}, titles(repo.ProductFilter{Category: "DRINK"}))
	assert.Empty(t, titles(repo.ProductFilter{Category: "sushi"}))

	page, err := s.ListProducts(ctx, repo.ProductFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Category)
	assert.Equal(t, "Cold drinks", page.Items[0].Category.Title)
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	s, _ := newService(t)
	seed(t, s)
	ctx := context.Background()

	page, err := s.Search(ctx, "LEMON", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Lemonade", page.Items[0].Title)

	// a literal % must not match everything
	page, err = s.Search(ctx, "%", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	idx := newFakeIndex()
	idx.searchErr = errors.New("cluster down")
	s.Index = idx
	page, err = s.Search(ctx, "mozzarella", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Margherita", page.Items[0].Title)

	_, err = s.Search(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchUsesIndexOrder(t *testing.T) {
	s, _ := newService(t)
	seed(t, s)
	idx := newFakeIndex()
	idx.searchIDs = []uint{3, 99, 1}
	s.Index = idx

	page, err := s.Search(context.Background(), "anything", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Lemonade", page.Items[0].Title)
	assert.Equal(t, "Margherita", page.Items[1].Title)
}

func TestCreateProductValidation(t *testing.T) {
	s, rec := newService(t)
	missing := uint(42)

	_, err := s.CreateProduct(context.Background(), transport.CreateProductRequest{
		CategoryID: &missing,
		Title:      " ",
		Price:      dec("-1"),
		Rating:     dec("6"),
	})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldErrors{
		"category_id": "unknown category",
		"title":       "required",
		"price":       "must not be negative",
		"rating":      "must be between 0 and 5",
	}, fe)
	assert.Empty(t, rec.Published)
}

func TestPatchAndDeleteKeepIndexInSync(t *testing.T) {
	s, rec := newService(t)
	idx := newFakeIndex()
	s.Index = idx
	pizza, _ := seed(t, s)
	ctx := context.Background()
	require.Len(t, idx.docs, 3)

	title, price := "Margherita XL", dec("15.00")
	p, err := s.PatchProduct(ctx, 1, transport.PatchProductRequest{Title: &title, Price: &price, ClearNewPrice: true})
	require.NoError(t, err)
	assert.Equal(t, "Margherita XL", p.Title)
	assert.False(t, p.NewPrice.Valid)
	assert.True(t, p.EffectivePrice().Equal(dec("15")))
	assert.Equal(t, pizza.ID, *p.CategoryID)
	assert.Equal(t, "Margherita XL", idx.docs[1])

	_, err = s.PatchProduct(ctx, 99, transport.PatchProductRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteProduct(ctx, 2))
	assert.NotContains(t, idx.docs, uint(2))
	assert.ErrorIs(t, s.DeleteProduct(ctx, 2), ErrNotFound)

	assert.Equal(t, []string{
		events.TypeProductCreated, events.TypeProductCreated, events.TypeProductCreated,
		events.TypeProductUpdated, events.TypeProductDeleted,
	}, rec.Types())

	n, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
