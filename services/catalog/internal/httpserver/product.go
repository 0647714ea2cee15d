package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
	"github.com/Skotchmaster/storefront/services/catalog/internal/transport"
	"github.com/Skotchmaster/storefront/services/catalog/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageOf(page *service.Page, pageNo, offset, limit int) transport.ProductPage {
	return transport.ProductPage{
		Data: transport.NewProducts(page.Items),
		Meta: transport.PageMeta{
			Page:       pageNo,
			Size:       limit,
			Total:      page.Total,
			TotalPages: util.TotalPages(page.Total, limit),
			HasPrev:    pageNo > 1,
			HasNext:    int64(offset+limit) < page.Total,
		},
	}
}

func paging(c echo.Context) (page, offset, limit int) {
	page = util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit = util.Calculate(page, size)
	return page, offset, limit
}

// decimalParam parses an optional numeric query parameter into fe on error.
func decimalParam(c echo.Context, name string, fe service.FieldErrors) decimal.NullDecimal {
	raw := c.QueryParam(name)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		fe[name] = "must be a number"
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func productFilter(c echo.Context) (repo.ProductFilter, service.FieldErrors) {
	fe := service.FieldErrors{}
	filter := repo.ProductFilter{
		MinPrice:  decimalParam(c, "min_price", fe),
		MaxPrice:  decimalParam(c, "max_price", fe),
		MinRating: decimalParam(c, "min_rating", fe),
		Category:  c.QueryParam("category"),
	}
	return filter, fe
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, ok := pathID(c)
	if !ok {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a positive integer")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(c, l, "get_product", err)
	}
	return c.JSON(http.StatusOK, transport.NewProduct(product))
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	filter, fe := productFilter(c)
	if len(fe) > 0 {
		return fail(c, l, "get_products", fe)
	}

	pageNo, offset, limit := paging(c)
	page, err := h.Svc.ListProducts(ctx, filter, offset, limit)
	if err != nil {
		return fail(c, l, "get_products", err)
	}

	l.Info("get_products_success", "total", page.Total)
	return c.JSON(http.StatusOK, pageOf(page, pageNo, offset, limit))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	pageNo, offset, limit := paging(c)
	page, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(c, l, "search_products", err)
	}
	return c.JSON(http.StatusOK, pageOf(page, pageNo, offset, limit))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(c, l, "product_create", err)
	}

	l.Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, transport.NewProduct(created))
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "patch_product")

	id, ok := pathID(c)
	if !ok {
		l.Warn("product_patch_error", "status", 400, "reason", "id is not a positive integer")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(c, l, "product_patch", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.NewProduct(prod))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	id, ok := pathID(c)
	if !ok {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not a positive integer")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(c, l, "product_delete", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		return fail(c, l, "get_categories", err)
	}
	return c.JSON(http.StatusOK, transport.NewCategories(cats))
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("category_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(c, l, "category_create", err)
	}
	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, transport.Category{ID: cat.ID, Title: cat.Title})
}
