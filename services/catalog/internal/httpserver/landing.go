package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/catalog/internal/transport"
)

// GetIndex serves the home page: banners, the first categories and a filtered
// product page.
func (h *CatalogHTTP) GetIndex(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.index")

	filter, fe := productFilter(c)
	if len(fe) > 0 {
		return fail(c, l, "get_index", fe)
	}

	pageNo, offset, limit := paging(c)
	landing, err := h.Svc.Landing(ctx, filter, offset, limit)
	if err != nil {
		return fail(c, l, "get_index", err)
	}

	return c.JSON(http.StatusOK, transport.IndexPage{
		TopBanner:    transport.NewBanners(landing.TopBanners),
		MiddleBanner: transport.NewBanners(landing.MiddleBanners),
		Categories:   transport.NewCategories(landing.Categories),
		Products:     pageOf(landing.Products, pageNo, offset, limit),
	})
}

func (h *CatalogHTTP) CreateBanner(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "banner.create")

	var req transport.CreateBannerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("banner_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	b, err := h.Svc.CreateBanner(ctx, req)
	if err != nil {
		return fail(c, l, "banner_create", err)
	}
	l.Info("create_banner_success", "banner_id", b.ID, "location", b.Location)
	return c.JSON(http.StatusCreated, transport.NewBanner(b))
}
