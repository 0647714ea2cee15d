package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skotchmaster/storefront/gateway/internal/middleware"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type Deps struct {
	AuthURL       string
	CatalogURL    string
	StorefrontURL string

	Gatherer prometheus.Gatherer
	// CSRF enables the double-submit check on proxied routes when set.
	CSRF *middleware.CSRFConfig
}

// Register mounts the public /api/v1 surface. Authentication is enforced by
// the services behind it, which also refresh expired access cookies.
func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	authProxy, err := newProxy(d.AuthURL, "/api/v1/auth")
	if err != nil {
		return err
	}
	catalogProxy, err := newProxy(d.CatalogURL, "/api/v1")
	if err != nil {
		return err
	}
	storefrontProxy, err := newProxy(d.StorefrontURL, "/api/v1")
	if err != nil {
		return err
	}

	var mw []echo.MiddlewareFunc
	if d.CSRF != nil {
		mw = append(mw, middleware.CSRF(*d.CSRF))
	}

	e.Any("/api/v1/auth/*", authProxy, mw...)

	api := e.Group("/api/v1", mw...)
	api.Any("/catalog/*", catalogProxy)
	for _, prefix := range []string{"/basket", "/checkout", "/orders", "/pay-order"} {
		api.Any(prefix, storefrontProxy)
		api.Any(prefix+"/*", storefrontProxy)
	}
	return nil
}
