package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skotchmaster/storefront/pkg/authclient"
	"github.com/Skotchmaster/storefront/pkg/cookie"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

type Deps struct {
	BasketHandler *BasketHTTP
	OrderHandler  *OrderHTTP
	JWTSecret     []byte
	AuthClient    *authclient.Client
	Cookies       cookie.Jar
	Gatherer      prometheus.Gatherer
	Ready         func(ctx context.Context) error
}

// Register mounts the storefront routes. Paths are registered without the
// trailing slash; the server strips it before routing.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	var refresher authmw.Refresher
	if d.AuthClient != nil {
		refresher = d.AuthClient
	}
	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, refresher, d.Cookies)

	basket := e.Group("/basket/items", authMW.RequireAuth)
	basket.GET("", d.BasketHandler.ListItems)
	basket.POST("/add", d.BasketHandler.AddItem)
	basket.DELETE("/:id", d.BasketHandler.RemoveItem)

	e.POST("/checkout", d.OrderHandler.Checkout, authMW.RequireAuth)
	e.POST("/pay-order/:id", d.OrderHandler.Pay, authMW.RequireAuth)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.GET("/:id/receipt", d.OrderHandler.Receipt)

	e.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus, authMW.RequireAdmin)
}

// NewEcho builds the server with the middleware chain shared by main and tests.
func NewEcho(base *slog.Logger, m *metrics.ServerMetrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(base))
	if m != nil {
		e.Use(m.Middleware())
	}
	return e
}
