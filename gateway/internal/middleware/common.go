package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/pkg/metrics"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

// Common is the chain every proxied request passes through. m may be nil.
func Common(base *slog.Logger, m *metrics.ServerMetrics) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLogger(base),
		ecM.Secure(),
	}
	if m != nil {
		chain = append(chain, m.Middleware())
	}
	return chain
}
