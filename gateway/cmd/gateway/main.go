package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/storefront/gateway/internal/config"
	"github.com/Skotchmaster/storefront/gateway/internal/httpserver"
	"github.com/Skotchmaster/storefront/gateway/internal/middleware"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

func main() {
	pkgconfig.LoadDotEnv(".env")
	cfg := config.Load()
	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.Common(log, metrics.NewServerMetrics(reg, "gateway"))...)

	var csrf *middleware.CSRFConfig
	if cfg.CSRFEnabled {
		c := middleware.DefaultCSRFConfig()
		c.Secure = cfg.CookieSecure
		c.SkipPaths = []string{"/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh"}
		c.SkipPrefixes = []string{"/api/v1/auth/otp/"}
		csrf = &c
	}

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:       cfg.AuthHTTPURL,
		CatalogURL:    cfg.CatalogURL,
		StorefrontURL: cfg.StorefrontURL,
		Gatherer:      reg,
		CSRF:          csrf,
	}); err != nil {
		log.Error("router_init_error", "error", err)
		os.Exit(1)
	}

	go func() {
		log.Info("server_start", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_start_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	log.Info("gateway stopped")
}
