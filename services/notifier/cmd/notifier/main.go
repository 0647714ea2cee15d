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
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/services/notifier/internal/config"
	"github.com/Skotchmaster/storefront/services/notifier/internal/delivery"
)

func main() {
	pkgconfig.LoadDotEnv(".env")
	cfg := config.Load()
	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dispatcher := delivery.NewDispatcher(delivery.LogSender{Log: log}, reg)

	consumer, err := events.NewConsumer(cfg.KafkaBrokers, events.TopicNotification, cfg.GroupID, log)
	if err != nil {
		log.Error("consumer_init_error", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(reg)))

	go func() {
		log.Info("server_start", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_start_error", "error", err)
			stop()
		}
	}()

	log.Info("consumer_start", "topic", events.TopicNotification, "group", cfg.GroupID)
	if err := consumer.Run(ctx, dispatcher.Handle); err != nil {
		log.Error("consumer_error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	if err := consumer.Close(); err != nil {
		log.Error("consumer_close_error", "error", err)
	}
	log.Info("notifier stopped")
}
