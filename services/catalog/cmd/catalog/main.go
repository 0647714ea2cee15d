package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/storefront/pkg/authclient"
	"github.com/Skotchmaster/storefront/pkg/cookie"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/services/catalog/internal/config"
	"github.com/Skotchmaster/storefront/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/search"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
)

func main() {
	pkgconfig.LoadDotEnv(".env")
	cfg := config.Load()
	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db_init_error", "error", err)
		os.Exit(1)
	}

	store := &repo.GormRepo{DB: gdb}
	if cfg.AutoMigrate {
		if err := store.Migrate(initCtx); err != nil {
			log.Error("db_migrate_error", "error", err)
			os.Exit(1)
		}
	}

	pub := events.NewPublisher(cfg.KafkaBrokers)
	svc := &service.CatalogService{Repo: store, Events: pub}

	if cfg.Search.URL != "" {
		idx, err := search.NewClient(initCtx, cfg.Search)
		if err != nil {
			log.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			svc.Index = idx
			go func() {
				ctx := logging.IntoContext(context.Background(), log)
				n, err := svc.Reindex(ctx)
				if err != nil {
					log.Warn("reindex_error", "indexed", n, "error", err)
					return
				}
				log.Info("reindex_done", "indexed", n)
			}()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var authClient *authclient.Client
	if cfg.AuthHTTPURL != "" {
		authClient = authclient.NewClient(cfg.AuthHTTPURL)
	}

	e := httpserver.NewEcho(log, metrics.NewServerMetrics(reg, "catalog"))
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
		JWTSecret:      cfg.JWTAccessSecret,
		AuthClient:     authClient,
		Cookies:        cookie.Jar{Secure: cfg.CookieSecure},
		Gatherer:       reg,
		Ready:          store.Ping,
	})

	go func() {
		log.Info("server_start", "addr", cfg.Addr(), "search", svc.Index != nil)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_start_error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	if p, ok := pub.(*events.Producer); ok {
		if err := p.Close(); err != nil {
			log.Error("kafka_close_error", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		log.Error("db_close_error", "error", err)
	}
	log.Info("catalog stopped")
}
