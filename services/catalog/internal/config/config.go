package config

import (
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/services/catalog/internal/search"
)

type ServiceConfig struct {
	config.Config
	// Search.URL empty disables Elasticsearch; search then runs on the database.
	Search search.Config
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "catalog"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	return ServiceConfig{
		Config: cfg,
		Search: search.Config{
			URL:      config.EnvDefault("ES_URL", ""),
			Username: config.EnvDefault("ES_USER", ""),
			Password: config.EnvDefault("ES_PASSWORD", ""),
			Index:    config.EnvDefault("ES_INDEX", "products"),
		},
	}
}
