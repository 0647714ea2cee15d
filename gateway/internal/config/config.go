package config

import (
	"github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	config.Config
	CatalogURL    string
	StorefrontURL string
	CSRFEnabled   bool
}

func Load() *Config {
	base := config.Load()
	if base.ServiceName == "" {
		base.ServiceName = "gateway"
	}
	cfg := &Config{
		Config:        base,
		CatalogURL:    config.EnvDefault("CATALOG_URL", ""),
		StorefrontURL: config.EnvDefault("STOREFRONT_URL", ""),
		CSRFEnabled:   config.EnvBoolDefault("CSRF_ENABLED", true),
	}
	config.MustNonEmpty(cfg.AuthHTTPURL, "AUTH_URL")
	config.MustNonEmpty(cfg.CatalogURL, "CATALOG_URL")
	config.MustNonEmpty(cfg.StorefrontURL, "STOREFRONT_URL")
	return cfg
}
