package config

import (
	"log"
	"time"

	"github.com/Skotchmaster/storefront/pkg/config"
)

type ServiceConfig struct {
	config.Config
	Location       *time.Location
	PaymentSandbox bool
}

// Load reads the shared settings plus the store time zone and payment mode.
func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "storefront"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	tz := config.EnvDefault("STORE_TIMEZONE", "Asia/Bishkek")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatalf("invalid STORE_TIMEZONE %q: %v", tz, err)
	}

	return ServiceConfig{
		Config:         cfg,
		Location:       loc,
		PaymentSandbox: config.EnvBoolDefault("PAYMENT_SANDBOX", true),
	}
}
