package config

import (
	"log"

	"github.com/Skotchmaster/storefront/pkg/config"
)

type ServiceConfig struct {
	config.Config
	GroupID string
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "notifier"
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatalf("missing required env KAFKA_BROKERS")
	}
	return ServiceConfig{
		Config:  cfg,
		GroupID: config.EnvDefault("KAFKA_GROUP_ID", "notifier"),
	}
}
