// Package config содержит логику чтения конфигурации трекера потребления воды.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации трекера потребления воды.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseURI   string `env:"DATABASE_URI"`
	StoragePath   string `env:"STORAGE_PATH"`
	NotifyURL     string `env:"NOTIFY_WEBHOOK_URL"`
	AuthSecret    string `env:"AUTH_SECRET"`
	OwnerPassword string `env:"OWNER_PASSWORD"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envStoragePath := cfg.StoragePath
	envNotifyURL := cfg.NotifyURL
	envAuthSecret := cfg.AuthSecret
	envOwnerPassword := cfg.OwnerPassword

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "PostgreSQL URI (empty means local SQLite storage)")
	flag.StringVar(&cfg.StoragePath, "f", "waterwise.db", "path to local SQLite storage file")
	flag.StringVar(&cfg.NotifyURL, "n", "", "webhook URL for reminder notifications")
	flag.StringVar(&cfg.AuthSecret, "s", "", "session token signing key")
	flag.StringVar(&cfg.OwnerPassword, "p", "", "owner password (empty disables authentication)")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envStoragePath != "" {
		cfg.StoragePath = envStoragePath
	}
	if envNotifyURL != "" {
		cfg.NotifyURL = envNotifyURL
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envOwnerPassword != "" {
		cfg.OwnerPassword = envOwnerPassword
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "waterwise.db"
	}

	return cfg, nil
}
