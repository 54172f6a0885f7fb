package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"fabricstore/internal/domain"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 int
	DatabaseURL          string
	Location             *time.Location
	MonthLocale          domain.Locale
	DefaultAdminUsername string
	DefaultAdminPassword string
	LowStockThresholdKg  float64
	StoreName            string
}

// Load reads ./.env when present and then the process environment. Variables
// already set in the environment win over the file.
func Load() (Config, error) {
	envPath := filepath.Join(".", ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envPath, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", envPath, err)
	}

	cfg := Config{
		Port:                8080,
		Location:            time.UTC,
		MonthLocale:         domain.LocaleIndonesian,
		LowStockThresholdKg: 10,
	}
	if portRaw := env("PORT"); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", portRaw)
		}
		cfg.Port = port
	}

	cfg.DatabaseURL = env("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}

	tz := firstNonEmpty(env("APP_TIMEZONE"), "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE: %q", tz)
	}
	cfg.Location = loc

	if localeRaw := env("MONTH_LABEL_LOCALE"); localeRaw != "" {
		locale := domain.Locale(strings.ToLower(localeRaw))
		if !locale.Valid() {
			return Config{}, fmt.Errorf("invalid MONTH_LABEL_LOCALE: %q", localeRaw)
		}
		cfg.MonthLocale = locale
	}

	if thresholdRaw := env("LOW_STOCK_THRESHOLD_KG"); thresholdRaw != "" {
		threshold, err := strconv.ParseFloat(thresholdRaw, 64)
		if err != nil || threshold < 0 {
			return Config{}, fmt.Errorf("invalid LOW_STOCK_THRESHOLD_KG: %q", thresholdRaw)
		}
		cfg.LowStockThresholdKg = threshold
	}

	cfg.StoreName = firstNonEmpty(env("STORE_NAME"), "Fabric Store")

	cfg.DefaultAdminUsername = env("DEFAULT_ADMIN_USERNAME")
	cfg.DefaultAdminPassword = os.Getenv("DEFAULT_ADMIN_PASSWORD")
	if cfg.DefaultAdminUsername != "" && cfg.DefaultAdminPassword == "" {
		return Config{}, fmt.Errorf("DEFAULT_ADMIN_PASSWORD is required when DEFAULT_ADMIN_USERNAME is set")
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
