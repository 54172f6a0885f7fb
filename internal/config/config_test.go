package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fabricstore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{
		"PORT", "DATABASE_URL", "APP_TIMEZONE", "MONTH_LABEL_LOCALE",
		"LOW_STOCK_THRESHOLD_KG", "DEFAULT_ADMIN_USERNAME", "DEFAULT_ADMIN_PASSWORD", "STORE_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/fabric")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "postgres://localhost/fabric", cfg.DatabaseURL)
	assert.Equal(t, "Asia/Jakarta", cfg.Location.String())
	assert.Equal(t, domain.LocaleIndonesian, cfg.MonthLocale)
	assert.Equal(t, 10.0, cfg.LowStockThresholdKg)
	assert.Equal(t, "Fabric Store", cfg.StoreName)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadReadsDotEnvButEnvironmentWins(t *testing.T) {
	clearEnv(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"DATABASE_URL=postgres://from-file/db\nPORT=9000\nMONTH_LABEL_LOCALE=en\n",
	), 0o600))
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("MONTH_LABEL_LOCALE")
	t.Setenv("PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-file/db", cfg.DatabaseURL)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, domain.LocaleEnglish, cfg.MonthLocale)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                   "abc",
		"APP_TIMEZONE":           "Mars/Olympus",
		"MONTH_LABEL_LOCALE":     "xx",
		"LOW_STOCK_THRESHOLD_KG": "-1",
		"DEFAULT_ADMIN_USERNAME": "owner",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://localhost/fabric")
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/fabric")
	t.Setenv("APP_TIMEZONE", "UTC")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
}
