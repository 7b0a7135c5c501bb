package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kPratik07/Bank-referral-system/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, store.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "referral.db", cfg.DBDSN)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REFERRAL_DB_DRIVER", "postgres")
	t.Setenv("REFERRAL_DB_DSN", "postgres://localhost/referral?sslmode=disable")
	t.Setenv("REFERRAL_LOG_LEVEL", "debug")
	t.Setenv("REFERRAL_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, store.Options{Driver: "postgres", DSN: "postgres://localhost/referral?sslmode=disable"}, cfg.StoreOptions())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("REFERRAL_HTTP_ADDR=:9999\n"), 0o600))
	// Restore whatever godotenv sets.
	t.Setenv("REFERRAL_HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("REFERRAL_HTTP_ADDR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("REFERRAL_SHUTDOWN_TIMEOUT", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parse env:"), err.Error())
}

func TestValidate(t *testing.T) {
	cfg := Config{DBDriver: "mysql", DBDSN: " ", ShutdownTimeout: 0}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `unsupported driver "mysql"`)
	assert.ErrorContains(t, err, "REFERRAL_DB_DSN")
	assert.ErrorContains(t, err, "REFERRAL_SHUTDOWN_TIMEOUT")

	ok := Config{DBDriver: store.DriverSQLite, DBDSN: ":memory:", ShutdownTimeout: time.Second}
	assert.NoError(t, ok.Validate())
}
