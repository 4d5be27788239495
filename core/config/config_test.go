package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"asset-catalog/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "assets", cfg.Storage.Bucket)
	assert.Equal(t, 30, cfg.Storage.TimeoutSeconds)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "fs", cfg.Catalog.Source)
	assert.Equal(t, 4096, cfg.Catalog.ReserveCount)
	assert.Equal(t, 16*time.Millisecond, cfg.Catalog.PollInterval())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "s3")
	t.Setenv("CATALOG_RESERVE_COUNT", "128")
	t.Setenv("STORAGE_PREFIX", "textures")
	t.Setenv("SERVER_API_KEY", "secret")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Catalog.Source)
	assert.Equal(t, 128, cfg.Catalog.ReserveCount)
	assert.Equal(t, "textures", cfg.Storage.Prefix)
	assert.Equal(t, "secret", cfg.Server.ApiKey)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CATALOG_ROOT=/srv/assets\nLOG_FORMAT=console\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("CATALOG_ROOT")
		os.Unsetenv("LOG_FORMAT")
	})

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/assets", cfg.Catalog.Root)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("Source", func(t *testing.T) {
		t.Setenv("CATALOG_SOURCE", "ftp")
		_, err := config.LoadConfig(t.TempDir())
		assert.ErrorContains(t, err, "invalid catalog source")
	})

	t.Run("ReserveCount", func(t *testing.T) {
		t.Setenv("CATALOG_RESERVE_COUNT", "0")
		_, err := config.LoadConfig(t.TempDir())
		assert.ErrorContains(t, err, "reserve count")
	})
}
