package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("From file", func(t *testing.T) {
		dir := t.TempDir()
		content := "SERVER_ADDRESS=127.0.0.1:9000\n" +
			"POSTGRES_USERNAME=rental\n" +
			"POSTGRES_PASSWORD=secret\n" +
			"POSTGRES_HOST=db\n" +
			"POSTGRES_DATABASE=rentals\n" +
			"JWT_SECRET=signing-key\n" +
			"REQUEST_TIMEOUT=3s\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddress)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, StoragePostgres, cfg.StorageDriver)
		assert.Equal(t, "postgres://rental:secret@db:5432/rentals?sslmode=disable", cfg.DatabaseURL())
		assert.Equal(t, "file://migrations", cfg.MigrationURL)
	})

	t.Run("Environment without file", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", StorageMemory)
		t.Setenv("JWT_SECRET", "env-key")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, StorageMemory, cfg.StorageDriver)
		assert.Equal(t, "env-key", cfg.JWTSecret)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"),
			[]byte("STORAGE_DRIVER=memory\nJWT_SECRET=file-key\n"), 0o600))
		t.Setenv("JWT_SECRET", "env-key")

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "env-key", cfg.JWTSecret)
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		t.Setenv("JWT_SECRET", "key")

		_, err := LoadConfig(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("Postgres requires connection", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", StoragePostgres)
		t.Setenv("JWT_SECRET", "key")

		_, err := LoadConfig(t.TempDir())
		assert.Error(t, err)
	})
}
