package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"STORESYNC_APP_NAME":                os.Getenv("STORESYNC_APP_NAME"),
		"STORESYNC_APP_ENV":                 os.Getenv("STORESYNC_APP_ENV"),
		"STORESYNC_APP_PORT":                os.Getenv("STORESYNC_APP_PORT"),
		"STORESYNC_DATABASE_HOST":           os.Getenv("STORESYNC_DATABASE_HOST"),
		"STORESYNC_DATABASE_PORT":           os.Getenv("STORESYNC_DATABASE_PORT"),
		"STORESYNC_DATABASE_USER":           os.Getenv("STORESYNC_DATABASE_USER"),
		"STORESYNC_DATABASE_PASSWORD":       os.Getenv("STORESYNC_DATABASE_PASSWORD"),
		"STORESYNC_DATABASE_DBNAME":         os.Getenv("STORESYNC_DATABASE_DBNAME"),
		"STORESYNC_DATABASE_SSLMODE":        os.Getenv("STORESYNC_DATABASE_SSLMODE"),
		"STORESYNC_DATABASE_MAX_OPEN_CONNS": os.Getenv("STORESYNC_DATABASE_MAX_OPEN_CONNS"),
		"STORESYNC_DATABASE_MAX_IDLE_CONNS": os.Getenv("STORESYNC_DATABASE_MAX_IDLE_CONNS"),
		"STORESYNC_SHOPIFY_API_VERSION":     os.Getenv("STORESYNC_SHOPIFY_API_VERSION"),
		"STORESYNC_SHOPIFY_SHOP_DOMAIN":     os.Getenv("STORESYNC_SHOPIFY_SHOP_DOMAIN"),
		"STORESYNC_SYNC_PAGE_SIZE":          os.Getenv("STORESYNC_SYNC_PAGE_SIZE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storesync-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "storesync", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "2024-10", cfg.Shopify.APIVersion)
		assert.Equal(t, 3, cfg.Shopify.MaxRetries)
		assert.Equal(t, 200, cfg.Sync.PageSize)
	})

	t.Run("loads values from environment variables with STORESYNC prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("STORESYNC_APP_NAME", "test-app")
		os.Setenv("STORESYNC_APP_ENV", "testing")
		os.Setenv("STORESYNC_APP_PORT", "9000")
		os.Setenv("STORESYNC_DATABASE_HOST", "testdb.local")
		os.Setenv("STORESYNC_DATABASE_PORT", "5433")
		os.Setenv("STORESYNC_DATABASE_USER", "testuser")
		os.Setenv("STORESYNC_DATABASE_PASSWORD", "testpass")
		os.Setenv("STORESYNC_DATABASE_DBNAME", "testdb")
		os.Setenv("STORESYNC_DATABASE_SSLMODE", "require")
		os.Setenv("STORESYNC_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("STORESYNC_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("STORESYNC_SHOPIFY_SHOP_DOMAIN", "demo.myshopify.com")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "demo.myshopify.com", cfg.Shopify.ShopDomain)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("STORESYNC_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("STORESYNC_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("STORESYNC_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates page size upper bound", func(t *testing.T) {
		clearEnv()
		os.Setenv("STORESYNC_SYNC_PAGE_SIZE", "500")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.page_size")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"STORESYNC_APP_ENV":                 os.Getenv("STORESYNC_APP_ENV"),
		"STORESYNC_DATABASE_PASSWORD":       os.Getenv("STORESYNC_DATABASE_PASSWORD"),
		"STORESYNC_DATABASE_SSLMODE":        os.Getenv("STORESYNC_DATABASE_SSLMODE"),
		"STORESYNC_HTTP_CORS_ALLOW_ORIGINS": os.Getenv("STORESYNC_HTTP_CORS_ALLOW_ORIGINS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("STORESYNC_APP_ENV", "production")
		os.Setenv("STORESYNC_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("STORESYNC_APP_ENV", "production")
		os.Setenv("STORESYNC_DATABASE_PASSWORD", "secure-password")
		os.Setenv("STORESYNC_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("STORESYNC_APP_ENV", "production")
		os.Setenv("STORESYNC_DATABASE_PASSWORD", "secure-password")
		os.Setenv("STORESYNC_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}
