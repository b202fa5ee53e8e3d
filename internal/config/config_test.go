package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/facturas?sslmode=disable")
	t.Setenv("TOKEN_ENCRYPTION_KEY", "local-dev-key")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, DefaultProviderTimeout, cfg.ProviderTimeout)
	assert.Equal(t, DefaultRefreshLookahead, cfg.RefreshLookahead)
	assert.Equal(t, "/integraciones", cfg.DefaultRedirectPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Nil(t, cfg.CORSOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_URL", "https://facturas.example.com/")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("REFRESH_LOOKAHEAD", "120")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://facturas.example.com", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 120*time.Second, cfg.RefreshLookahead)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TOKEN_ENCRYPTION_KEY", "")
	t.Setenv("REDIS_URL", "")

	_, err := Load(missingFile(t))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "eighty"},
		{"port out of range", "PORT", "70000"},
		{"bad duration", "PROVIDER_TIMEOUT", "soon"},
		{"zero timeout", "PROVIDER_TIMEOUT", "0"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"relative redirect", "DEFAULT_REDIRECT_PATH", "integraciones"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(missingFile(t))
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "DATABASE_URL=postgres://file/facturas\nTOKEN_ENCRYPTION_KEY=from-file\nREDIS_URL=redis://file:6379\nPORT=7070\nGMAIL_CLIENT_ID=file-client\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PORT", "7171")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/facturas", cfg.DatabaseURL)
	assert.Equal(t, "from-file", cfg.TokenEncryptionKey)
	// process environment wins over the file
	assert.Equal(t, 7171, cfg.Port)

	id, err := cfg.Secrets.Secret("GMAIL_CLIENT_ID")
	require.NoError(t, err)
	assert.Equal(t, "file-client", id)
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	setRequired(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD$KEY=value\n"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
