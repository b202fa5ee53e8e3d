// Package config loads runtime settings and provider secrets from the
// environment, optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

const (
	DefaultPort                = 8080
	DefaultProviderTimeout     = 15 * time.Second
	DefaultRefreshLookahead    = 60 * time.Second
	DefaultRedirectPath        = "/integraciones"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "json"
	DefaultDBMaxOpenConns      = 25
	DefaultDBMaxIdleConns      = 5
	DefaultDBConnMaxLifetime   = 300 * time.Second
	DefaultDBConnMaxIdleTime   = 60 * time.Second
	DefaultSessionCookieName   = "session"
	DefaultShutdownGracePeriod = 10 * time.Second
)

// Config holds the process settings.
type Config struct {
	Port                int           `validate:"min=1,max=65535"`
	BaseURL             string        `validate:"required,url"`
	DatabaseURL         string        `validate:"required"`
	RedisURL            string        `validate:"required,url"`
	TokenEncryptionKey  string        `validate:"required"`
	ProviderTimeout     time.Duration `validate:"gt=0"`
	RefreshLookahead    time.Duration `validate:"gte=0"`
	DefaultRedirectPath string        `validate:"required,startswith=/"`
	LogLevel            string        `validate:"oneof=debug info warn error"`
	LogFormat           string        `validate:"oneof=json text"`
	SessionCookieName   string        `validate:"required"`
	CORSOrigins         []string

	DBMaxOpenConns    int `validate:"gte=0"`
	DBMaxIdleConns    int `validate:"gte=0"`
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	ShutdownGracePeriod time.Duration `validate:"gt=0"`

	// Secrets resolves per-provider client and state secrets.
	Secrets *EnvSecrets `validate:"-"`
}

// Load reads the given .env files (default ".env"), overlays the process
// environment and validates the result. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	env, err := readEnvFiles(files)
	if err != nil {
		return nil, err
	}
	src := &EnvSecrets{file: env}

	port, err := src.intValue("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	providerTimeout, err := src.durationValue("PROVIDER_TIMEOUT", DefaultProviderTimeout)
	if err != nil {
		return nil, err
	}
	lookahead, err := src.durationValue("REFRESH_LOOKAHEAD", DefaultRefreshLookahead)
	if err != nil {
		return nil, err
	}
	maxOpen, err := src.intValue("DB_MAX_OPEN_CONNS", DefaultDBMaxOpenConns)
	if err != nil {
		return nil, err
	}
	maxIdle, err := src.intValue("DB_MAX_IDLE_CONNS", DefaultDBMaxIdleConns)
	if err != nil {
		return nil, err
	}
	lifetime, err := src.durationValue("DB_CONN_MAX_LIFETIME", DefaultDBConnMaxLifetime)
	if err != nil {
		return nil, err
	}
	idleTime, err := src.durationValue("DB_CONN_MAX_IDLE_TIME", DefaultDBConnMaxIdleTime)
	if err != nil {
		return nil, err
	}
	grace, err := src.durationValue("SHUTDOWN_GRACE_PERIOD", DefaultShutdownGracePeriod)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                port,
		BaseURL:             strings.TrimRight(src.value("BASE_URL", fmt.Sprintf("http://localhost:%d", port)), "/"),
		DatabaseURL:         src.value("DATABASE_URL", ""),
		RedisURL:            src.value("REDIS_URL", ""),
		TokenEncryptionKey:  src.value("TOKEN_ENCRYPTION_KEY", ""),
		ProviderTimeout:     providerTimeout,
		RefreshLookahead:    lookahead,
		DefaultRedirectPath: src.value("DEFAULT_REDIRECT_PATH", DefaultRedirectPath),
		LogLevel:            strings.ToLower(src.value("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:           strings.ToLower(src.value("LOG_FORMAT", DefaultLogFormat)),
		SessionCookieName:   src.value("SESSION_COOKIE_NAME", DefaultSessionCookieName),
		CORSOrigins:         splitList(src.value("CORS_ORIGINS", "")),
		DBMaxOpenConns:      maxOpen,
		DBMaxIdleConns:      maxIdle,
		DBConnMaxLifetime:   lifetime,
		DBConnMaxIdleTime:   idleTime,
		ShutdownGracePeriod: grace,
		Secrets:             src,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func readEnvFiles(files []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, file, err)
		}
		// Earlier files win, matching godotenv.Load.
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// lookup returns the process environment value, falling back to the .env
// files when the variable is unset or empty.
func (s *EnvSecrets) lookup(key string) (string, bool) {
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	v, ok := s.file[key]
	return v, ok
}

func (s *EnvSecrets) value(key, def string) string {
	if v, ok := s.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (s *EnvSecrets) intValue(key string, def int) (int, error) {
	raw := s.value(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrConfiguration, key, err)
	}
	return n, nil
}

// durationValue accepts Go duration strings ("15s") or bare seconds ("15").
func (s *EnvSecrets) durationValue(key string, def time.Duration) (time.Duration, error) {
	raw := s.value(key, "")
	if raw == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrConfiguration, key, err)
	}
	return d, nil
}
