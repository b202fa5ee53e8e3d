package config

import (
	"fmt"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Ensure EnvSecrets implements SecretProvider
var _ driven.SecretProvider = (*EnvSecrets)(nil)

// Per-provider secret key suffixes.
const (
	ClientIDSuffix     = "_CLIENT_ID"
	ClientSecretSuffix = "_CLIENT_SECRET"
	StateSecretSuffix  = "_STATE_SECRET"
)

// EnvSecrets resolves secrets from the process environment, then from the
// values read out of .env files.
type EnvSecrets struct {
	file map[string]string
}

// NewEnvSecrets returns a provider backed by the process environment and
// the given fallback values.
func NewEnvSecrets(fallback map[string]string) *EnvSecrets {
	if fallback == nil {
		fallback = map[string]string{}
	}
	return &EnvSecrets{file: fallback}
}

// Secret returns the value for key. Absent and empty values are configuration errors.
func (s *EnvSecrets) Secret(key string) (string, error) {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: missing %s", domain.ErrConfiguration, key)
	}
	return v, nil
}

// ProviderEnabled reports whether prefix has a client id configured. A client
// id without its client secret or state secret is an error.
func (s *EnvSecrets) ProviderEnabled(prefix string) (bool, error) {
	if v, ok := s.lookup(prefix + ClientIDSuffix); !ok || v == "" {
		return false, nil
	}
	for _, key := range []string{prefix + ClientSecretSuffix, prefix + StateSecretSuffix} {
		if _, err := s.Secret(key); err != nil {
			return false, err
		}
	}
	return true, nil
}

// StateSecretKey returns the state secret key name for prefix.
func StateSecretKey(prefix string) string {
	return prefix + StateSecretSuffix
}
