package driven

// SecretProvider resolves named secrets (client ids, client secrets, state secrets).
type SecretProvider interface {
	// Secret returns the value for key, or an error wrapping domain.ErrConfiguration if absent.
	Secret(key string) (string, error)
}
