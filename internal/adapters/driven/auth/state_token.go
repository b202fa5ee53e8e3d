package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Ensure StateToken implements StateCodec
var _ driven.StateCodec = (*StateToken)(nil)

// StateToken signs OAuth state payloads as base64url(JSON) "." base64url(HMAC-SHA256).
// Tokens carry no expiry: a token verifies for as long as the secret is unchanged.
type StateToken struct {
	secret []byte
}

// NewStateToken creates a codec for one provider's state secret.
func NewStateToken(secret string) (*StateToken, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty state secret", domain.ErrConfiguration)
	}
	return &StateToken{secret: []byte(secret)}, nil
}

// NewStateTokenFromSecrets reads the state secret for key from the secret provider.
func NewStateTokenFromSecrets(secrets driven.SecretProvider, key string) (*StateToken, error) {
	secret, err := secrets.Secret(key)
	if err != nil {
		return nil, err
	}
	return NewStateToken(secret)
}

// Encode serializes and signs a payload.
func (t *StateToken) Encode(payload domain.StatePayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(data)
	return body + "." + t.sign(body), nil
}

// Decode verifies the signature and returns the payload.
func (t *StateToken) Decode(token string) (*domain.StatePayload, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" || sig == "" {
		return nil, domain.ErrInvalidStateFormat
	}

	// Compare the encoded forms so every character of the signature is significant.
	if !hmac.Equal([]byte(sig), []byte(t.sign(body))) {
		return nil, domain.ErrSignatureMismatch
	}

	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	var payload domain.StatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if payload.UserUID == "" {
		return nil, fmt.Errorf("%w: missing userUid", domain.ErrInvalidPayload)
	}

	return &payload, nil
}

func (t *StateToken) sign(body string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
