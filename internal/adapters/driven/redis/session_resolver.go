package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionResolver = (*SessionResolver)(nil)

// sessionPrefix namespaces session keys. Tokens are stored hashed.
const sessionPrefix = "facturas:session:"

// SessionResolver implements driven.SessionResolver using Redis.
// Sessions expire through Redis TTL.
type SessionResolver struct {
	client *redis.Client
}

// NewSessionResolver creates a new Redis-backed SessionResolver
func NewSessionResolver(client *redis.Client) *SessionResolver {
	return &SessionResolver{client: client}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type sessionValue struct {
	UserUID   string    `json:"user_uid"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionPrefix + hex.EncodeToString(sum[:])
}

// Resolve returns the user uid bound to a session token.
func (s *SessionResolver) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrUnauthorized
	}

	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	var v sessionValue
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if v.UserUID == "" {
		return "", domain.ErrUnauthorized
	}
	return v.UserUID, nil
}

// Save binds a token to a user for ttl. A non-positive ttl is a no-op.
func (s *SessionResolver) Save(ctx context.Context, token, userUID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if token == "" || userUID == "" {
		return fmt.Errorf("%w: token and user uid are required", domain.ErrInvalidInput)
	}

	data, err := json.Marshal(sessionValue{UserUID: userUID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionResolver) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *SessionResolver) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
