package driven

import (
	"context"
	"time"
)

// SessionResolver maps a session token issued by the dashboard login to a user uid.
type SessionResolver interface {
	// Resolve returns the user uid for a session token.
	// Returns domain.ErrUnauthorized if the session does not exist or has expired.
	Resolve(ctx context.Context, token string) (string, error)

	// Save binds a session token to a user for ttl.
	Save(ctx context.Context, token, userUID string, ttl time.Duration) error

	// Delete removes a session token.
	Delete(ctx context.Context, token string) error
}
