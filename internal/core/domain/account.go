package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultTokenLifetime is assumed when a token response omits expires_in.
// It is shorter than the hour Google and Microsoft issue, so the token is
// refreshed early rather than used after it expired.
const DefaultTokenLifetime = 10 * time.Minute

// TokenResponse is a provider token endpoint answer.
// It is transient and never persisted as-is; see ConnectedAccount.ApplyToken.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type"`

	// IDToken is only issued by OpenID providers (Google).
	IDToken string `json:"id_token,omitempty"`
}

// Profile identifies the provider account behind an access token.
type Profile struct {
	ProviderUserID string
	Email          string

	// DriveMetadata is the raw drive resource for storage providers that expose one.
	DriveMetadata json.RawMessage
}

// ConnectedAccount is the stored connection for one (user, provider) pair.
type ConnectedAccount struct {
	UserUID        string       `json:"user_uid"`
	Provider       ProviderType `json:"provider"`
	ProviderUserID string       `json:"provider_user_id"`
	ProviderEmail  string       `json:"provider_email"`

	// Tokens are encrypted at rest and never serialized.
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`

	// ExpiresAt is nil when the stored value could not be read; callers treat that as expired.
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	Scopes        []string        `json:"scopes,omitempty"`
	DriveMetadata json.RawMessage `json:"drive_metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsRefresh reports whether the access token expires within the lookahead window.
// A missing expiry counts as expired.
func (a *ConnectedAccount) NeedsRefresh(now time.Time, lookahead time.Duration) bool {
	if a.ExpiresAt == nil || a.ExpiresAt.IsZero() {
		return true
	}
	return !a.ExpiresAt.After(now.Add(lookahead))
}

// ApplyToken copies a token response onto the account.
// An empty refresh token in the response keeps the stored one. A missing
// expires_in sets the expiry to now plus DefaultTokenLifetime.
func (a *ConnectedAccount) ApplyToken(tok *TokenResponse, now time.Time) {
	a.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		a.RefreshToken = tok.RefreshToken
	}
	lifetime := DefaultTokenLifetime
	if tok.ExpiresIn > 0 {
		lifetime = time.Duration(tok.ExpiresIn) * time.Second
	}
	exp := now.Add(lifetime)
	a.ExpiresAt = &exp
	if scopes := SplitScopes(tok.Scope); len(scopes) > 0 {
		a.Scopes = scopes
	}
}

// ToSummary returns a token-free view of the account.
func (a *ConnectedAccount) ToSummary() *AccountSummary {
	return &AccountSummary{
		Provider:  a.Provider,
		Connected: true,
		Email:     a.ProviderEmail,
		ExpiresAt: a.ExpiresAt,
		Scopes:    a.Scopes,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountSummary is the safe view returned by the API.
type AccountSummary struct {
	Provider  ProviderType `json:"provider"`
	Connected bool         `json:"connected"`
	Email     string       `json:"email,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Scopes    []string     `json:"scopes,omitempty"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}

// SplitScopes splits a space- or comma-separated scope string.
func SplitScopes(scope string) []string {
	return strings.FieldsFunc(scope, func(r rune) bool {
		return r == ' ' || r == ','
	})
}
