// Package google provides the Gmail and Google Drive OAuth clients.
// Both share Google's endpoints and differ only in scopes.
package google

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors"
	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// Google endpoints.
const (
	AuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	TokenURL    = "https://oauth2.googleapis.com/token"
	UserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Secret prefixes read from configuration.
const (
	GmailSecretPrefix = "GMAIL"
	DriveSecretPrefix = "DRIVE"
)

// GmailScopes are requested when connecting a Gmail inbox.
var GmailScopes = []string{
	"openid",
	"email",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.labels",
}

// DriveScopes are requested when connecting Google Drive.
var DriveScopes = []string{
	"openid",
	"email",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/drive",
}

// NewGmailClient creates the Gmail OAuth client.
func NewGmailClient(creds connectors.Credentials, opts ...connectors.Option) (*connectors.Client, error) {
	return connectors.NewClient(spec(domain.ProviderTypeGmail, GmailScopes), creds, opts...)
}

// NewDriveClient creates the Google Drive OAuth client.
func NewDriveClient(creds connectors.Credentials, opts ...connectors.Option) (*connectors.Client, error) {
	return connectors.NewClient(spec(domain.ProviderTypeDrive, DriveScopes), creds, opts...)
}

func spec(provider domain.ProviderType, scopes []string) connectors.ProviderSpec {
	return connectors.ProviderSpec{
		Provider: provider,
		Endpoints: connectors.Endpoints{
			Auth:    AuthURL,
			Token:   TokenURL,
			Profile: UserInfoURL,
		},
		Scopes: scopes,
		// Forces a refresh token on every consent, including reconnects.
		AuthParams: url.Values{
			"access_type": {"offline"},
			"prompt":      {"consent"},
		},
		ScopeOnRefresh:   false,
		ParseProfile:     parseUserInfo,
		ProfileFromToken: profileFromIDToken,
	}
}

func parseUserInfo(body []byte) (*domain.Profile, error) {
	var info struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo has no sub")
	}
	return &domain.Profile{ProviderUserID: info.Sub, Email: info.Email}, nil
}

// profileFromIDToken reads sub and email from the ID token issued with the access token.
// The token arrives directly from Google's token endpoint over TLS, so the
// signature is not verified here.
func profileFromIDToken(tok *domain.TokenResponse) (*domain.Profile, bool) {
	if tok == nil || tok.IDToken == "" {
		return nil, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.IDToken, claims); err != nil {
		return nil, false
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, false
	}
	return &domain.Profile{ProviderUserID: sub, Email: email}, true
}
