package mocks

import (
	"context"
	"net/url"
	"sync"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// MockOAuthClient is a scriptable OAuthClient for testing.
// Unset hooks return fixed tokens and a fixed profile.
type MockOAuthClient struct {
	ProviderType domain.ProviderType

	ExchangeFn func(ctx context.Context, code, redirectURI string) (*domain.TokenResponse, error)
	RefreshFn  func(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)
	ProfileFn  func(ctx context.Context, token *domain.TokenResponse) (*domain.Profile, error)

	mu            sync.Mutex
	RefreshCalls  int
	ExchangeCalls int
}

// NewMockOAuthClient creates a mock client for a provider.
func NewMockOAuthClient(provider domain.ProviderType) *MockOAuthClient {
	return &MockOAuthClient{ProviderType: provider}
}

func (m *MockOAuthClient) Provider() domain.ProviderType {
	return m.ProviderType
}

func (m *MockOAuthClient) BuildAuthorizationURL(state, redirectURI string) string {
	params := url.Values{
		"state":        {state},
		"redirect_uri": {redirectURI},
	}
	return "https://auth.example.com/authorize?" + params.Encode()
}

func (m *MockOAuthClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenResponse, error) {
	m.mu.Lock()
	m.ExchangeCalls++
	m.mu.Unlock()
	if m.ExchangeFn != nil {
		return m.ExchangeFn(ctx, code, redirectURI)
	}
	return &domain.TokenResponse{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		ExpiresIn:    3600,
		TokenType:    "Bearer",
	}, nil
}

func (m *MockOAuthClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	m.mu.Lock()
	m.RefreshCalls++
	m.mu.Unlock()
	if m.RefreshFn != nil {
		return m.RefreshFn(ctx, refreshToken)
	}
	return &domain.TokenResponse{
		AccessToken: "refreshed-access",
		ExpiresIn:   3600,
		TokenType:   "Bearer",
	}, nil
}

func (m *MockOAuthClient) FetchProfile(ctx context.Context, token *domain.TokenResponse) (*domain.Profile, error) {
	if m.ProfileFn != nil {
		return m.ProfileFn(ctx, token)
	}
	return &domain.Profile{ProviderUserID: "u1", Email: "e@x.com"}, nil
}
