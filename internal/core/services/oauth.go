package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors"
	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// Ensure oauthService implements OAuthService
var _ driving.OAuthService = (*oauthService)(nil)

// DefaultRedirectPath is where the browser returns when the state carries no usable path.
const DefaultRedirectPath = "/integraciones"

// OAuthServiceConfig holds dependencies for the OAuth service.
type OAuthServiceConfig struct {
	// ConnectorFactory provides the client and state codec per provider.
	ConnectorFactory *connectors.Factory

	// AccountStore persists connected accounts.
	AccountStore driven.AccountStore

	// BaseURL is the public base URL used to build callback URIs.
	// Example: "https://app.example.com"
	BaseURL string

	// DefaultRedirectPath overrides DefaultRedirectPath.
	DefaultRedirectPath string

	// Now overrides the clock in tests.
	Now func() time.Time

	Logger *slog.Logger
}

// oauthService implements the OAuthService interface.
type oauthService struct {
	connectorFactory    *connectors.Factory
	accountStore        driven.AccountStore
	baseURL             string
	defaultRedirectPath string
	now                 func() time.Time
	logger              *slog.Logger
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(cfg OAuthServiceConfig) driving.OAuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	redirect := cfg.DefaultRedirectPath
	if !isLocalPath(redirect) {
		redirect = DefaultRedirectPath
	}

	return &oauthService{
		connectorFactory:    cfg.ConnectorFactory,
		accountStore:        cfg.AccountStore,
		baseURL:             strings.TrimSuffix(cfg.BaseURL, "/"),
		defaultRedirectPath: redirect,
		now:                 now,
		logger:              logger,
	}
}

// CallbackURI returns the redirect_uri registered with a provider.
func CallbackURI(baseURL string, provider domain.ProviderType) string {
	return strings.TrimSuffix(baseURL, "/") + "/api/v1/oauth/" + string(provider) + "/callback"
}

// Start signs a state for the user and builds the consent URL.
func (s *oauthService) Start(ctx context.Context, req driving.StartRequest) (*driving.StartResponse, error) {
	if req.UserUID == "" {
		return nil, domain.ErrUnauthorized
	}

	reg, err := s.connectorFactory.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	payload := domain.StatePayload{
		UserUID:      req.UserUID,
		RedirectPath: s.redirectPath(req.RedirectPath),
		Nonce:        uuid.NewString(),
	}
	state, err := reg.State.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}

	authURL := reg.Client.BuildAuthorizationURL(state, CallbackURI(s.baseURL, req.Provider))

	s.logger.Info("oauth flow started", "provider", req.Provider, "user_uid", req.UserUID)

	return &driving.StartResponse{
		AuthorizationURL: authURL,
		State:            state,
	}, nil
}

// Callback completes the authorization-code flow and stores the account.
func (s *oauthService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	reg, err := s.connectorFactory.Get(req.Provider)
	if err != nil {
		return nil, s.callbackError(req.Provider, s.defaultRedirectPath, err)
	}

	// The state is verified before anything else, including provider errors,
	// so the redirect target is never taken from an unsigned value.
	payload, err := reg.State.Decode(req.State)
	if err != nil {
		return nil, s.callbackError(req.Provider, s.defaultRedirectPath, err)
	}
	redirect := s.redirectPath(payload.RedirectPath)

	if req.Error != "" {
		return nil, s.callbackError(req.Provider, redirect, &driving.OAuthError{
			Code:        req.Error,
			Description: req.ErrorDescription,
		})
	}
	if req.Code == "" {
		return nil, s.callbackError(req.Provider, redirect,
			fmt.Errorf("%w: missing authorization code", domain.ErrInvalidInput))
	}

	account, err := s.connect(ctx, reg.Client, payload.UserUID, req.Code)
	if err != nil {
		return nil, s.callbackError(req.Provider, redirect, err)
	}

	s.logger.Info("provider connected",
		"provider", req.Provider,
		"user_uid", account.UserUID,
		"email", account.ProviderEmail)

	return &driving.CallbackResponse{
		Account:      account.ToSummary(),
		RedirectPath: redirect,
	}, nil
}

func (s *oauthService) connect(ctx context.Context, client driven.OAuthClient, userUID, code string) (*domain.ConnectedAccount, error) {
	provider := client.Provider()

	tok, err := client.ExchangeCode(ctx, code, CallbackURI(s.baseURL, provider))
	if err != nil {
		return nil, err
	}

	profile, err := client.FetchProfile(ctx, tok)
	if err != nil {
		return nil, err
	}

	existing, err := s.accountStore.Get(ctx, userUID, provider)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	now := s.now()
	account := existing
	if account == nil {
		account = &domain.ConnectedAccount{
			UserUID:   userUID,
			Provider:  provider,
			CreatedAt: now,
		}
	}
	account.ProviderUserID = profile.ProviderUserID
	account.ProviderEmail = profile.Email
	if len(profile.DriveMetadata) > 0 {
		account.DriveMetadata = profile.DriveMetadata
	}
	account.ApplyToken(tok, now)
	account.UpdatedAt = now

	// Without a refresh token the connection dies with the access token.
	// Only a new consent can fix that.
	if account.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s granted no refresh token", domain.ErrMissingRefreshToken, provider)
	}

	if err := s.accountStore.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	return account, nil
}

func (s *oauthService) callbackError(provider domain.ProviderType, redirect string, err error) error {
	s.logger.Warn("oauth callback failed", "provider", provider, "error", err)
	return &driving.CallbackError{RedirectPath: redirect, Err: err}
}

// redirectPath keeps local absolute paths and falls back to the default otherwise.
func (s *oauthService) redirectPath(p string) string {
	if isLocalPath(p) {
		return p
	}
	return s.defaultRedirectPath
}

func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return false
	}
	return !strings.ContainsAny(p, "\\\r\n")
}
