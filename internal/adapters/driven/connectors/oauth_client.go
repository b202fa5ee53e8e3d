package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.OAuthClient = (*Client)(nil)

// DefaultTimeout bounds every provider HTTP call.
const DefaultTimeout = 15 * time.Second

// maxBodySize caps how much of a provider response is read.
const maxBodySize = 1 << 20

// Endpoints are the provider URLs a client talks to.
type Endpoints struct {
	// Auth is the authorization (consent) endpoint.
	Auth string

	// Token is the token endpoint for code exchange and refresh.
	Token string

	// Profile returns the account behind an access token.
	Profile string

	// Drive is read after the profile for storage providers that expose drive metadata (optional).
	Drive string
}

// ProviderSpec holds everything that differs between providers.
// The flow itself is shared; quirks are data.
type ProviderSpec struct {
	Provider  domain.ProviderType
	Endpoints Endpoints

	// Scopes are sent space-joined in the scope parameter.
	Scopes []string

	// AuthParams are extra authorization URL parameters
	// (access_type/prompt for Google, response_mode for Microsoft).
	AuthParams url.Values

	// ScopeOnRefresh resends the scope string on refresh (Microsoft requires it).
	ScopeOnRefresh bool

	// ParseProfile decodes the profile endpoint body.
	ParseProfile func(body []byte) (*domain.Profile, error)

	// ProfileFromToken extracts the profile from the token response when possible,
	// skipping the profile call (optional).
	ProfileFromToken func(tok *domain.TokenResponse) (*domain.Profile, bool)
}

// Credentials are the OAuth application credentials for one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// CredentialsFromSecrets reads <prefix>_CLIENT_ID and <prefix>_CLIENT_SECRET.
func CredentialsFromSecrets(secrets driven.SecretProvider, prefix string) (Credentials, error) {
	clientID, err := secrets.Secret(prefix + "_CLIENT_ID")
	if err != nil {
		return Credentials{}, err
	}
	clientSecret, err := secrets.Secret(prefix + "_CLIENT_SECRET")
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{ClientID: clientID, ClientSecret: clientSecret}, nil
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (its timeout is kept as-is).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithEndpoints overrides the non-empty endpoint URLs.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		if e.Auth != "" {
			c.spec.Endpoints.Auth = e.Auth
		}
		if e.Token != "" {
			c.spec.Endpoints.Token = e.Token
		}
		if e.Profile != "" {
			c.spec.Endpoints.Profile = e.Profile
		}
		if e.Drive != "" {
			c.spec.Endpoints.Drive = e.Drive
		}
	}
}

// Client runs the authorization-code flow for one provider.
type Client struct {
	spec       ProviderSpec
	creds      Credentials
	httpClient *http.Client
}

// NewClient creates a provider client. Missing credentials are a configuration error.
func NewClient(spec ProviderSpec, creds Credentials, opts ...Option) (*Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: %s client credentials missing", domain.ErrConfiguration, spec.Provider)
	}
	if spec.ParseProfile == nil {
		return nil, fmt.Errorf("%w: %s has no profile parser", domain.ErrConfiguration, spec.Provider)
	}

	c := &Client{
		spec:       spec,
		creds:      creds,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Provider returns the provider this client talks to.
func (c *Client) Provider() domain.ProviderType {
	return c.spec.Provider
}

// Scope returns the space-joined scope string.
func (c *Client) Scope() string {
	return strings.Join(c.spec.Scopes, " ")
}

// BuildAuthorizationURL constructs the provider consent URL.
func (c *Client) BuildAuthorizationURL(state, redirectURI string) string {
	params := url.Values{
		"client_id":     {c.creds.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {c.Scope()},
		"state":         {state},
	}
	for k, v := range c.spec.AuthParams {
		params[k] = v
	}
	return c.spec.Endpoints.Auth + "?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenResponse, error) {
	params := url.Values{
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	}
	return c.postToken(ctx, params, domain.ProviderOpExchange)
}

// RefreshAccessToken refreshes an access token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	if refreshToken == "" {
		return nil, domain.ErrMissingRefreshToken
	}
	params := url.Values{
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	if c.spec.ScopeOnRefresh {
		params.Set("scope", c.Scope())
	}
	return c.postToken(ctx, params, domain.ProviderOpRefresh)
}

// FetchProfile identifies the account behind a token.
func (c *Client) FetchProfile(ctx context.Context, token *domain.TokenResponse) (*domain.Profile, error) {
	if c.spec.ProfileFromToken != nil {
		if profile, ok := c.spec.ProfileFromToken(token); ok {
			return profile, nil
		}
	}

	body, err := c.getJSON(ctx, c.spec.Endpoints.Profile, token.AccessToken)
	if err != nil {
		return nil, err
	}
	profile, err := c.spec.ParseProfile(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProfileFetch, c.spec.Provider, err)
	}

	if c.spec.Endpoints.Drive != "" {
		drive, err := c.getJSON(ctx, c.spec.Endpoints.Drive, token.AccessToken)
		if err != nil {
			return nil, err
		}
		profile.DriveMetadata = json.RawMessage(drive)
	}

	return profile, nil
}

func (c *Client) postToken(ctx context.Context, params url.Values, op domain.ProviderOp) (*domain.TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.spec.Endpoints.Token,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, c.providerError(op, status, body)
	}

	var tok domain.TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, c.providerError(op, status, body)
	}
	if tok.AccessToken == "" {
		return nil, c.providerError(op, status, body)
	}
	return &tok, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, c.providerError(domain.ProviderOpProfile, status, body)
	}
	return body, nil
}

// do sends the request and reads the body. Transport failures and timeouts
// surface as domain.ErrProviderUnavailable.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, nil, err
		}
		return 0, nil, fmt.Errorf("%w: %s: %v", domain.ErrProviderUnavailable, c.spec.Provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s: read response: %v", domain.ErrProviderUnavailable, c.spec.Provider, err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) providerError(op domain.ProviderOp, status int, body []byte) error {
	return &domain.ProviderError{
		Provider:   c.spec.Provider,
		Op:         op,
		StatusCode: status,
		Body:       string(body),
	}
}
