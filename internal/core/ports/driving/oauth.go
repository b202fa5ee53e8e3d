package driving

import (
	"context"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// OAuthService runs the connect flow for email and storage providers.
type OAuthService interface {
	// Start signs a state for the user and returns the provider consent URL.
	Start(ctx context.Context, req StartRequest) (*StartResponse, error)

	// Callback verifies the state, exchanges the code, fetches the profile
	// and upserts the connected account. Failures are *CallbackError so the
	// caller can redirect back to the page that started the flow.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResponse, error)
}

// StartRequest starts a connect flow.
type StartRequest struct {
	Provider domain.ProviderType
	UserUID  string

	// RedirectPath is the dashboard page to return to. Must be a local path.
	RedirectPath string
}

// StartResponse carries the consent URL.
// @Description OAuth consent URL for the provider
type StartResponse struct {
	AuthorizationURL string `json:"authorization_url" example:"https://accounts.google.com/o/oauth2/v2/auth?client_id=..."`
	State            string `json:"state" example:"eyJ1c2VyVWlkIjoi....c2lnbmF0dXJl"`
}

// CallbackRequest holds the provider redirect parameters.
type CallbackRequest struct {
	Provider domain.ProviderType
	Code     string
	State    string

	// Error is set when the user denied consent or the provider failed.
	Error            string
	ErrorDescription string
}

// CallbackResponse is the result of a successful callback.
type CallbackResponse struct {
	Account      *domain.AccountSummary `json:"account"`
	RedirectPath string                 `json:"redirect_path"`
}

// CallbackError is a failed callback. RedirectPath is where the browser goes back to.
type CallbackError struct {
	RedirectPath string
	Err          error
}

func (e *CallbackError) Error() string {
	return e.Err.Error()
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// OAuthError is a provider-reported authorization failure (e.g. access_denied).
type OAuthError struct {
	Code        string `json:"error" example:"access_denied"`
	Description string `json:"error_description" example:"The user denied access"`
}

func (e *OAuthError) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}
