// Package microsoft provides the Outlook and OneDrive OAuth clients
// against the Microsoft identity platform and Graph.
package microsoft

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors"
	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// Microsoft endpoints.
const (
	AuthURL  = "https://login.microsoftonline.com/common/oauth2/v2.0/authorize"
	TokenURL = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
	MeURL    = "https://graph.microsoft.com/v1.0/me"
	DriveURL = "https://graph.microsoft.com/v1.0/me/drive"
)

// Secret prefixes read from configuration.
const (
	OutlookSecretPrefix  = "OUTLOOK"
	OneDriveSecretPrefix = "ONEDRIVE"
)

// OutlookScopes are requested when connecting an Outlook mailbox.
var OutlookScopes = []string{
	"offline_access",
	"User.Read",
	"Mail.ReadWrite",
	"Mail.ReadWrite.Shared",
}

// OneDriveScopes are requested when connecting OneDrive.
var OneDriveScopes = []string{
	"offline_access",
	"User.Read",
	"Files.ReadWrite.All",
	"Sites.ReadWrite.All",
}

// NewOutlookClient creates the Outlook OAuth client.
func NewOutlookClient(creds connectors.Credentials, opts ...connectors.Option) (*connectors.Client, error) {
	return connectors.NewClient(spec(domain.ProviderTypeOutlook, OutlookScopes, ""), creds, opts...)
}

// NewOneDriveClient creates the OneDrive OAuth client. Its profile also carries /me/drive.
func NewOneDriveClient(creds connectors.Credentials, opts ...connectors.Option) (*connectors.Client, error) {
	return connectors.NewClient(spec(domain.ProviderTypeOneDrive, OneDriveScopes, DriveURL), creds, opts...)
}

func spec(provider domain.ProviderType, scopes []string, driveURL string) connectors.ProviderSpec {
	return connectors.ProviderSpec{
		Provider: provider,
		Endpoints: connectors.Endpoints{
			Auth:    AuthURL,
			Token:   TokenURL,
			Profile: MeURL,
			Drive:   driveURL,
		},
		Scopes: scopes,
		AuthParams: url.Values{
			"response_mode": {"query"},
		},
		// The v2.0 token endpoint rejects refresh requests without scope.
		ScopeOnRefresh: true,
		ParseProfile:   parseMe,
	}
}

func parseMe(body []byte) (*domain.Profile, error) {
	var me struct {
		ID                string `json:"id"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, fmt.Errorf("decode /me: %w", err)
	}
	if me.ID == "" {
		return nil, fmt.Errorf("/me has no id")
	}

	// Personal accounts often have no mail; the UPN is the sign-in address.
	email := me.Mail
	if email == "" {
		email = me.UserPrincipalName
	}
	return &domain.Profile{ProviderUserID: me.ID, Email: email}, nil
}
