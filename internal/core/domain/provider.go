package domain

import "fmt"

// ProviderType identifies an email or storage provider a user can connect.
type ProviderType string

const (
	// Google
	ProviderTypeGmail ProviderType = "gmail"
	ProviderTypeDrive ProviderType = "drive"

	// Microsoft
	ProviderTypeOutlook  ProviderType = "outlook"
	ProviderTypeOneDrive ProviderType = "onedrive"
)

// CoreProviders returns the providers supported for invoice capture.
func CoreProviders() []ProviderType {
	return []ProviderType{
		ProviderTypeGmail,
		ProviderTypeDrive,
		ProviderTypeOutlook,
		ProviderTypeOneDrive,
	}
}

// ParseProviderType validates a provider name taken from a URL or config.
func ParseProviderType(s string) (ProviderType, error) {
	pt := ProviderType(s)
	if !pt.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
	}
	return pt, nil
}

// IsValid reports whether the provider is one of the core providers.
func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderTypeGmail, ProviderTypeDrive, ProviderTypeOutlook, ProviderTypeOneDrive:
		return true
	}
	return false
}

// IsGoogle reports whether the provider authenticates against Google.
func (p ProviderType) IsGoogle() bool {
	return p == ProviderTypeGmail || p == ProviderTypeDrive
}

// IsMicrosoft reports whether the provider authenticates against Microsoft identity.
func (p ProviderType) IsMicrosoft() bool {
	return p == ProviderTypeOutlook || p == ProviderTypeOneDrive
}

// DisplayName returns a human-readable name for the provider.
func (p ProviderType) DisplayName() string {
	switch p {
	case ProviderTypeGmail:
		return "Gmail"
	case ProviderTypeDrive:
		return "Google Drive"
	case ProviderTypeOutlook:
		return "Outlook"
	case ProviderTypeOneDrive:
		return "OneDrive"
	default:
		return string(p)
	}
}
