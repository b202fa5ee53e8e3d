package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven/mocks"
)

func TestFactory(t *testing.T) {
	f := NewFactory()
	assert.Empty(t, f.SupportedTypes())

	_, err := f.Get(domain.ProviderTypeGmail)
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)

	f.Register(mocks.NewMockOAuthClient(domain.ProviderTypeOutlook), nil)
	f.Register(mocks.NewMockOAuthClient(domain.ProviderTypeGmail), nil)

	reg, err := f.Get(domain.ProviderTypeGmail)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderTypeGmail, reg.Client.Provider())

	client, err := f.Client(domain.ProviderTypeOutlook)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderTypeOutlook, client.Provider())

	assert.Equal(t, []domain.ProviderType{domain.ProviderTypeGmail, domain.ProviderTypeOutlook}, f.SupportedTypes())
}

type mapSecrets map[string]string

func (m mapSecrets) Secret(key string) (string, error) {
	v, ok := m[key]
	if !ok || v == "" {
		return "", domain.ErrConfiguration
	}
	return v, nil
}

func TestCredentialsFromSecrets(t *testing.T) {
	creds, err := CredentialsFromSecrets(mapSecrets{
		"GMAIL_CLIENT_ID":     "id",
		"GMAIL_CLIENT_SECRET": "secret",
	}, "GMAIL")
	require.NoError(t, err)
	assert.Equal(t, Credentials{ClientID: "id", ClientSecret: "secret"}, creds)

	_, err = CredentialsFromSecrets(mapSecrets{"GMAIL_CLIENT_ID": "id"}, "GMAIL")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
