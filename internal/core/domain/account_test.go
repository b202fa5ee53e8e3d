package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestConnectedAccount_NeedsRefresh(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry", nil, true},
		{"already expired", timePtr(testNow.Add(-time.Minute)), true},
		{"inside lookahead", timePtr(testNow.Add(30 * time.Second)), true},
		{"exactly at lookahead", timePtr(testNow.Add(60 * time.Second)), true},
		{"beyond lookahead", timePtr(testNow.Add(61 * time.Second)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &ConnectedAccount{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, a.NeedsRefresh(testNow, 60*time.Second))
		})
	}
}

func TestConnectedAccount_ApplyToken_KeepsRefreshToken(t *testing.T) {
	a := &ConnectedAccount{AccessToken: "old", RefreshToken: "r1", Scopes: []string{"mail"}}

	a.ApplyToken(&TokenResponse{AccessToken: "new", ExpiresIn: 3600}, testNow)

	assert.Equal(t, "new", a.AccessToken)
	assert.Equal(t, "r1", a.RefreshToken)
	require.NotNil(t, a.ExpiresAt)
	assert.Equal(t, testNow.Add(time.Hour), *a.ExpiresAt)
	assert.Equal(t, []string{"mail"}, a.Scopes)
}

func TestConnectedAccount_ApplyToken_ReplacesRefreshToken(t *testing.T) {
	a := &ConnectedAccount{RefreshToken: "r1"}

	a.ApplyToken(&TokenResponse{AccessToken: "a", RefreshToken: "r2", Scope: "openid email"}, testNow)

	assert.Equal(t, "r2", a.RefreshToken)
	assert.Equal(t, []string{"openid", "email"}, a.Scopes)
	require.NotNil(t, a.ExpiresAt)
	assert.Equal(t, testNow.Add(DefaultTokenLifetime), *a.ExpiresAt)
}

func TestConnectedAccount_ApplyToken_MissingExpiryLeavesLookahead(t *testing.T) {
	stale := testNow.Add(10 * time.Second)
	a := &ConnectedAccount{RefreshToken: "r1", ExpiresAt: &stale}
	require.True(t, a.NeedsRefresh(testNow, time.Minute))

	a.ApplyToken(&TokenResponse{AccessToken: "a2"}, testNow)

	require.NotNil(t, a.ExpiresAt)
	assert.Equal(t, testNow.Add(DefaultTokenLifetime), *a.ExpiresAt)
	assert.False(t, a.NeedsRefresh(testNow, time.Minute))
}

func TestConnectedAccount_ToSummary(t *testing.T) {
	exp := testNow.Add(time.Hour)
	a := &ConnectedAccount{
		Provider:      ProviderTypeOutlook,
		ProviderEmail: "ana@example.com",
		AccessToken:   "secret",
		RefreshToken:  "secret-too",
		ExpiresAt:     &exp,
	}

	s := a.ToSummary()
	assert.True(t, s.Connected)
	assert.Equal(t, ProviderTypeOutlook, s.Provider)
	assert.Equal(t, "ana@example.com", s.Email)
	assert.Equal(t, &exp, s.ExpiresAt)
}

func TestSplitScopes(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitScopes("a b,c"))
	assert.Empty(t, SplitScopes(""))
}

func TestParseProviderType(t *testing.T) {
	for _, p := range CoreProviders() {
		got, err := ParseProviderType(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParseProviderType("dropbox")
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))
}

func TestProviderError_Unwrap(t *testing.T) {
	tests := []struct {
		op   ProviderOp
		want error
	}{
		{ProviderOpExchange, ErrTokenExchange},
		{ProviderOpRefresh, ErrTokenRefresh},
		{ProviderOpProfile, ErrProfileFetch},
	}

	for _, tt := range tests {
		err := &ProviderError{Provider: ProviderTypeGmail, Op: tt.op, StatusCode: 400, Body: `{"error":"invalid_grant"}`}
		assert.ErrorIs(t, err, tt.want)
		assert.Contains(t, err.Error(), "status 400")
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
