package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/custodia-labs/facturas-core/docs"
	"github.com/custodia-labs/facturas-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors"
	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
	"github.com/custodia-labs/facturas-core/internal/core/services"
)

const testSession = "session-token-1"

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

type serverFixture struct {
	handler  http.Handler
	sessions *mocks.MockSessionResolver
	accounts *mocks.MockAccountStore
	facturas *mocks.MockFacturaStore
	reviews  *mocks.MockReviewStore
	files    *mocks.MockDriveFileLookup
	gmail    *mocks.MockOAuthClient
	state    *auth.StateToken
	db       *stubPinger
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	state, err := auth.NewStateToken("gmail-state-secret")
	require.NoError(t, err)
	driveState, err := auth.NewStateToken("drive-state-secret")
	require.NoError(t, err)

	gmail := mocks.NewMockOAuthClient(domain.ProviderTypeGmail)
	drive := mocks.NewMockOAuthClient(domain.ProviderTypeDrive)
	factory := connectors.NewFactory()
	factory.Register(gmail, state)
	factory.Register(drive, driveState)

	sessions := mocks.NewMockSessionResolver()
	require.NoError(t, sessions.Save(context.Background(), testSession, "user-1", 0))

	accounts := mocks.NewMockAccountStore()
	facturas := mocks.NewMockFacturaStore()
	reviews := mocks.NewMockReviewStore()
	files := &mocks.MockDriveFileLookup{Files: map[string]*driven.DriveFile{}}

	tokens := services.NewTokenGuard(services.TokenGuardConfig{
		ConnectorFactory: factory,
		AccountStore:     accounts,
	})

	db := &stubPinger{}
	srv := NewServer(DefaultConfig(), Services{
		OAuth: services.NewOAuthService(services.OAuthServiceConfig{
			ConnectorFactory: factory,
			AccountStore:     accounts,
			BaseURL:          "https://app.example.com",
		}),
		Accounts: services.NewAccountService(accounts),
		Files: services.NewFileAccessService(services.FileAccessServiceConfig{
			Tokens: tokens,
			Lookup: files,
		}),
		Comparison: services.NewComparisonService(services.ComparisonServiceConfig{
			FacturaStore: facturas,
			CompanyStore: &mocks.MockCompanyStore{TaxIDs: map[string]string{"7": "B12345678"}},
			ReviewStore:  reviews,
		}),
		Review:  services.NewReviewService(reviews, nil),
		Metrics: services.NewMetricsService(facturas, reviews),
	}, Infrastructure{
		Sessions: sessions,
		DB:       db,
	})

	return &serverFixture{
		handler:  srv.Handler(),
		sessions: sessions,
		accounts: accounts,
		facturas: facturas,
		reviews:  reviews,
		files:    files,
		gmail:    gmail,
		state:    state,
		db:       db,
	}
}

func (f *serverFixture) do(t *testing.T, method, target string, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testSession)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) signedState(t *testing.T, redirect string) string {
	t.Helper()
	s, err := f.state.Encode(domain.StatePayload{UserUID: "user-1", RedirectPath: redirect, Nonce: "n-1"})
	require.NoError(t, err)
	return s
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func ptr[T any](v T) *T {
	return &v
}

func TestHealthEndpoints(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = f.do(t, http.MethodGet, "/version", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"dev"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/ready", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.db.err = errors.New("connection refused")
	rec = f.do(t, http.MethodGet, "/ready", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSwaggerDoc(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/swagger/doc.json", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	decodeBody(t, rec, &doc)
	assert.Equal(t, "2.0", doc["swagger"])
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/oauth/{provider}/callback")
}

func TestSessionRequired(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/accounts", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer unknown")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: testSession})
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOAuthStart_Redirects(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/oauth/gmail/start?redirect=/facturas", "", true)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "auth.example.com", loc.Host)
	assert.Equal(t, "https://app.example.com/api/v1/oauth/gmail/callback", loc.Query().Get("redirect_uri"))

	payload, err := f.state.Decode(loc.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.UserUID)
	assert.Equal(t, "/facturas", payload.RedirectPath)
}

func TestOAuthStart_Errors(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/oauth/yahoo/start", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// valid provider name, but no client registered
	rec = f.do(t, http.MethodGet, "/api/v1/oauth/outlook/start", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/oauth/gmail/start", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOAuthConnectFlow(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/gmail/start?redirect=/facturas", nil)
	req.Header.Set("Authorization", "Bearer "+testSession)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var start driving.StartResponse
	decodeBody(t, rec, &start)
	require.NotEmpty(t, start.State)

	callback := "/api/v1/oauth/gmail/callback?" + url.Values{
		"code":  {"auth-code"},
		"state": {start.State},
	}.Encode()
	rec = f.do(t, http.MethodGet, callback, "", false)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/facturas?gmail=success", rec.Header().Get("Location"))

	stored, err := f.accounts.Get(context.Background(), "user-1", domain.ProviderTypeGmail)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "access-auth-code", stored.AccessToken)
	assert.Equal(t, "refresh-auth-code", stored.RefreshToken)

	rec = f.do(t, http.MethodGet, "/api/v1/accounts/gmail", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary domain.AccountSummary
	decodeBody(t, rec, &summary)
	assert.True(t, summary.Connected)
	assert.Equal(t, "e@x.com", summary.Email)
	assert.NotContains(t, rec.Body.String(), "access-auth-code")
	assert.NotContains(t, rec.Body.String(), "refresh-auth-code")
}

func TestOAuthCallback_PostForm(t *testing.T) {
	f := newServerFixture(t)

	form := url.Values{"code": {"c2"}, "state": {f.signedState(t, "/integraciones")}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/oauth/gmail/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/integraciones?gmail=success", rec.Header().Get("Location"))
}

func TestOAuthCallback_ErrorRedirects(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		params   func(f *serverFixture, t *testing.T) url.Values
		setup    func(f *serverFixture)
		wantPath string
		reason   string
	}{
		{
			name:     "consent denied",
			provider: "gmail",
			params: func(f *serverFixture, t *testing.T) url.Values {
				return url.Values{"error": {"access_denied"}, "state": {f.signedState(t, "/facturas")}}
			},
			wantPath: "/facturas",
			reason:   "access_denied",
		},
		{
			name:     "tampered state",
			provider: "gmail",
			params: func(f *serverFixture, t *testing.T) url.Values {
				return url.Values{"code": {"c"}, "state": {f.signedState(t, "/facturas") + "x"}}
			},
			wantPath: "/integraciones",
			reason:   "invalid_state",
		},
		{
			name:     "missing code",
			provider: "gmail",
			params: func(f *serverFixture, t *testing.T) url.Values {
				return url.Values{"state": {f.signedState(t, "/facturas")}}
			},
			wantPath: "/facturas",
			reason:   "missing_code",
		},
		{
			name:     "no refresh token granted",
			provider: "gmail",
			params: func(f *serverFixture, t *testing.T) url.Values {
				return url.Values{"code": {"c"}, "state": {f.signedState(t, "/facturas")}}
			},
			setup: func(f *serverFixture) {
				f.gmail.ExchangeFn = func(ctx context.Context, code, redirectURI string) (*domain.TokenResponse, error) {
					return &domain.TokenResponse{AccessToken: "a", ExpiresIn: 3600}, nil
				}
			},
			wantPath: "/facturas",
			reason:   "missing_refresh_token",
		},
		{
			name:     "exchange rejected",
			provider: "gmail",
			params: func(f *serverFixture, t *testing.T) url.Values {
				return url.Values{"code": {"c"}, "state": {f.signedState(t, "/facturas")}}
			},
			setup: func(f *serverFixture) {
				f.gmail.ExchangeFn = func(ctx context.Context, code, redirectURI string) (*domain.TokenResponse, error) {
					return nil, &domain.ProviderError{Provider: domain.ProviderTypeGmail, Op: domain.ProviderOpExchange, StatusCode: 400}
				}
			},
			wantPath: "/facturas",
			reason:   "token_exchange_failed",
		},
		{
			name:     "unknown provider",
			provider: "yahoo",
			params: func(f *serverFixture, t *testing.T) url.Values {
				return url.Values{"code": {"c"}}
			},
			wantPath: "/integraciones",
			reason:   "unsupported_provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServerFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			target := fmt.Sprintf("/api/v1/oauth/%s/callback?%s", tt.provider, tt.params(f, t).Encode())
			rec := f.do(t, http.MethodGet, target, "", false)
			require.Equal(t, http.StatusFound, rec.Code)

			loc, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, loc.Path)
			assert.Equal(t, "error", loc.Query().Get("status"))
			assert.Equal(t, tt.reason, loc.Query().Get("reason"))
		})
	}
}

func TestListAccounts(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/accounts", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []domain.AccountSummary
	decodeBody(t, rec, &summaries)
	require.Len(t, summaries, len(domain.CoreProviders()))
	for _, s := range summaries {
		assert.False(t, s.Connected)
	}
}

func TestGetDriveFile_PublicFallback(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/files/drive/1AbC", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var link driving.FileLink
	decodeBody(t, rec, &link)
	assert.False(t, link.Authenticated)
	assert.Equal(t, "https://drive.google.com/file/d/1AbC/view", link.URL)
}

func TestComparisonEndpoints(t *testing.T) {
	f := newServerFixture(t)
	row := &domain.FacturaRow{
		Numero:       ptr("F-1"),
		Tipo:         ptr("Gastos"),
		EmpresaID:    ptr("7"),
		ImporteTotal: ptr(121.0),
	}
	other := *row
	other.ImporteTotal = ptr(125.0)
	f.facturas.Put(domain.SourceA, "f1", row)
	f.facturas.Put(domain.SourceB, "f1", &other)

	rec := f.do(t, http.MethodGet, "/api/v1/facturas/f1/comparison", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var cmp domain.FacturaComparison
	decodeBody(t, rec, &cmp)
	assert.Equal(t, domain.StatusBad, cmp.Status)
	assert.True(t, cmp.HasTotalDiff)

	rec = f.do(t, http.MethodGet, "/api/v1/facturas/missing/comparison", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/facturas/comparisons?limit=10", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var list driving.ComparisonList
	decodeBody(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "f1", list.Items[0].Comparison.FacturaUID)
	assert.Equal(t, 10, list.Limit)

	rec = f.do(t, http.MethodGet, "/api/v1/facturas/comparisons?limit=ten", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/facturas/comparisons?offset=-1", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewEndpoints(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/facturas/f1/review", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var empty domain.ReviewRecord
	decodeBody(t, rec, &empty)
	assert.Empty(t, empty.ToolA)

	body := `{"tool_a":{"numero":"correct","fecha":"bogus"},"tool_b":{"importe_total":"incorrect"}}`
	rec = f.do(t, http.MethodPut, "/api/v1/facturas/f1/review", body, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/facturas/f1/review", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved domain.ReviewRecord
	decodeBody(t, rec, &saved)
	assert.Equal(t, domain.FieldStates{"numero": domain.ValidationCorrect}, saved.ToolA)
	assert.Equal(t, domain.FieldStates{"importe_total": domain.ValidationIncorrect}, saved.ToolB)

	rec = f.do(t, http.MethodPut, "/api/v1/facturas/f1/review", "{not json", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newServerFixture(t)
	f.facturas.Put(domain.SourceA, "f1", &domain.FacturaRow{Numero: ptr("F-1")})
	require.NoError(t, f.reviews.Upsert(context.Background(), &domain.ReviewRecord{
		FacturaUID: "f1",
		ToolA:      domain.FieldStates{"numero": domain.ValidationCorrect},
		ToolB:      domain.FieldStates{},
	}))

	rec := f.do(t, http.MethodGet, "/api/v1/facturas/metrics", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var metrics domain.Metrics
	decodeBody(t, rec, &metrics)
	require.NotNil(t, metrics.Totals)
	assert.Equal(t, 1, metrics.Totals.Invoices)
	assert.Equal(t, 1, metrics.Totals.WithReview)
	assert.Len(t, metrics.Fields, len(domain.ScoringFields()))
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrSignatureMismatch, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrAccountNotConnected, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", domain.ErrUnsupportedProvider), http.StatusNotFound},
		{domain.ErrProviderUnavailable, http.StatusServiceUnavailable},
		{&domain.ProviderError{Op: domain.ProviderOpRefresh, StatusCode: 400}, http.StatusBadGateway},
		{domain.ErrMissingRefreshToken, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "/integraciones?gmail=success", withQuery("/integraciones", "gmail", "success"))
	assert.Equal(t, "/facturas?gmail=success&tab=2", withQuery("/facturas?tab=2", "gmail", "success"))
	assert.Equal(t, "/x?reason=access_denied&status=error",
		errorRedirect("/x", &driving.OAuthError{Code: "access_denied"}))
}
