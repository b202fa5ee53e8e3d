package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// maxReviewBody bounds PUT review payloads.
const maxReviewBody = 64 << 10

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReviewRequest is the body of PUT /facturas/{uid}/review.
// Unknown fields and invalid states are dropped.
// @Description Reviewer judgments for both extraction tools
type ReviewRequest struct {
	ToolA map[string]any `json:"tool_a" swaggertype:"object,string" example:"numero:correct"`
	ToolB map[string]any `json:"tool_b" swaggertype:"object,string" example:"importe_total:incorrect"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings PostgreSQL and, when configured, Redis
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A dependency is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness: database ping failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness: redis ping failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// OAuth endpoints

// handleOAuthStart godoc
// @Summary      Start provider connection
// @Description  Signs a state for the current user and redirects to the provider consent page.
// @Description  Clients sending Accept: application/json get the URL in the body instead.
// @Tags         OAuth
// @Produce      json
// @Security     BearerAuth
// @Param        provider  path      string  true   "Provider"  Enums(gmail, drive, outlook, onedrive)
// @Param        redirect  query     string  false  "Local dashboard path to return to"
// @Success      200       {object}  driving.StartResponse
// @Success      302       "Redirect to the provider consent page"
// @Failure      401       {object}  ErrorResponse  "No session"
// @Failure      404       {object}  ErrorResponse  "Provider not configured"
// @Router       /oauth/{provider}/start [get]
func (s *Server) handleOAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, err := domain.ParseProviderType(r.PathValue("provider"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := s.oauthService.Start(r.Context(), driving.StartRequest{
		Provider:     provider,
		UserUID:      UserUIDFromContext(r.Context()),
		RedirectPath: r.URL.Query().Get("redirect"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	http.Redirect(w, r, resp.AuthorizationURL, http.StatusFound)
}

// handleOAuthCallback godoc
// @Summary      Provider OAuth callback
// @Description  Receives the provider redirect, stores the connected account and
// @Description  redirects back to the dashboard with ?<provider>=success or
// @Description  ?status=error&reason=<reason>.
// @Tags         OAuth
// @Param        provider           path   string  true   "Provider"  Enums(gmail, drive, outlook, onedrive)
// @Param        code               query  string  false  "Authorization code"
// @Param        state              query  string  true   "Signed state"
// @Param        error              query  string  false  "Provider error code"
// @Param        error_description  query  string  false  "Provider error description"
// @Success      302  "Redirect to the dashboard"
// @Router       /oauth/{provider}/callback [get]
// @Router       /oauth/{provider}/callback [post]
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, err := domain.ParseProviderType(r.PathValue("provider"))
	if err != nil {
		http.Redirect(w, r, errorRedirect(s.defaultRedirect, err), http.StatusFound)
		return
	}

	resp, err := s.oauthService.Callback(r.Context(), driving.CallbackRequest{
		Provider:         provider,
		Code:             r.FormValue("code"),
		State:            r.FormValue("state"),
		Error:            r.FormValue("error"),
		ErrorDescription: r.FormValue("error_description"),
	})
	if err != nil {
		redirect := s.defaultRedirect
		var cbErr *driving.CallbackError
		if errors.As(err, &cbErr) && cbErr.RedirectPath != "" {
			redirect = cbErr.RedirectPath
		}
		http.Redirect(w, r, errorRedirect(redirect, err), http.StatusFound)
		return
	}

	http.Redirect(w, r, withQuery(resp.RedirectPath, string(provider), "success"), http.StatusFound)
}

// Account endpoints

// handleListAccounts godoc
// @Summary      List connected accounts
// @Description  Connection status for every supported provider
// @Tags         Accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.AccountSummary
// @Failure      401  {object}  ErrorResponse  "No session"
// @Router       /accounts [get]
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accountService.List(r.Context(), UserUIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// handleGetAccount godoc
// @Summary      Get connection status
// @Description  Token-free view of one provider connection
// @Tags         Accounts
// @Produce      json
// @Security     BearerAuth
// @Param        provider  path      string  true  "Provider"  Enums(gmail, drive, outlook, onedrive)
// @Success      200       {object}  domain.AccountSummary
// @Failure      401       {object}  ErrorResponse  "No session"
// @Failure      404       {object}  ErrorResponse  "Unknown provider"
// @Router       /accounts/{provider} [get]
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	provider, err := domain.ParseProviderType(r.PathValue("provider"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	summary, err := s.accountService.Summary(r.Context(), UserUIDFromContext(r.Context()), provider)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// File endpoints

// handleGetDriveFile godoc
// @Summary      Resolve a Drive document link
// @Description  Uses the user's Drive connection when available, otherwise the public file URL
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Param        fileId  path      string  true  "Drive file id"
// @Success      200     {object}  driving.FileLink
// @Failure      401     {object}  ErrorResponse  "No session"
// @Failure      404     {object}  ErrorResponse  "File not found"
// @Router       /files/drive/{fileId} [get]
func (s *Server) handleGetDriveFile(w http.ResponseWriter, r *http.Request) {
	link, err := s.fileService.ResolveDriveFile(r.Context(), UserUIDFromContext(r.Context()), r.PathValue("fileId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// Factura endpoints

// handleListComparisons godoc
// @Summary      List invoice comparisons
// @Description  Compares a page of invoices and attaches review percentages
// @Tags         Facturas
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (default 50, max 200)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  driving.ComparisonList
// @Failure      400     {object}  ErrorResponse  "Invalid paging"
// @Router       /facturas/comparisons [get]
func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	list, err := s.comparisonService.List(r.Context(), driving.ListComparisonsRequest{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetComparison godoc
// @Summary      Compare one invoice
// @Description  Field-by-field diff of the two extractions
// @Tags         Facturas
// @Produce      json
// @Security     BearerAuth
// @Param        uid  path      string  true  "factura_uid"
// @Success      200  {object}  domain.FacturaComparison
// @Failure      404  {object}  ErrorResponse  "Neither source has the invoice"
// @Router       /facturas/{uid}/comparison [get]
func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.comparisonService.Compare(r.Context(), r.PathValue("uid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// handleGetReview godoc
// @Summary      Get invoice review
// @Tags         Facturas
// @Produce      json
// @Security     BearerAuth
// @Param        uid  path      string  true  "factura_uid"
// @Success      200  {object}  domain.ReviewRecord
// @Router       /facturas/{uid}/review [get]
func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	rec, err := s.reviewService.Get(r.Context(), r.PathValue("uid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handlePutReview godoc
// @Summary      Save invoice review
// @Description  Replaces both tools' field states. Invalid entries are dropped.
// @Tags         Facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uid      path      string         true  "factura_uid"
// @Param        request  body      ReviewRequest  true  "Field states"
// @Success      200      {object}  domain.ReviewRecord
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Router       /facturas/{uid}/review [put]
func (s *Server) handlePutReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReviewBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.reviewService.Set(r.Context(), r.PathValue("uid"), req.ToolA, req.ToolB)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleGetMetrics godoc
// @Summary      Extraction accuracy metrics
// @Description  Per-field accuracy of tool A over every reviewed invoice
// @Tags         Facturas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Metrics
// @Router       /facturas/metrics [get]
func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.metricsService.Compute(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		// provider bodies stay in the logs
		message = pe.Unwrap().Error()
	}
	writeError(w, status, message)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidStateFormat),
		errors.Is(err, domain.ErrSignatureMismatch),
		errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrAccountNotConnected),
		errors.Is(err, domain.ErrUnsupportedProvider):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrTokenExchange),
		errors.Is(err, domain.ErrTokenRefresh),
		errors.Is(err, domain.ErrProfileFetch),
		errors.Is(err, domain.ErrMissingRefreshToken):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// callbackReason turns a callback failure into the short reason shown by the dashboard.
func callbackReason(err error) string {
	var oauthErr *driving.OAuthError
	if errors.As(err, &oauthErr) {
		return oauthErr.Code
	}
	switch {
	case errors.Is(err, domain.ErrUnsupportedProvider):
		return "unsupported_provider"
	case errors.Is(err, domain.ErrInvalidStateFormat),
		errors.Is(err, domain.ErrSignatureMismatch),
		errors.Is(err, domain.ErrInvalidPayload):
		return "invalid_state"
	case errors.Is(err, domain.ErrInvalidInput):
		return "missing_code"
	case errors.Is(err, domain.ErrMissingRefreshToken):
		return "missing_refresh_token"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, domain.ErrTokenExchange):
		return "token_exchange_failed"
	case errors.Is(err, domain.ErrProfileFetch):
		return "profile_fetch_failed"
	default:
		return "internal_error"
	}
}

func errorRedirect(path string, err error) string {
	return withQuery(withQuery(path, "status", "error"), "reason", callbackReason(err))
}

// withQuery sets key=value on a local path, keeping any existing query.
func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
