package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/fernlight/passage/internal/auth/domain"
	"github.com/fernlight/passage/internal/auth/metrics"
	"github.com/fernlight/passage/internal/auth/service"
	"github.com/fernlight/passage/pkg/authsdk"
	"github.com/fernlight/passage/pkg/httpx"
	"github.com/fernlight/passage/pkg/slogx"
)

// TokenHandler serves POST /connect/token
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues access, identity and refresh tokens using the password and refresh_token grants.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(password, refresh_token)
//	@Param			username		formData	string					false	"Resource owner username (password grant)"
//	@Param			password		formData	string					false	"Resource owner password (password grant)"
//	@Param			refresh_token	formData	string					false	"Refresh token (refresh_token grant)"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			scope			formData	string					false	"Space-delimited list of scopes"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, id_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/connect/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	// 1. Ensure the right content-type
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	// 3. Handle the grant type. The grant set is closed: anything else is
	// a protocol violation from a misconfigured or malicious client and is
	// surfaced as a server-side failure, not a soft rejection.
	grantType := r.Form.Get("grant_type")
	switch grantType {
	case "password":
		h.handlePasswordGrant(w, r, r.Form)
	case "refresh_token":
		h.handleRefreshGrant(w, r, r.Form)
	default:
		log.Error("unsupported grant type requested", "grant_type", grantType)
		metrics.RecordGrant(grantType, metrics.ResultError)
		authsdk.ErrUnsupportedGrantType.WriteError(w)
	}
}

func (h *TokenHandler) handlePasswordGrant(w http.ResponseWriter, r *http.Request, form url.Values) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := form.Get("username")
	password := form.Get("password")
	clientID := strings.TrimSpace(form.Get("client_id"))
	requested := httpx.ParseSpaceDelimitedFields(strings.TrimSpace(form.Get("scope")))

	if clientID == "" {
		metrics.RecordGrant("password", metrics.ResultRejected)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	set, err := h.TokenService.ExchangePassword(ctx, clientID, username, password, requested)
	if err != nil {
		h.writeGrantError(w, log, "password", err)
		return
	}

	metrics.RecordGrant("password", metrics.ResultSuccess)
	writeTokenResponse(w, set)
}

func (h *TokenHandler) handleRefreshGrant(w http.ResponseWriter, r *http.Request, form url.Values) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	refresh := form.Get("refresh_token")
	clientID := strings.TrimSpace(form.Get("client_id"))
	requested := httpx.ParseSpaceDelimitedFields(strings.TrimSpace(form.Get("scope")))

	if refresh == "" || clientID == "" {
		metrics.RecordGrant("refresh_token", metrics.ResultRejected)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	set, err := h.TokenService.ExchangeRefreshToken(ctx, clientID, refresh, requested)
	if err != nil {
		h.writeGrantError(w, log, "refresh_token", err)
		return
	}

	metrics.RecordGrant("refresh_token", metrics.ResultSuccess)
	writeTokenResponse(w, set)
}

func (h *TokenHandler) writeGrantError(w http.ResponseWriter, log *slog.Logger, grantType string, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedRequest):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, service.ErrAccountSuspended):
		authsdk.ErrAccountSuspended.WriteError(w)
	case errors.Is(err, service.ErrAccountBlocked):
		authsdk.ErrAccountBlocked.WriteError(w)
	case errors.Is(err, service.ErrSignInNotAllowed):
		authsdk.ErrSignInNotAllowed.WriteError(w)
	case errors.Is(err, service.ErrRefreshTokenInvalid):
		authsdk.ErrInvalidRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidClient):
		authsdk.ErrInvalidClient.WriteError(w)
	default:
		log.Error("token grant failed", "grant_type", grantType, "err", err)
		metrics.RecordGrant(grantType, metrics.ResultError)
		authsdk.ErrServerError.WriteError(w)
		return
	}
	metrics.RecordGrant(grantType, metrics.ResultRejected)
}

func writeTokenResponse(w http.ResponseWriter, set *domain.TokenSet) {
	response := authsdk.TokenResponse{
		AccessToken:  set.AccessToken,
		IDToken:      set.IdentityToken,
		RefreshToken: set.RefreshToken,
		TokenType:    set.TokenType,
		ExpiresIn:    int(set.ExpiresIn.Seconds()),
		Scope:        strings.TrimSpace(set.Scope),
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, response)
}
