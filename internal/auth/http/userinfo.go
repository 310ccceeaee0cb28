package http

import (
	"net/http"

	"github.com/fernlight/passage/internal/auth/domain"
	"github.com/fernlight/passage/internal/auth/service"
	"github.com/fernlight/passage/pkg/authsdk"
	"github.com/fernlight/passage/pkg/httpx"
	"github.com/fernlight/passage/pkg/slogx"
)

type UserInfoHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles the OIDC UserInfo endpoint. The disclosed claims follow
// the scopes granted to the presented access token, using the same routing
// table as the identity token.
//
//	@Summary		Get user information
//	@Description	Returns claims about the authenticated user per the token's granted scopes.
//	@Tags			OAuth2
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserInfoResponse	"sub plus claims per granted scopes"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/connect/userinfo [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// Get subject (user ID) from request context.
	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}
	scopes, _ := ctx.Value(httpx.CtxKeyScopes).([]string)

	user, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		log.Warn("failed to load user", "user_id", userID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	response := authsdk.UserInfoResponse{
		Sub:    user.ID,
		Claims: map[string]any{},
	}

	var roles []string
	for _, c := range service.ProjectClaims(user, domain.ScopeSet(scopes)) {
		if !c.Destination.Has(domain.DestIdentityToken) {
			continue
		}
		if c.Type == domain.ClaimRole {
			roles = append(roles, c.Value)
			continue
		}
		response.Claims[c.Type] = c.Value
	}
	if len(roles) > 0 {
		response.Claims[domain.ClaimRole] = roles
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, response)
}
