package http

import (
	"net/http"
	"strings"

	"github.com/fernlight/passage/pkg/authsdk"
	"github.com/fernlight/passage/pkg/httpx"
)

// DiscoveryHandler serves the OpenID Provider configuration document. Only
// the fields a client of this service can actually use are advertised.
//
//	@Summary		OpenID Provider Configuration
//	@Description	Returns the OpenID Connect discovery document for this issuer.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.DiscoveryResponse	"issuer, endpoints, supported grant types and scopes"
//	@Router			/.well-known/openid-configuration [get].
func DiscoveryHandler(issuer string, algorithms []string) http.HandlerFunc {
	base := strings.TrimRight(issuer, "/")

	doc := authsdk.DiscoveryResponse{
		Issuer:                      base,
		TokenEndpoint:               base + "/connect/token",
		RevocationEndpoint:          base + "/connect/revoke",
		UserInfoEndpoint:            base + "/connect/userinfo",
		JWKSURI:                     base + "/.well-known/jwks.json",
		GrantTypesSupported:         []string{"password", "refresh_token"},
		ScopesSupported:             []string{"profile", "email", "address", "phone", "roles", "offline_access"},
		ResponseTypesSupported:      []string{"token"},
		SubjectTypesSupported:       []string{"public"},
		IDTokenSigningAlgsSupported: algorithms,
		TokenEndpointAuthMethods:    []string{"none"},
		ClaimsSupported:             []string{"sub", "name", "email", "firstname", "lastname", "createdat", "role"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, doc)
	}
}
