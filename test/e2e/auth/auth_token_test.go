package auth_test

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/fernlight/passage/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestPasswordGrant exercises the happy path: the seeded admin signs in
// with the password grant against the startup-registered public client.
func TestPasswordGrant(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	tokenResp, err := client.PasswordGrant(
		t.Context(), testClientID, adminUsername, adminPassword, defaultScopes)
	require.NoError(t, err)
	assertTokenResponse(t, tokenResp)

	require.Equal(t, "profile email roles", tokenResp.Scope,
		"Granted scope should echo the request")
	require.Positive(t, tokenResp.ExpiresIn, "expires_in should be set")

	t.Logf("Password grant successful, scope: %s", tokenResp.Scope)
}

// TestPasswordGrantEmptyScope verifies that requesting no scopes still
// issues a full token set.
func TestPasswordGrantEmptyScope(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	tokenResp, err := client.PasswordGrant(
		t.Context(), testClientID, adminUsername, adminPassword, nil)
	require.NoError(t, err)
	assertTokenResponse(t, tokenResp)
	assertScopeNotGranted(t, tokenResp.Scope, "profile", "email", "roles")

	// Without the email scope the identity token must not carry the email claim.
	claims := decodeJWTPayload(t, tokenResp.IDToken)
	require.NotEmpty(t, claims["sub"], "Identity token should carry the subject")
	require.NotContains(t, claims, "email", "email claim requires the email scope")
	require.NotContains(t, claims, "firstname", "firstname claim requires the profile scope")
}

// TestPasswordGrantInvalidCredentials verifies that a wrong password and an
// unknown username produce byte-identical rejections.
func TestPasswordGrantInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, wrongPassErr := client.PasswordGrant(
		t.Context(), testClientID, adminUsername, "definitely-wrong", defaultScopes)
	assertInvalidGrant(t, wrongPassErr, "Wrong password should be rejected")

	_, unknownUserErr := client.PasswordGrant(
		t.Context(), testClientID, "no-such-user", "definitely-wrong", defaultScopes)
	assertInvalidGrant(t, unknownUserErr, "Unknown user should be rejected")

	require.Equal(t, wrongPassErr.Error(), unknownUserErr.Error(),
		"Unknown user and wrong password must be indistinguishable")
}

// TestPasswordGrantMissingFields verifies that empty credentials are a
// malformed request, not an authentication failure.
func TestPasswordGrantMissingFields(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.PasswordGrant(t.Context(), testClientID, "", "", defaultScopes)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid_request")
}

// TestPasswordGrantUnknownClient verifies the client check happens before
// any credential handling.
func TestPasswordGrantUnknownClient(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.PasswordGrant(
		t.Context(), "not-registered", adminUsername, adminPassword, defaultScopes)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid_client")
}

// TestUnsupportedGrantType verifies that an unknown grant type is treated
// as a server-side failure, not a client rejection.
func TestUnsupportedGrantType(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	form := url.Values{
		"grant_type": {"client_credentials"},
		"client_id":  {testClientID},
	}
	resp, err := http.Post(
		baseURL+"/connect/token",
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode,
		"Unsupported grant types must surface as a server error")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "unsupported_grant_type")
}

// decodeJWTPayload decodes the claims segment of a JWT without verifying
// the signature. Signature checks are covered by the JWKS test.
func decodeJWTPayload(t *testing.T, token string) map[string]any {
	t.Helper()

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3, "JWT should have three segments")

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))
	return claims
}
