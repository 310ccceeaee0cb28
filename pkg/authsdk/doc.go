/*
Package authsdk provides a client SDK for interacting with the Passage authentication service.

# Overview

The authsdk package implements an OAuth2-compliant client for the Passage
authentication service. It provides both unauthenticated operations (via
SDKClient) and authenticated operations (via Session) with automatic token
refresh.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: Provides unauthenticated operations and creates authenticated sessions
  - Session: Provides authenticated operations with automatic token refresh

Create an SDKClient to interact with public endpoints and initiate authentication flows:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Fetch the key set for local token verification
	jwks, err := client.GetJWKS(ctx)

	// Authenticate to create a session
	session, err := client.AuthenticateWithPassword(ctx, clientID, username, password, scopes)

Use a Session for authenticated operations. Sessions automatically handle token expiration
and refresh:

	// Get the identity claims for the signed-in user
	userInfo, err := session.GetUserInfo(ctx)

# Authentication Flows

The SDK supports the two grant types the service issues tokens for:

Password Grant:

	session, err := client.AuthenticateWithPassword(ctx, clientID, username, password, scopes)

Refresh Token Grant:

	session, err := client.AuthenticateWithRefreshToken(ctx, clientID, refreshToken)

# Automatic Token Refresh

Sessions automatically refresh access tokens when they expire. All Session methods
call getValidToken() internally, which:

 1. Checks if the access token is still valid (with 30-second buffer)
 2. If expired, uses the refresh token to obtain a new access token
 3. Updates the session with the new tokens and scopes

You never need to manually refresh tokens when using Session methods. Note
that every refresh rotates the refresh token: the previous token is revoked
and the session stores its replacement.

# Scopes

Scopes control which identity claims end up in issued tokens and in the
userinfo response. Standard scopes include:

  - profile: name, firstname, lastname and createdat claims
  - email: the email claim
  - roles: role claims

Client-side scope checking is enabled by default but can be disabled for testing:

	client := authsdk.NewSDKClient("https://auth.example.com")
	client.CheckScopes = false // Disable client-side scope checking

# Error Handling

Request failures are returned as *OAuth2Error with the RFC 6749 error code
and description the server responded with:

	session, err := client.AuthenticateWithPassword(ctx, clientID, username, password, scopes)
	if err != nil {
		var oauthErr *authsdk.OAuth2Error
		if errors.As(err, &oauthErr) && oauthErr.Code == authsdk.ErrorCodeInvalidGrant {
			// Bad credentials, locked or blocked account
		}
		return err
	}

# Thread Safety

Sessions are safe for concurrent use. All Session methods use read/write locks to
protect access to tokens and scopes. Multiple goroutines can share a single Session
and make authenticated requests concurrently.

# Examples

Complete authentication and API usage:

	// Create client
	client := authsdk.NewSDKClient("https://auth.example.com")

	// Authenticate
	session, err := client.AuthenticateWithPassword(
		context.Background(),
		"passage_spa",
		"username",
		"password",
		[]string{"profile", "email"},
	)
	if err != nil {
		log.Fatal(err)
	}

	// Use authenticated session
	userInfo, err := session.GetUserInfo(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Signed in as: %s\n", userInfo.Sub)

	// Revoke session when done
	err = session.Revoke(context.Background())
*/
package authsdk
