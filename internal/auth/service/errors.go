package service

import "errors"

// Terminal rejection states of the token exchange. The HTTP layer maps
// these onto RFC 6749 error bodies; everything not listed here is an
// internal failure.
var (
	ErrMalformedRequest    = errors.New("malformed_request")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrAccountSuspended    = errors.New("account_suspended")
	ErrAccountBlocked      = errors.New("account_blocked")
	ErrSignInNotAllowed    = errors.New("sign_in_not_allowed")
	ErrRefreshTokenInvalid = errors.New("invalid_refresh_token")
	ErrInvalidClient       = errors.New("invalid_client")

	// ErrUnsupportedGrant is a protocol violation, not a business
	// rejection. Callers surface it as a server-side failure.
	ErrUnsupportedGrant = errors.New("unsupported_grant_type")
)
