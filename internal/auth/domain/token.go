package domain

import "time"

// TokenSet represents what the token endpoint returns: the short-lived access
// token (JWT), the identity token for the same subject, and the opaque
// refresh token.
type TokenSet struct {
	AccessToken   string        `json:"access_token"`
	IdentityToken string        `json:"id_token,omitempty"`
	RefreshToken  string        `json:"refresh_token,omitempty"`
	TokenType     string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn     time.Duration `json:"expires_in"`           // seconds until access token expiry
	Scope         string        `json:"scope,omitempty"`      // space-delimited
}

// RefreshToken models the stored refresh token record in the DB.
type RefreshToken struct {
	ID        string
	UserID    string
	ClientID  string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	SessionID string // Session ID (SID) that persists across token refreshes
	Scopes    []string
	AMR       []string // Authentication Method Reference history
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
