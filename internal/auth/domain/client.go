package domain

import (
	"slices"
	"time"
)

// Client application types.
const (
	ClientTypePublic       = "public"
	ClientTypeConfidential = "confidential"
)

// Grant types a client may be allowed to use.
const (
	GrantTypePassword     = "password"
	GrantTypeRefreshToken = "refresh_token"
)

type Client struct {
	ID         string // the OAuth2 client_id presented on the wire
	Name       string
	Type       string // "public" or "confidential"
	SecretHash string // empty for public clients
	GrantTypes []string
	Scopes     []string
	Protected  bool // If true, client cannot be deleted (e.g., bootstrap client)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AllowsGrant reports whether the client is registered for the grant type.
func (c Client) AllowsGrant(grant string) bool {
	return slices.Contains(c.GrantTypes, grant)
}
