package domain

import "slices"

// Standard scopes a client may request at the token endpoint.
const (
	ScopeProfile       = "profile"
	ScopeEmail         = "email"
	ScopePhone         = "phone"
	ScopeAddress       = "address"
	ScopeRoles         = "roles"
	ScopeOfflineAccess = "offline_access"
)

// Claim type names as they appear in issued tokens.
const (
	ClaimName      = "name"
	ClaimEmail     = "email"
	ClaimFirstName = "firstname"
	ClaimLastName  = "lastname"
	ClaimCreatedAt = "createdat"
	ClaimRole      = "role"

	// ClaimSecurityStamp is internal account state and must never leave the
	// server in any token.
	ClaimSecurityStamp = "security_stamp"
)

// Destination is a bitset deciding which issued tokens carry a claim.
type Destination uint8

const (
	DestAccessToken Destination = 1 << iota
	DestIdentityToken
)

// Has reports whether d includes the given destination bit.
func (d Destination) Has(dest Destination) bool { return d&dest != 0 }

// Claim is a single typed claim with its routing decision attached.
type Claim struct {
	Type        string
	Value       string
	Destination Destination
}

// Principal is an authenticated subject with its projected claims in
// deterministic order.
type Principal struct {
	Subject string
	Claims  []Claim
}

// ScopeSet wraps the granted scopes for membership checks.
type ScopeSet []string

// Has reports whether the scope was granted.
func (s ScopeSet) Has(scope string) bool { return slices.Contains(s, scope) }

// String returns the space-delimited wire form.
func (s ScopeSet) String() string {
	out := ""
	for i, scope := range s {
		if i > 0 {
			out += " "
		}
		out += scope
	}
	return out
}

// AuthOutcome is the result of a credential verification attempt.
type AuthOutcome int

const (
	// OutcomeSuccess means the password matched and the account may sign in.
	OutcomeSuccess AuthOutcome = iota
	// OutcomeLockedOut means the account is inside a lockout window.
	OutcomeLockedOut
	// OutcomeNotAllowed means sign-in policy blocks the account, e.g. the
	// email address has not been confirmed yet.
	OutcomeNotAllowed
	// OutcomeFailed means the password did not match.
	OutcomeFailed
)

func (o AuthOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeLockedOut:
		return "locked_out"
	case OutcomeNotAllowed:
		return "not_allowed"
	default:
		return "failed"
	}
}
