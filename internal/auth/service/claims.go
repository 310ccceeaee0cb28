package service

import (
	"time"

	"github.com/fernlight/passage/internal/auth/domain"
)

// ProjectClaims maps a user record and the granted scopes onto the ordered
// claim sequence for token issuance: name, email, firstname, lastname,
// createdat, then one role claim per role. The optional profile fields are
// emitted only when present on the record.
//
// Which token each claim lands in is decided here and nowhere else. The
// security stamp is internal account state and is filtered at the source,
// it never appears in the output even with an empty destination.
func ProjectClaims(u domain.User, scopes domain.ScopeSet) []domain.Claim {
	out := make([]domain.Claim, 0, 5+len(u.Roles))

	out = append(out, domain.Claim{
		Type:        domain.ClaimName,
		Value:       u.Username,
		Destination: destinationFor(domain.ClaimName, scopes),
	})
	out = append(out, domain.Claim{
		Type:        domain.ClaimEmail,
		Value:       u.Email,
		Destination: destinationFor(domain.ClaimEmail, scopes),
	})

	if u.FirstName != nil && *u.FirstName != "" {
		out = append(out, domain.Claim{
			Type:        domain.ClaimFirstName,
			Value:       *u.FirstName,
			Destination: destinationFor(domain.ClaimFirstName, scopes),
		})
	}
	if u.LastName != nil && *u.LastName != "" {
		out = append(out, domain.Claim{
			Type:        domain.ClaimLastName,
			Value:       *u.LastName,
			Destination: destinationFor(domain.ClaimLastName, scopes),
		})
	}
	if !u.CreatedAt.IsZero() {
		out = append(out, domain.Claim{
			Type:        domain.ClaimCreatedAt,
			Value:       u.CreatedAt.UTC().Format(time.RFC3339),
			Destination: destinationFor(domain.ClaimCreatedAt, scopes),
		})
	}

	for _, role := range u.Roles {
		out = append(out, domain.Claim{
			Type:        domain.ClaimRole,
			Value:       role,
			Destination: destinationFor(domain.ClaimRole, scopes),
		})
	}

	return out
}

// destinationFor is the claim routing table. Closed switch over the known
// claim types; anything unrecognised stays access-token only so nothing
// leaks into the client-decodable identity token by accident.
func destinationFor(claimType string, scopes domain.ScopeSet) domain.Destination {
	switch claimType {
	case domain.ClaimName:
		d := domain.DestAccessToken
		if scopes.Has(domain.ScopeProfile) {
			d |= domain.DestIdentityToken
		}
		return d

	case domain.ClaimEmail:
		d := domain.DestAccessToken
		if scopes.Has(domain.ScopeEmail) {
			d |= domain.DestIdentityToken
		}
		return d

	case domain.ClaimFirstName, domain.ClaimLastName, domain.ClaimCreatedAt:
		// Extended profile fields are identity-token only.
		if scopes.Has(domain.ScopeProfile) {
			return domain.DestIdentityToken
		}
		return 0

	case domain.ClaimRole:
		d := domain.DestAccessToken
		if scopes.Has(domain.ScopeRoles) {
			d |= domain.DestIdentityToken
		}
		return d

	default:
		return domain.DestAccessToken
	}
}
