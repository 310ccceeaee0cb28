package service

import (
	"testing"
	"time"

	"github.com/fernlight/passage/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func fullUser() domain.User {
	return domain.User{
		ID:            "user-1",
		Username:      "alice",
		Email:         "alice@example.com",
		FirstName:     strPtr("Alice"),
		LastName:      strPtr("Smith"),
		Roles:         []string{"admin", "staff"},
		SecurityStamp: "very-secret-stamp",
		CreatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func claimsByType(claims []domain.Claim) map[string][]domain.Claim {
	out := map[string][]domain.Claim{}
	for _, c := range claims {
		out[c.Type] = append(out[c.Type], c)
	}
	return out
}

func TestProjectClaimsOrdering(t *testing.T) {
	t.Parallel()

	claims := ProjectClaims(fullUser(), domain.ScopeSet{"profile", "email", "roles"})

	var types []string
	for _, c := range claims {
		types = append(types, c.Type)
	}
	require.Equal(t, []string{
		domain.ClaimName,
		domain.ClaimEmail,
		domain.ClaimFirstName,
		domain.ClaimLastName,
		domain.ClaimCreatedAt,
		domain.ClaimRole,
		domain.ClaimRole,
	}, types)

	byType := claimsByType(claims)
	require.Equal(t, "admin", byType[domain.ClaimRole][0].Value)
	require.Equal(t, "staff", byType[domain.ClaimRole][1].Value)
}

func TestProjectClaimsDestinations(t *testing.T) {
	t.Parallel()

	t.Run("profile routes extended fields to the identity token only", func(t *testing.T) {
		byType := claimsByType(ProjectClaims(fullUser(), domain.ScopeSet{"profile"}))

		name := byType[domain.ClaimName][0]
		require.True(t, name.Destination.Has(domain.DestAccessToken))
		require.True(t, name.Destination.Has(domain.DestIdentityToken))

		for _, claimType := range []string{domain.ClaimFirstName, domain.ClaimLastName, domain.ClaimCreatedAt} {
			c := byType[claimType][0]
			require.False(t, c.Destination.Has(domain.DestAccessToken), claimType)
			require.True(t, c.Destination.Has(domain.DestIdentityToken), claimType)
		}
	})

	t.Run("without profile nothing reaches the identity token", func(t *testing.T) {
		for _, c := range ProjectClaims(fullUser(), domain.ScopeSet{}) {
			require.False(t, c.Destination.Has(domain.DestIdentityToken), c.Type)
		}
	})

	t.Run("email claim follows the email scope", func(t *testing.T) {
		byType := claimsByType(ProjectClaims(fullUser(), domain.ScopeSet{"email"}))
		email := byType[domain.ClaimEmail][0]
		require.True(t, email.Destination.Has(domain.DestAccessToken))
		require.True(t, email.Destination.Has(domain.DestIdentityToken))

		byType = claimsByType(ProjectClaims(fullUser(), domain.ScopeSet{"profile"}))
		email = byType[domain.ClaimEmail][0]
		require.True(t, email.Destination.Has(domain.DestAccessToken))
		require.False(t, email.Destination.Has(domain.DestIdentityToken))
	})

	t.Run("role claims always hit the access token", func(t *testing.T) {
		byType := claimsByType(ProjectClaims(fullUser(), domain.ScopeSet{}))
		for _, c := range byType[domain.ClaimRole] {
			require.True(t, c.Destination.Has(domain.DestAccessToken))
			require.False(t, c.Destination.Has(domain.DestIdentityToken))
		}

		byType = claimsByType(ProjectClaims(fullUser(), domain.ScopeSet{"roles"}))
		for _, c := range byType[domain.ClaimRole] {
			require.True(t, c.Destination.Has(domain.DestAccessToken))
			require.True(t, c.Destination.Has(domain.DestIdentityToken))
		}
	})
}

func TestProjectClaimsSkipsMissingFields(t *testing.T) {
	t.Parallel()

	u := fullUser()
	u.FirstName = nil
	u.LastName = strPtr("")
	u.CreatedAt = time.Time{}
	u.Roles = nil

	byType := claimsByType(ProjectClaims(u, domain.ScopeSet{"profile", "roles"}))
	require.NotEmpty(t, byType[domain.ClaimName])
	require.Empty(t, byType[domain.ClaimFirstName])
	require.Empty(t, byType[domain.ClaimLastName])
	require.Empty(t, byType[domain.ClaimCreatedAt])
	require.Empty(t, byType[domain.ClaimRole])
}

func TestProjectClaimsNeverEmitsSecurityStamp(t *testing.T) {
	t.Parallel()

	scopeSets := []domain.ScopeSet{
		{},
		{"profile"},
		{"profile", "email", "roles", "phone", "address", "offline_access"},
	}
	for _, scopes := range scopeSets {
		for _, c := range ProjectClaims(fullUser(), scopes) {
			require.NotEqual(t, domain.ClaimSecurityStamp, c.Type)
			require.NotEqual(t, "very-secret-stamp", c.Value)
		}
	}
}
