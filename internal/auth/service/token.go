package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fernlight/passage/internal/auth/domain"
	"github.com/fernlight/passage/internal/auth/store"
	"github.com/fernlight/passage/pkg/cryptox"
	"github.com/fernlight/passage/pkg/idx"
	"github.com/fernlight/passage/pkg/jwtx"
	"github.com/fernlight/passage/pkg/slogx"
)

// TokenService implements the token exchange for the password and
// refresh_token grants. Each call is independent; the only shared mutable
// state is the store, whose atomicity we rely on.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Verifier   *CredentialVerifier
	Sessions   *SessionValidator

	Issuer      string
	AccessTTL   time.Duration
	IdentityTTL time.Duration
	RefreshTTL  time.Duration
}

// ExchangePassword implements the OAuth2 resource-owner password grant.
//
// Rejection ordering for an account in multiple bad states is part of the
// contract: lockout reports before the administrative block, which reports
// before the sign-in policy. Unknown usernames and wrong passwords are
// indistinguishable to prevent enumeration.
func (s *TokenService) ExchangePassword(
	ctx context.Context,
	clientID, username, password string,
	requestedScopes []string,
) (*domain.TokenSet, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMalformedRequest
	}

	client, err := s.loadClient(ctx, clientID, domain.GrantTypePassword)
	if err != nil {
		return nil, err
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same rejection as a wrong password.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	outcome, err := s.Verifier.Verify(ctx, u, password)
	if err != nil {
		return nil, err
	}

	if outcome == domain.OutcomeLockedOut {
		l.Info("password grant rejected: account locked out", slog.String("user_id", u.ID))
		return nil, ErrAccountSuspended
	}
	if u.IsBlocked {
		l.Info("password grant rejected: account blocked", slog.String("user_id", u.ID))
		return nil, ErrAccountBlocked
	}
	if outcome == domain.OutcomeNotAllowed {
		return nil, ErrSignInNotAllowed
	}
	if outcome != domain.OutcomeSuccess {
		return nil, ErrInvalidCredentials
	}

	// An empty scope set is allowed, it simply yields a principal with no
	// optional claims routed to the identity token.
	scopes := domain.ScopeSet(dedupe(requestedScopes))

	sessionID := idx.New().String()
	amr := []string{jwtx.AMRPassword}

	return s.issue(ctx, u, client.ID, sessionID, scopes, amr, now)
}

// ExchangeRefreshToken implements the OAuth2 refresh_token grant with
// rotation: the presented token is revoked and a new one created in a
// single transaction.
//
// An empty scope field inherits exactly the scopes stored with the refresh
// row; a non-empty one overrides rather than unions.
func (s *TokenService) ExchangeRefreshToken(
	ctx context.Context,
	clientID, refreshOpaque string,
	requestedScopes []string,
) (*domain.TokenSet, error) {
	now := time.Now()

	client, err := s.loadClient(ctx, clientID, domain.GrantTypeRefreshToken)
	if err != nil {
		return nil, err
	}

	rt, err := s.Sessions.Resolve(ctx, refreshOpaque)
	if err != nil {
		return nil, err
	}
	if rt.ClientID != client.ID {
		return nil, ErrInvalidClient
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, err
	}

	if !s.Verifier.CanSignIn(u) {
		return nil, ErrSignInNotAllowed
	}

	effective := rt.Scopes
	if len(requestedScopes) > 0 {
		effective = dedupe(requestedScopes)
	}
	scopes := domain.ScopeSet(effective)

	amr := dedupe(append(rt.AMR, jwtx.AMRRefresh))

	return s.issueRotated(ctx, u, client.ID, rt, scopes, amr, now)
}

// RevokeRefreshToken revokes a single refresh token by its opaque value.
// Unknown tokens are a no-op, revocation is idempotent.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, refreshOpaque string) error {
	fp := cryptox.FingerprintToken(refreshOpaque)
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
}

func (s *TokenService) loadClient(
	ctx context.Context,
	clientID, grantType string,
) (domain.Client, error) {
	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}
	if !client.AllowsGrant(grantType) {
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

// issue projects the user's claims, signs both tokens and persists a fresh
// refresh row remembering the effective scopes.
func (s *TokenService) issue(
	ctx context.Context,
	u domain.User,
	clientID, sessionID string,
	scopes domain.ScopeSet,
	amr []string,
	now time.Time,
) (*domain.TokenSet, error) {
	principal := domain.Principal{
		Subject: u.ID,
		Claims:  ProjectClaims(u, scopes),
	}

	accessToken, err := s.signAccess(principal, clientID, sessionID, scopes, amr, now)
	if err != nil {
		return nil, err
	}
	identityToken, err := s.signIdentity(principal, clientID, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		ClientID:  clientID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		SessionID: sessionID,
		Scopes:    scopes,
		AMR:       amr,
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenSet{
		AccessToken:   accessToken,
		IdentityToken: identityToken,
		RefreshToken:  refreshOpaque,
		TokenType:     "Bearer",
		ExpiresIn:     s.AccessTTL,
		Scope:         scopes.String(),
	}, nil
}

// issueRotated is the refresh-path variant of issue: the session id is
// preserved and the old refresh row is revoked atomically with creating
// the new one.
func (s *TokenService) issueRotated(
	ctx context.Context,
	u domain.User,
	clientID string,
	old domain.RefreshToken,
	scopes domain.ScopeSet,
	amr []string,
	now time.Time,
) (*domain.TokenSet, error) {
	principal := domain.Principal{
		Subject: u.ID,
		Claims:  ProjectClaims(u, scopes),
	}

	accessToken, err := s.signAccess(principal, clientID, old.SessionID, scopes, amr, now)
	if err != nil {
		return nil, err
	}
	identityToken, err := s.signIdentity(principal, clientID, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	next := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		ClientID:  clientID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		SessionID: old.SessionID,
		Scopes:    scopes,
		AMR:       amr,
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, old.TokenHash); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, next)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenSet{
		AccessToken:   accessToken,
		IdentityToken: identityToken,
		RefreshToken:  refreshOpaque,
		TokenType:     "Bearer",
		ExpiresIn:     s.AccessTTL,
		Scope:         scopes.String(),
	}, nil
}

func (s *TokenService) signAccess(
	p domain.Principal,
	clientID, sessionID string,
	scopes domain.ScopeSet,
	amr []string,
	now time.Time,
) (string, error) {
	claims := jwtx.NewAccessClaims(
		p.Subject,
		sessionID,
		scopes,
		amr,
		s.AccessTTL,
		s.Issuer,
		[]string{clientID},
		now,
	)

	for _, c := range p.Claims {
		if !c.Destination.Has(domain.DestAccessToken) {
			continue
		}
		switch c.Type {
		case domain.ClaimName:
			claims.Name = c.Value
		case domain.ClaimEmail:
			claims.Email = c.Value
		case domain.ClaimRole:
			claims.Roles = append(claims.Roles, c.Value)
		}
	}

	// GetSigner() distributes signing across the key set.
	return s.KeyManager.GetSigner().Sign(claims)
}

func (s *TokenService) signIdentity(
	p domain.Principal,
	clientID string,
	now time.Time,
) (string, error) {
	extra := make(map[string]any)
	var roles []string
	for _, c := range p.Claims {
		if !c.Destination.Has(domain.DestIdentityToken) {
			continue
		}
		if c.Type == domain.ClaimRole {
			roles = append(roles, c.Value)
			continue
		}
		extra[c.Type] = c.Value
	}
	if len(roles) > 0 {
		extra[domain.ClaimRole] = roles
	}

	claims := jwtx.NewIdentityClaims(
		p.Subject,
		s.Issuer,
		[]string{clientID},
		s.IdentityTTL,
		now,
		extra,
	)
	return s.KeyManager.GetSigner().Sign(claims)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
