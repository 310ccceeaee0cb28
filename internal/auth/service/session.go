package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fernlight/passage/internal/auth/domain"
	"github.com/fernlight/passage/internal/auth/store"
	"github.com/fernlight/passage/pkg/cryptox"
)

// SessionValidator resolves opaque refresh tokens to their persisted rows.
// The opaque value itself is never stored, only its fingerprint.
type SessionValidator struct {
	Store store.Store
}

// Resolve looks up the refresh token by fingerprint and checks revocation
// and expiry. Unknown, revoked and expired all collapse into
// ErrRefreshTokenInvalid so callers cannot tell them apart.
func (s *SessionValidator) Resolve(
	ctx context.Context,
	opaque string,
) (domain.RefreshToken, error) {
	if strings.TrimSpace(opaque) == "" {
		return domain.RefreshToken{}, ErrRefreshTokenInvalid
	}

	fp := cryptox.FingerprintToken(opaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RefreshToken{}, ErrRefreshTokenInvalid
		}
		return domain.RefreshToken{}, err
	}

	if rt.Revoked || time.Now().After(rt.ExpiresAt) {
		return domain.RefreshToken{}, ErrRefreshTokenInvalid
	}

	return rt, nil
}
