package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fernlight/passage/internal/auth/domain"
	"github.com/fernlight/passage/internal/auth/store"
	"github.com/fernlight/passage/pkg/cryptox"
	"github.com/fernlight/passage/pkg/idx"
	"github.com/fernlight/passage/pkg/slogx"
)

// DefaultClientID is the well-known public client the token endpoint
// serves when no override is configured.
const DefaultClientID = "passage_spa"

// RegistrationService performs the idempotent startup registration of the
// public client and, on a fresh database, seeds the first admin account.
// It runs before the HTTP server starts; failure aborts startup.
type RegistrationService struct {
	Store store.Store

	ClientID   string // defaults to DefaultClientID
	ClientName string

	AdminUsername string
	AdminEmail    string
	// AdminPassword is optional. When empty a random password is
	// generated and logged once so the operator can capture it.
	AdminPassword string
}

// EnsureClientRegistered creates the public client if it does not exist
// yet. An existing client is left untouched, so repeated startups are
// no-ops.
func (s *RegistrationService) EnsureClientRegistered(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	clientID := s.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	_, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	name := s.ClientName
	if name == "" {
		name = "Passage SPA"
	}

	client := domain.Client{
		ID:   clientID,
		Name: name,
		Type: domain.ClientTypePublic,
		GrantTypes: []string{
			domain.GrantTypePassword,
			domain.GrantTypeRefreshToken,
		},
		Scopes: []string{
			domain.ScopeProfile,
			domain.ScopeEmail,
			domain.ScopeAddress,
			domain.ScopePhone,
			domain.ScopeRoles,
		},
		Protected: true,
	}

	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		// A concurrent starter may have won the race.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	l.Info("registered public client", slog.String("client_id", clientID))
	return nil
}

// EnsureAdminUser seeds the first admin account when the user table is
// empty. Without it a fresh deployment has no way to obtain a token.
func (s *RegistrationService) EnsureAdminUser(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	username := s.AdminUsername
	if username == "" {
		username = "admin"
	}
	email := s.AdminEmail
	if email == "" {
		email = "admin@localhost"
	}

	password := s.AdminPassword
	generated := false
	if password == "" {
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return err
		}
		generated = true
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	stamp, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return err
	}

	u := domain.User{
		ID:             idx.New().String(),
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		Roles:          []string{"admin"},
		SecurityStamp:  stamp,
		EmailConfirmed: true,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	if generated {
		// Logged exactly once, on first boot of an empty database.
		l.Warn("seeded admin user with generated password",
			slog.String("username", username),
			slog.String("password", password),
		)
	} else {
		l.Info("seeded admin user", slog.String("username", username))
	}
	return nil
}
