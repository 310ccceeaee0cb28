package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fernlight/passage/internal/auth/domain"
	"github.com/fernlight/passage/internal/auth/store"
	"github.com/fernlight/passage/pkg/cryptox"
	"github.com/fernlight/passage/pkg/slogx"
)

const (
	// DefaultMaxFailedLogins is the number of consecutive failed password
	// attempts that trips a lockout.
	DefaultMaxFailedLogins = 5

	// DefaultLockoutWindow is how long a tripped lockout lasts.
	DefaultLockoutWindow = 15 * time.Minute
)

// CredentialVerifier checks a password against a user record with lockout
// tracking. Failed attempts increment a store-side counter; reaching the
// threshold starts a lockout window, and a successful check resets the
// counter.
type CredentialVerifier struct {
	Store store.Store

	MaxFailedLogins int           // 0 means DefaultMaxFailedLogins
	LockoutWindow   time.Duration // 0 means DefaultLockoutWindow

	// RequireConfirmedEmail refuses sign-in for accounts that have not
	// confirmed their email address yet.
	RequireConfirmedEmail bool
}

// Verify checks the password with lockout tracking enabled.
//
// LockedOut, NotAllowed, Success and plain failure are four independently
// observable outcomes. The attempt that reaches the failure threshold
// already reports LockedOut, not Failed.
func (v *CredentialVerifier) Verify(
	ctx context.Context,
	u domain.User,
	password string,
) (domain.AuthOutcome, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	if u.IsLockedOut(now) {
		return domain.OutcomeLockedOut, nil
	}
	if v.RequireConfirmedEmail && !u.EmailConfirmed {
		return domain.OutcomeNotAllowed, nil
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		outcome := domain.OutcomeFailed

		var until *time.Time
		if u.FailedLogins+1 >= v.maxFailed() {
			t := now.Add(v.window())
			until = &t
			outcome = domain.OutcomeLockedOut
		}

		if err := v.Store.Users().RecordFailedLogin(ctx, u.ID, until); err != nil {
			l.Error("failed to record failed login",
				slog.Any("error", err),
				slog.String("user_id", u.ID),
			)
			return domain.OutcomeFailed, err
		}

		if until != nil {
			l.Warn("account locked out after repeated failed logins",
				slog.String("user_id", u.ID),
				slog.Time("lockout_until", *until),
			)
		}
		return outcome, nil
	}

	// Correct password clears any failure history.
	if u.FailedLogins > 0 || u.LockoutUntil != nil {
		if err := v.Store.Users().ResetFailedLogins(ctx, u.ID); err != nil {
			l.Error("failed to reset failed logins",
				slog.Any("error", err),
				slog.String("user_id", u.ID),
			)
			return domain.OutcomeFailed, err
		}
	}

	return domain.OutcomeSuccess, nil
}

// CanSignIn combines the blocked flag, lockout state and confirmation
// policy. Used on the refresh path, where no password check happens but
// the account must still be eligible.
func (v *CredentialVerifier) CanSignIn(u domain.User) bool {
	if u.IsBlocked {
		return false
	}
	if u.IsLockedOut(time.Now()) {
		return false
	}
	if v.RequireConfirmedEmail && !u.EmailConfirmed {
		return false
	}
	return true
}

func (v *CredentialVerifier) maxFailed() int {
	if v.MaxFailedLogins > 0 {
		return v.MaxFailedLogins
	}
	return DefaultMaxFailedLogins
}

func (v *CredentialVerifier) window() time.Duration {
	if v.LockoutWindow > 0 {
		return v.LockoutWindow
	}
	return DefaultLockoutWindow
}
