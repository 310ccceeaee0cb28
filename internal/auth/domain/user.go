package domain

import "time"

type User struct {
	ID             string
	Username       string
	Email          string
	FirstName      *string // optional profile field
	LastName       *string
	PasswordHash   string // argon2 encoded
	Roles          []string
	SecurityStamp  string // rotated whenever credentials change
	IsBlocked      bool
	EmailConfirmed bool
	FailedLogins   int
	LockoutUntil   *time.Time // non-nil while a lockout window is active
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLockedOut reports whether the user is inside an active lockout window.
func (u User) IsLockedOut(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}
